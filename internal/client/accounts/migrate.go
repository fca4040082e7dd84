package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodfinder/internal/client/storage"
)

// MigrationMarkerKey marks that accounts saved by old releases were dropped.
const MigrationMarkerKey = "@tokens_migrated_v2"

// MigrateOnce clears the account collection the first time it runs against st
// and then writes marker. When the marker cannot be written the clear is
// repeated on the next call. It reports whether a migration happened.
func MigrateOnce(ctx context.Context, st storage.Storage, store *Store, marker string) (bool, error) {
	if marker == "" {
		marker = MigrationMarkerKey
	}

	_, done, err := st.GetItem(ctx, marker)
	if err != nil {
		return false, fmt.Errorf("failed to read migration marker: %w", err)
	}
	if done {
		return false, nil
	}

	if err := store.Clear(ctx); err != nil {
		return false, fmt.Errorf("failed to clear saved accounts: %w", err)
	}
	if err := st.SetItem(ctx, marker, "true"); err != nil {
		return true, fmt.Errorf("failed to write migration marker: %w", err)
	}
	return true, nil
}
