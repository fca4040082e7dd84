package accounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/client/storage"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			UserID:         "u1",
			Email:          "a@x.com",
			FullName:       "Alice",
			UserType:       "owner",
			Username:       "a",
			RefreshToken:   "rt",
			StoredPassword: "pw",
			LastUsedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	in := sampleRecords()

	data, err := JSONCodec{}.Encode(in)
	require.NoError(t, err)
	assert.Contains(t, data, `"userId":"u1"`)
	assert.Contains(t, data, `"storedPassword":"pw"`)

	out, err := JSONCodec{}.Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONCodec_EncodeNil(t *testing.T) {
	data, err := JSONCodec{}.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", data)
}

func TestSealedCodec_RoundTrip(t *testing.T) {
	c := NewSealedCodec("correct horse")
	in := sampleRecords()

	data, err := c.Encode(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, sealedPrefix))
	assert.NotContains(t, data, "a@x.com")

	out, err := NewSealedCodec("correct horse").Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSealedCodec_WrongPassphrase(t *testing.T) {
	data, err := NewSealedCodec("one").Encode(sampleRecords())
	require.NoError(t, err)

	_, err = NewSealedCodec("two").Decode(data)
	require.Error(t, err)
}

func TestSealedCodec_RejectsPlainAndGarbage(t *testing.T) {
	c := NewSealedCodec("p")

	_, err := c.Decode(`[]`)
	require.ErrorIs(t, err, errNotSealed)

	_, err = c.Decode(sealedPrefix + "!!!")
	require.Error(t, err)

	_, err = c.Decode(sealedPrefix + "AAAA")
	require.Error(t, err)
}

func TestStore_WithSealedCodec_WrongKeyReadsEmpty(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	s := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("secret")))
	require.NoError(t, s.Upsert(ctx, "a@x.com", Patch{StoredPassword: Str("pw")}))
	require.Len(t, s.List(ctx), 1)

	raw, _, err := st.GetItem(ctx, DefaultStorageKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "pw")

	other := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("guess")))
	assert.Empty(t, other.List(ctx))

	again := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("secret")))
	assert.Len(t, again.List(ctx), 1)
}

func TestStore_WithSealedCodec_OtherKeyDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	s := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("old")))
	require.NoError(t, s.Upsert(ctx, "a@x.com", Patch{UserID: Str("u1")}))
	require.NoError(t, s.Upsert(ctx, "b@x.com", Patch{UserID: Str("u2")}))

	other := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("new")))
	err := other.Upsert(ctx, "c@x.com", Patch{UserID: Str("u3")})
	require.ErrorIs(t, err, ErrStorageRead)

	again := NewStore(st, logging.Discard(), WithCodec(NewSealedCodec("old")))
	assert.Len(t, again.List(ctx), 2)
}
