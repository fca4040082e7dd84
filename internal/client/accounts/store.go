package accounts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/client/storage"
	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

// DefaultStorageKey is the key the collection is stored under.
const DefaultStorageKey = "savedAccounts"

// Store persists the account collection under one storage key. Every mutation
// is a full read-modify-write of the collection.
type Store struct {
	storage storage.Storage
	codec   Codec
	key     string
	logger  logging.Logger
	now     func() time.Time

	mu sync.Mutex
}

type StoreOption func(*Store)

// WithCodec replaces the default JSONCodec.
func WithCodec(c Codec) StoreOption {
	return func(s *Store) { s.codec = c }
}

// WithStorageKey replaces DefaultStorageKey.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(st storage.Storage, logger logging.Logger, opts ...StoreOption) *Store {
	s := &Store{
		storage: st,
		codec:   JSONCodec{},
		key:     DefaultStorageKey,
		logger:  logger.With("module", "account_store"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) load(ctx context.Context) ([]Record, error) {
	data, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return nil, &StorageError{Op: opRead, Err: err}
	}
	if !ok || data == "" {
		return nil, nil
	}

	records, err := s.codec.Decode(data)
	if err != nil {
		return nil, &StorageError{Op: opRead, Err: err}
	}
	return records, nil
}

// loadOrEmpty treats an unreadable collection as empty.
func (s *Store) loadOrEmpty(ctx context.Context) []Record {
	records, err := s.load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "saved accounts unreadable, treating as empty", "error", err)
		return nil
	}
	return records
}

func (s *Store) save(ctx context.Context, records []Record) error {
	data, err := s.codec.Encode(records)
	if err != nil {
		return &StorageError{Op: opWrite, Err: err}
	}
	if err := s.storage.SetItem(ctx, s.key, data); err != nil {
		return &StorageError{Op: opWrite, Err: err}
	}
	return nil
}

// Upsert merges p into the record for email, creating it when missing.
// Stale duplicates of the same email are collapsed into one record.
// LastUsedAt is set on creation only, so repeating an upsert changes nothing.
// An unreadable collection is left untouched and yields ErrStorageRead.
func (s *Store) Upsert(ctx context.Context, email string, p Patch) error {
	email = common.NormalizeEmail(email)
	if email == "" {
		return ErrIncompleteIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		s.logger.Error(ctx, "saved accounts unreadable, not saving", "email", email, "error", err)
		return err
	}

	out := make([]Record, 0, len(records)+1)
	at := -1
	for _, r := range records {
		if common.NormalizeEmail(r.Email) != email {
			out = append(out, r)
			continue
		}
		if at < 0 {
			at = len(out)
			out = append(out, r)
			continue
		}
		out[at].fillFrom(r)
	}

	if at < 0 {
		out = append(out, Record{Email: email, LastUsedAt: s.now()})
		at = len(out) - 1
	}
	out[at].Email = email
	out[at].apply(p)

	if err := s.save(ctx, out); err != nil {
		s.logger.Error(ctx, "failed to save account", "email", email, "error", err)
		return err
	}
	return nil
}

// List returns every saved record. An unreadable collection yields an empty
// slice; the failure is only logged.
func (s *Store) List(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadOrEmpty(ctx)
	if records == nil {
		return []Record{}
	}
	return records
}

// Get returns the record for email.
func (s *Store) Get(ctx context.Context, email string) (Record, bool) {
	email = common.NormalizeEmail(email)
	for _, r := range s.List(ctx) {
		if common.NormalizeEmail(r.Email) == email {
			return r, true
		}
	}
	return Record{}, false
}

// Touch marks the record of userID as used now. Unknown ids are ignored.
func (s *Store) Touch(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadOrEmpty(ctx)
	found := false
	for i := range records {
		if records[i].UserID == userID {
			records[i].LastUsedAt = s.now()
			found = true
		}
	}
	if !found {
		return nil
	}
	return s.save(ctx, records)
}

// Remove deletes the record of userID. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.removeFunc(ctx, func(r Record) bool { return r.UserID == userID })
}

// RemoveEmail deletes the record of email, including records saved before the
// user id was known.
func (s *Store) RemoveEmail(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)
	return s.removeFunc(ctx, func(r Record) bool { return common.NormalizeEmail(r.Email) == email })
}

func (s *Store) removeFunc(ctx context.Context, match func(Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadOrEmpty(ctx)
	kept := slices.DeleteFunc(slices.Clone(records), match)
	if len(kept) == len(records) {
		return nil
	}
	return s.save(ctx, kept)
}

// Clear drops the whole collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		return &StorageError{Op: opWrite, Err: err}
	}
	return nil
}

// Switchable returns the accounts a user signed in as currentUserID can switch
// to: the current account is left out, duplicate emails keep their first
// remaining record, and the most recently used come first.
func (s *Store) Switchable(ctx context.Context, currentUserID string) []Record {
	seen := make(map[string]bool)
	out := make([]Record, 0)

	for _, r := range s.List(ctx) {
		if currentUserID != "" && r.UserID == currentUserID {
			continue
		}
		email := common.NormalizeEmail(r.Email)
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		return b.LastUsedAt.Compare(a.LastUsedAt)
	})
	return out
}
