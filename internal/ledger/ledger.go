// Package ledger owns the authoritative transaction collection and keeps it
// in sync with the storage port.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Store holds transactions most-recent-first. Every mutation writes the
// whole collection back under storage.TransactionsKey.
type Store struct {
	mu    sync.RWMutex
	txs   []core.Transaction
	dirty bool

	kv     storage.KV
	logger *log.Logger
	now    func() time.Time
	newID  func() string
	seed   []core.Transaction
}

var errUndecodable = errors.New("decode transactions")

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// WithClock overrides the time source used for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSeed replaces the bootstrap dataset.
func WithSeed(txs []core.Transaction) Option {
	return func(s *Store) { s.seed = slices.Clone(txs) }
}

// Open loads the collection from kv. A missing, unreadable or corrupt blob
// is never fatal: the store falls back to the bootstrap dataset. Missing and
// corrupt blobs also mark the store dirty so the next Flush writes the
// dataset out; after a read error the stored blob is left alone.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("ledger: nil storage")
	}
	s := &Store{
		kv:     kv,
		logger: log.Discard().WithComponent(log.ComponentLedger),
		now:    time.Now,
		newID:  uuid.NewString,
		seed:   SampleTransactions(),
	}
	for _, opt := range opts {
		opt(s)
	}

	txs, err := s.load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.InfoContext(ctx, "No stored transactions, using sample data",
			log.FieldOperation, log.OpLoad, log.FieldKey, storage.TransactionsKey)
		s.bootstrap()
	case errors.Is(err, errUndecodable):
		s.logger.WarnContext(ctx, "Stored transactions are corrupt, using sample data",
			log.FieldOperation, log.OpLoad, log.FieldKey, storage.TransactionsKey, log.FieldError, err)
		s.bootstrap()
	case err != nil:
		// The blob may still exist; only a mutation may replace it.
		s.logger.WarnContext(ctx, "Failed to load transactions, using sample data",
			log.FieldOperation, log.OpLoad, log.FieldKey, storage.TransactionsKey, log.FieldError, err)
		s.bootstrap()
		s.dirty = false
	default:
		s.txs = txs
		s.logger.InfoContext(ctx, "Loaded transactions",
			log.FieldOperation, log.OpLoad, log.FieldCount, len(txs))
	}
	return s, nil
}

func (s *Store) bootstrap() {
	s.txs = slices.Clone(s.seed)
	s.dirty = true
}

func (s *Store) load(ctx context.Context) ([]core.Transaction, error) {
	blob, err := s.kv.Get(ctx, storage.TransactionsKey)
	if err != nil {
		return nil, err
	}
	var txs []core.Transaction
	if err := json.Unmarshal(blob, &txs); err != nil {
		return nil, fmt.Errorf("%w: %w", errUndecodable, err)
	}
	return txs, nil
}

// save must be called with mu held for writing.
func (s *Store) save(ctx context.Context) error {
	blob, err := json.Marshal(s.txs)
	if err == nil {
		err = s.kv.Set(ctx, storage.TransactionsKey, blob)
	}
	if err != nil {
		s.dirty = true
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			log.FieldOperation, log.OpSave, log.FieldKey, storage.TransactionsKey,
			log.FieldCount, len(s.txs), log.FieldError, err)
		return &core.PersistenceError{Op: log.OpSave, Key: storage.TransactionsKey, Err: err}
	}
	s.dirty = false
	return nil
}

// Add validates the draft, assigns a fresh id and prepends the record.
// On a storage failure the record is still kept and returned together with
// a *core.PersistenceError.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := d.Normalize(s.now()).Transaction(s.uniqueID())
	s.txs = slices.Insert(s.txs, 0, tx)

	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(tx.ID, string(tx.Type), tx.Amount.String(), tx.Category, tx.Currency).
		ToSlice()...)

	return tx, s.save(ctx)
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// Update merges the patch into the record with the given id. An unknown id
// is a no-op reported through the bool result.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, bool, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false, nil
	}
	s.txs[i] = p.Apply(s.txs[i])

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpUpdate, log.FieldTxID, id)

	return s.txs[i], true, s.save(ctx)
}

// Delete removes the record with the given id. Unknown ids change nothing
// and trigger no write.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.txs = slices.Delete(s.txs, i, i+1)

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTxID, id)

	return true, s.save(ctx)
}

// List returns a copy of the collection, most-recent-first.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.txs[i], true
	}
	return core.Transaction{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Dirty reports whether the in-memory collection differs from what was
// last written successfully.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the collection if a previous write failed or the store was
// bootstrapped.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.save(ctx)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
}
