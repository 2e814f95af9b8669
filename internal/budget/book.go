package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultBudgets is what a fresh book starts with.
func DefaultBudgets() []core.Budget {
	return []core.Budget{
		{ID: "1", Category: "Food", Amount: decimal.NewFromInt(50000), Period: core.Monthly},
		{ID: "2", Category: "Transport", Amount: decimal.NewFromInt(20000), Period: core.Monthly},
		{ID: "3", Category: "Entertainment", Amount: decimal.NewFromInt(15000), Period: core.Monthly},
	}
}

// Book holds budget definitions and persists them under storage.BudgetsKey.
type Book struct {
	mu      sync.RWMutex
	budgets []core.Budget
	dirty   bool

	kv     storage.KV
	logger *log.Logger
	newID  func() string
}

func OpenBook(ctx context.Context, kv storage.KV, logger *log.Logger) (*Book, error) {
	if kv == nil {
		return nil, errors.New("budget: nil storage")
	}
	if logger == nil {
		logger = log.Discard()
	}
	b := &Book{
		kv:     kv,
		logger: logger.WithComponent(log.ComponentBudget),
		newID:  uuid.NewString,
	}

	blob, err := kv.Get(ctx, storage.BudgetsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		b.budgets, b.dirty = DefaultBudgets(), true
	case err != nil:
		// The blob may still exist; only a mutation may replace it.
		b.logger.WarnContext(ctx, "Failed to load budgets, using defaults",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		b.budgets = DefaultBudgets()
	default:
		if err := json.Unmarshal(blob, &b.budgets); err != nil {
			b.logger.WarnContext(ctx, "Stored budgets are corrupt, using defaults",
				log.FieldOperation, log.OpLoad, log.FieldError, err)
			b.budgets, b.dirty = DefaultBudgets(), true
		}
	}
	return b, nil
}

func (b *Book) save(ctx context.Context) error {
	blob, err := json.Marshal(b.budgets)
	if err == nil {
		err = b.kv.Set(ctx, storage.BudgetsKey, blob)
	}
	if err != nil {
		b.dirty = true
		b.logger.ErrorContext(ctx, "Failed to persist budgets",
			log.FieldOperation, log.OpSave, log.FieldError, err)
		return &core.PersistenceError{Op: log.OpSave, Key: storage.BudgetsKey, Err: err}
	}
	b.dirty = false
	return nil
}

// Add validates and appends a budget. The returned budget is valid even when
// the error is a *core.PersistenceError.
func (b *Book) Add(ctx context.Context, d core.BudgetDraft) (core.Budget, error) {
	if err := d.Validate(); err != nil {
		return core.Budget{}, err
	}
	d = d.Normalize()

	b.mu.Lock()
	defer b.mu.Unlock()

	budget := core.Budget{ID: b.newID(), Category: d.Category, Amount: d.Amount, Period: d.Period}
	b.budgets = append(b.budgets, budget)

	b.logger.InfoContext(ctx, "Budget added",
		log.FieldOperation, log.OpCreate, log.FieldBudgetID, budget.ID, log.FieldCategory, budget.Category)

	return budget, b.save(ctx)
}

func (b *Book) Delete(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.budgets, func(x core.Budget) bool { return x.ID == id })
	if i < 0 {
		return false, nil
	}
	b.budgets = slices.Delete(b.budgets, i, i+1)

	b.logger.InfoContext(ctx, "Budget deleted", log.FieldOperation, log.OpDelete, log.FieldBudgetID, id)

	return true, b.save(ctx)
}

func (b *Book) List() []core.Budget {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.budgets)
}

// Dirty reports whether the definitions differ from what storage holds.
func (b *Book) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// Flush writes the definitions if they were never stored or the last write
// failed.
func (b *Book) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dirty {
		return nil
	}
	if err := b.save(ctx); err != nil {
		return fmt.Errorf("flush budgets: %w", err)
	}
	return nil
}
