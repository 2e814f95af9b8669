package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, kv storage.KV, opts ...Option) *Store {
	t.Helper()
	n := 0
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}, opts...)
	s, err := Open(context.Background(), kv, opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func draft(amount int64, category string) core.Draft {
	return core.Draft{Type: core.Expense, Amount: decimal.NewFromInt(amount), Category: category}
}

func TestOpenBootstrapsWhenEmpty(t *testing.T) {
	s := newStore(t, memory.New())
	txs := s.List()
	if len(txs) != 5 {
		t.Fatalf("expected 5 sample transactions, got %d", len(txs))
	}
	if txs[0].ID != "1" || txs[2].Type != core.Income {
		t.Fatalf("unexpected sample data %+v", txs)
	}
	if !s.Dirty() {
		t.Fatal("bootstrapped store should be dirty until flushed")
	}
}

func TestOpenFallsBackOnCorruptOrFailingStorage(t *testing.T) {
	corrupt := memory.NewWith(map[string][]byte{storage.TransactionsKey: []byte("{not json")})
	if got := newStore(t, corrupt).Len(); got != 5 {
		t.Fatalf("corrupt blob: expected sample data, got %d records", got)
	}

	failing := memory.New()
	failing.FailGets(errors.New("disk unplugged"))
	if got := newStore(t, failing).Len(); got != 5 {
		t.Fatalf("read error: expected sample data, got %d records", got)
	}
}

func TestOpenAfterReadErrorKeepsStoredData(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewWith(map[string][]byte{storage.TransactionsKey: []byte(`[{"id":"user-1","type":"expense","amount":"10","category":"Food","date":"2025-03-01T00:00:00Z","method":"cash","currency":"NGN"}]`)})
	kv.FailGets(errors.New("connection refused"))

	s := newStore(t, kv)
	if s.Len() != 5 {
		t.Fatalf("expected sample data for the session, got %d records", s.Len())
	}
	if s.Dirty() {
		t.Fatal("a read error must not schedule a write over the stored blob")
	}

	kv.FailGets(nil)
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	blob, err := kv.Get(ctx, storage.TransactionsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var stored []core.Transaction
	if err := json.Unmarshal(blob, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != "user-1" {
		t.Fatalf("stored data was overwritten: %+v", stored)
	}
	if kv.Writes() != 0 {
		t.Fatalf("expected no writes, got %d", kv.Writes())
	}
}

func TestOpenCorruptBlobIsRewritten(t *testing.T) {
	kv := memory.NewWith(map[string][]byte{storage.TransactionsKey: []byte("{not json")})
	s := newStore(t, kv)
	if !s.Dirty() {
		t.Fatal("corrupt blob should be replaced on the next flush")
	}
	if err := s.Flush(context.Background()); err != nil || kv.Writes() != 1 {
		t.Fatalf("flush: writes=%d err=%v", kv.Writes(), err)
	}
}

func TestEncodeFailureMarksDirty(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv, WithSeed(nil))
	d := draft(100, "Food")
	d.Date = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.Add(context.Background(), d); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !s.Dirty() {
		t.Fatal("an unencodable collection must stay dirty")
	}
	if err := s.Flush(context.Background()); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("flush should keep reporting the failure, got %v", err)
	}
}

func TestAddPrependsWithFreshID(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv, WithSeed(nil))

	first, err := s.Add(context.Background(), draft(100, "Food"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.Add(context.Background(), draft(200, " Transport "))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique, both %q", first.ID)
	}

	txs := s.List()
	if len(txs) != 2 || txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Fatalf("expected most recent first, got %+v", txs)
	}
	if second.Category != "Transport" || second.Method != core.Cash || second.Currency != core.DefaultCurrency {
		t.Fatalf("defaults not applied: %+v", second)
	}
	if !second.Date.Equal(fixedNow) {
		t.Fatalf("expected clock date, got %v", second.Date)
	}
	if kv.Writes() != 2 || s.Dirty() {
		t.Fatalf("expected two clean writes, got %d dirty=%v", kv.Writes(), s.Dirty())
	}
}

func TestAddSkipsCollidingIDs(t *testing.T) {
	ids := []string{"1", "1", "fresh"}
	s := newStore(t, memory.New(), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	tx, err := s.Add(context.Background(), draft(10, "Food"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID != "fresh" {
		t.Fatalf("expected generator to be retried past existing id, got %q", tx.ID)
	}
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	before := s.Len()

	tests := []struct {
		name string
		d    core.Draft
		want error
	}{
		{"missing amount", core.Draft{Category: "Food"}, core.ErrMissingAmount},
		{"negative amount", draft(-5, "Food"), core.ErrNegativeAmount},
		{"missing category", draft(5, "  "), core.ErrMissingCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(context.Background(), tt.d)
			if !errors.Is(err, tt.want) || !core.IsValidation(err) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if s.Len() != before || kv.Writes() != 0 {
		t.Fatalf("rejected drafts must not change anything")
	}
}

func TestUpdate(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	desc := "Dinner"
	amount := decimal.NewFromInt(4000)

	got, found, err := s.Update(context.Background(), "1", core.Patch{Description: &desc, Amount: &amount})
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}
	if got.ID != "1" || got.Description != "Dinner" || !got.Amount.Equal(amount) || got.Category != "Food" {
		t.Fatalf("unexpected merge result %+v", got)
	}
	if stored, _ := s.Get("1"); stored.Description != "Dinner" {
		t.Fatalf("update not visible through Get")
	}

	writes := kv.Writes()
	if _, found, err := s.Update(context.Background(), "missing", core.Patch{Description: &desc}); found || err != nil {
		t.Fatalf("unknown id should be a silent no-op, found=%v err=%v", found, err)
	}
	if kv.Writes() != writes {
		t.Fatal("unknown id must not trigger a write")
	}

	bad := core.TransactionType("transfer")
	if _, _, err := s.Update(context.Background(), "1", core.Patch{Type: &bad}); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected invalid type, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)

	removed, err := s.Delete(context.Background(), "3")
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if _, ok := s.Get("3"); ok || s.Len() != 4 {
		t.Fatal("record should be gone")
	}

	before := s.List()
	writes := kv.Writes()
	removed, err = s.Delete(context.Background(), "nope")
	if err != nil || removed {
		t.Fatalf("unknown id: removed=%v err=%v", removed, err)
	}
	after := s.List()
	if len(after) != len(before) || kv.Writes() != writes {
		t.Fatal("deleting an unknown id must leave the collection unchanged")
	}
}

func TestSaveFailureKeepsMutationAndRetries(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv, WithSeed(nil))
	kv.FailSets(errors.New("quota exceeded"))

	tx, err := s.Add(context.Background(), draft(750, "Food"))
	var perr *core.PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if tx.ID == "" || s.Len() != 1 {
		t.Fatal("in-memory mutation should stay applied")
	}
	if !s.Dirty() {
		t.Fatal("store should be dirty after failed write")
	}

	kv.FailSets(nil)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.Dirty() {
		t.Fatal("flush should clear dirty flag")
	}

	reopened := newStore(t, kv)
	if reopened.Len() != 1 {
		t.Fatalf("expected retried write to be durable, got %d records", reopened.Len())
	}
}

func TestFlushNoopWhenClean(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	writes := kv.Writes()
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if kv.Writes() != writes {
		t.Fatal("clean store should not write")
	}
}

func TestDatesRoundTripExactly(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv, WithSeed(nil))
	lagos := time.FixedZone("WAT", 3600)
	when := time.Date(2024, time.February, 29, 23, 59, 58, 123456789, lagos)

	d := draft(1, "Food")
	d.Date = when
	if _, err := s.Add(context.Background(), d); err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened := newStore(t, kv)
	got := reopened.List()[0].Date
	if !got.Equal(when) || got.Format(time.RFC3339Nano) != when.Format(time.RFC3339Nano) {
		t.Fatalf("date changed across save/load: %v vs %v", got, when)
	}
}

func TestSerializedShape(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv, WithSeed(nil))
	if _, err := s.Add(context.Background(), draft(1500, "Food")); err != nil {
		t.Fatalf("add: %v", err)
	}
	blob, err := kv.Get(context.Background(), storage.TransactionsKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("stored blob is not a JSON array: %v", err)
	}
	if raw[0]["amount"] != "1500" || raw[0]["type"] != "expense" {
		t.Fatalf("unexpected stored record %v", raw[0])
	}
}

func TestOpenNilStorage(t *testing.T) {
	if _, err := Open(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}
