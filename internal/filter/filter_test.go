package filter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func day(d, hour int) time.Time {
	return time.Date(2024, time.December, d, hour, 0, 0, 0, time.UTC)
}

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Type: core.Expense, Amount: decimal.NewFromInt(2500), Category: "Food", Description: "Lunch at local restaurant", Date: day(15, 13), Method: core.Cash},
		{ID: "b", Type: core.Expense, Amount: decimal.NewFromInt(1500), Category: "Transport", Description: "Bus fare to work", Date: day(14, 8), Method: core.Mobile},
		{ID: "c", Type: core.Income, Amount: decimal.NewFromInt(150000), Category: "Salary", Description: "Monthly salary", Date: day(1, 9), Method: core.Bank},
		{ID: "d", Type: core.Expense, Amount: decimal.NewFromInt(5000), Category: "Bills", Description: "Electricity bill", Date: day(10, 23), Method: core.Bank},
		{ID: "e", Type: core.Expense, Amount: decimal.NewFromInt(3200), Category: "Shopping", Description: "Groceries for the week", Date: day(12, 0), Method: core.Cash},
	}
}

func ids(txs []core.Transaction) string {
	s := ""
	for _, t := range txs {
		s += t.ID
	}
	return s
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     string
	}{
		{"no criteria", Criteria{}, "abcde"},
		{"type all", Criteria{Type: "all", Method: "all"}, "abcde"},
		{"expense only keeps order", Criteria{Type: "expense"}, "abde"},
		{"income", Criteria{Type: "income"}, "c"},
		{"search description case-insensitive", Criteria{Search: "  BUS "}, "b"},
		{"search matches category", Criteria{Search: "bill"}, "d"},
		{"search no match", Criteria{Search: "rent"}, ""},
		{"category exact", Criteria{Category: "Food"}, "a"},
		{"method", Criteria{Method: "bank"}, "cd"},
		{"from inclusive", Criteria{From: day(14, 18)}, "ab"},
		{"to inclusive through end of day", Criteria{To: day(10, 0)}, "cd"},
		{"closed range", Criteria{From: day(10, 0), To: day(14, 0)}, "bde"},
		{"combined", Criteria{Type: "expense", Method: "cash", Search: "groc"}, "e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Apply(sample(), tt.criteria)); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Apply(in, Criteria{Type: "income"})
	if ids(in) != "abcde" {
		t.Fatalf("input changed: %q", ids(in))
	}
}

func TestHasActiveAndClear(t *testing.T) {
	c := Criteria{}
	if c.HasActive() {
		t.Fatal("empty criteria should not be active")
	}
	c = Criteria{Type: "all", Method: "ALL", Search: "   "}
	if c.HasActive() {
		t.Fatal("all/blank values should not be active")
	}
	c.Category = "Food"
	if !c.HasActive() {
		t.Fatal("category should make criteria active")
	}
	c.Clear()
	if c.HasActive() || c != (Criteria{}) {
		t.Fatalf("clear left %+v", c)
	}
}
