package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// SampleTransactions is the dataset a fresh or unreadable store starts from.
func SampleTransactions() []core.Transaction {
	day := func(d int) time.Time { return time.Date(2024, time.December, d, 0, 0, 0, 0, time.UTC) }
	return []core.Transaction{
		{ID: "1", Type: core.Expense, Amount: decimal.NewFromInt(2500), Category: "Food",
			Description: "Lunch at local restaurant", Date: day(15), Method: core.Cash, Currency: "NGN"},
		{ID: "2", Type: core.Expense, Amount: decimal.NewFromInt(1500), Category: "Transport",
			Description: "Bus fare to work", Date: day(14), Method: core.Mobile, Currency: "NGN"},
		{ID: "3", Type: core.Income, Amount: decimal.NewFromInt(150000), Category: "Salary",
			Description: "Monthly salary", Date: day(1), Method: core.Bank, Currency: "NGN"},
		{ID: "4", Type: core.Expense, Amount: decimal.NewFromInt(5000), Category: "Bills",
			Description: "Electricity bill", Date: day(10), Method: core.Bank, Currency: "NGN"},
		{ID: "5", Type: core.Expense, Amount: decimal.NewFromInt(3200), Category: "Shopping",
			Description: "Groceries for the week", Date: day(12), Method: core.Cash, Currency: "NGN"},
	}
}
