// Package budget evaluates spending limits against the current month and
// keeps the list of budget definitions.
package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

type Severity string

const (
	Normal   Severity = "normal"
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Ratio thresholds, in percent.
var (
	WarningThreshold  = decimal.NewFromInt(80)
	CriticalThreshold = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

// Status is a budget joined with what was spent on its category this month.
type Status struct {
	Budget       core.Budget     `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Ratio        decimal.Decimal `json:"ratio"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsOverBudget bool            `json:"isOverBudget"`
	Overage      decimal.Decimal `json:"overage"`
	Remaining    decimal.Decimal `json:"remaining"`
	Severity     Severity        `json:"severity"`
}

type Summary struct {
	TotalBudget     decimal.Decimal `json:"totalBudget"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	Remaining       decimal.Decimal `json:"remaining"`
	OverBudgetCount int             `json:"overBudgetCount"`
}

// Evaluate computes one status per budget, in input order. Spent is always
// the calendar month of now, weekly budgets included.
func Evaluate(budgets []core.Budget, txs []core.Transaction, now time.Time) []Status {
	totals := analytics.CategoryTotals(txs, now)
	out := make([]Status, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, status(b, totals[b.Category]))
	}
	return out
}

func status(b core.Budget, spent decimal.Decimal) Status {
	var ratio decimal.Decimal
	switch {
	case b.Amount.IsPositive():
		ratio = spent.Mul(hundred).Div(b.Amount).Round(2)
	case spent.IsPositive():
		ratio = hundred
	default:
		ratio = decimal.Zero
	}

	s := Status{
		Budget:       b,
		Spent:        spent,
		Ratio:        ratio,
		Percentage:   decimal.Min(ratio, hundred),
		IsOverBudget: spent.GreaterThan(b.Amount),
		Overage:      decimal.Zero,
		Remaining:    decimal.Max(b.Amount.Sub(spent), decimal.Zero),
		Severity:     SeverityOf(ratio),
	}
	if s.IsOverBudget {
		s.Overage = spent.Sub(b.Amount)
	}
	return s
}

// SeverityOf maps a spent/limit ratio in percent to its alert level.
func SeverityOf(ratio decimal.Decimal) Severity {
	switch {
	case ratio.GreaterThanOrEqual(CriticalThreshold):
		return Critical
	case ratio.GreaterThanOrEqual(WarningThreshold):
		return Warning
	default:
		return Normal
	}
}

// Summarize totals the statuses. Remaining goes negative when the overall
// spend exceeds the overall limit.
func Summarize(statuses []Status) Summary {
	s := Summary{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero}
	for _, st := range statuses {
		s.TotalBudget = s.TotalBudget.Add(st.Budget.Amount)
		s.TotalSpent = s.TotalSpent.Add(st.Spent)
		if st.IsOverBudget {
			s.OverBudgetCount++
		}
	}
	s.Remaining = s.TotalBudget.Sub(s.TotalSpent)
	return s
}
