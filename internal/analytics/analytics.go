// Package analytics derives totals, category shares and monthly series from
// a transaction list. Every function is pure.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TopCategories is the length of the "top categories" list.
const TopCategories = 5

var hundred = decimal.NewFromInt(100)

type (
	CategoryShare struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Count      int             `json:"count"`
		Percentage float64         `json:"percentage"`
	}

	Breakdown struct {
		Total      decimal.Decimal `json:"total"`
		Categories []CategoryShare `json:"categories"`
	}

	MonthBucket struct {
		Month   string          `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	Summary struct {
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		Balance      decimal.Decimal `json:"balance"`
		MonthIncome  decimal.Decimal `json:"monthIncome"`
		MonthExpense decimal.Decimal `json:"monthExpense"`
		MonthNet     decimal.Decimal `json:"monthNet"`
		Count        int             `json:"count"`
	}
)

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// CategoryTotals sums expenses per category for the calendar month of now,
// evaluated in now's location. Categories with no expense are absent.
func CategoryTotals(txs []core.Transaction, now time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.IsExpense() || !sameMonth(t.Date.In(now.Location()), now) {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// CategoryBreakdown groups every expense by category, largest first.
func CategoryBreakdown(txs []core.Transaction) Breakdown {
	byCategory := make(map[string]*CategoryShare)
	total := decimal.Zero
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		total = total.Add(t.Amount)
		share, ok := byCategory[t.Category]
		if !ok {
			share = &CategoryShare{Category: t.Category, Amount: decimal.Zero}
			byCategory[t.Category] = share
		}
		share.Amount = share.Amount.Add(t.Amount)
		share.Count++
	}

	categories := make([]CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		if !total.IsZero() {
			share.Percentage, _ = share.Amount.Mul(hundred).Div(total).Round(2).Float64()
		}
		categories = append(categories, *share)
	}
	slices.SortFunc(categories, func(a, b CategoryShare) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	return Breakdown{Total: total, Categories: categories}
}

// Top returns at most n leading categories.
func (b Breakdown) Top(n int) []CategoryShare {
	if n < 0 || n >= len(b.Categories) {
		return b.Categories
	}
	return b.Categories[:n]
}

// MonthlySeries buckets income and expense by the month of each
// transaction's own date, oldest month first.
func MonthlySeries(txs []core.Transaction) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, t := range txs {
		key := t.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = b
		}
		if t.IsIncome() {
			b.Income = b.Income.Add(t.Amount)
		} else {
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	series := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	slices.SortFunc(series, func(a, b MonthBucket) int { return cmp.Compare(a.Month, b.Month) })
	return series
}

// Overview computes the dashboard totals: all-time and for the month of now.
func Overview(txs []core.Transaction, now time.Time) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		MonthIncome:  decimal.Zero,
		MonthExpense: decimal.Zero,
		Count:        len(txs),
	}
	for _, t := range txs {
		current := sameMonth(t.Date.In(now.Location()), now)
		switch {
		case t.IsIncome():
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			if current {
				s.MonthIncome = s.MonthIncome.Add(t.Amount)
			}
		case t.IsExpense():
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			if current {
				s.MonthExpense = s.MonthExpense.Add(t.Amount)
			}
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.MonthNet = s.MonthIncome.Sub(s.MonthExpense)
	return s
}
