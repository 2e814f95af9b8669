package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Cash   Method = "cash"
	Bank   Method = "bank"
	Mobile Method = "mobile"
)

const (
	Monthly Period = "monthly"
	Weekly  Period = "weekly"
)

// DefaultCurrency is used when a draft does not name one.
const DefaultCurrency = "NGN"

// MonthKeyLayout formats the calendar month bucket of a date, e.g. "2024-01".
const MonthKeyLayout = "2006-01"

type (
	TransactionType string
	Method          string
	Period          string

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
		Method      Method          `json:"method"`
		Currency    string          `json:"currency"`
	}

	// Draft carries every transaction field except the id.
	Draft struct {
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
		Method      Method          `json:"method"`
		Currency    string          `json:"currency"`
	}

	// Patch is a partial update; nil fields are left untouched.
	Patch struct {
		Type        *TransactionType `json:"type,omitempty"`
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		Category    *string          `json:"category,omitempty"`
		Description *string          `json:"description,omitempty"`
		Date        *time.Time       `json:"date,omitempty"`
		Method      *Method          `json:"method,omitempty"`
		Currency    *string          `json:"currency,omitempty"`
	}

	// Budget is a spending limit for a category. Spent is never stored here.
	Budget struct {
		ID       string          `json:"id"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Period   Period          `json:"period"`
	}

	BudgetDraft struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Period   Period          `json:"period"`
	}
)

// Recommended categories per transaction type. Not enforced.
var (
	IncomeCategories  = []string{"Salary", "Freelance", "Business", "Investment", "Gift", "Other"}
	ExpenseCategories = []string{"Food", "Transport", "Bills", "Shopping", "Healthcare", "Education", "Entertainment", "Other"}
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (m Method) IsValid() bool {
	switch m {
	case Cash, Bank, Mobile:
		return true
	default:
		return false
	}
}

func (p Period) IsValid() bool {
	return p == Monthly || p == Weekly
}

func (t Transaction) IsExpense() bool { return t.Type == Expense }

func (t Transaction) IsIncome() bool { return t.Type == Income }

// Signed returns the amount with the economic sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.IsExpense() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// MonthKey returns the calendar month bucket of the transaction date.
func (t Transaction) MonthKey() string {
	return t.Date.Format(MonthKeyLayout)
}

// Normalize fills defaults for optional fields. now is used when Date is zero.
func (d Draft) Normalize(now time.Time) Draft {
	if d.Type == "" {
		d.Type = Expense
	}
	if d.Method == "" {
		d.Method = Cash
	}
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.Date.IsZero() {
		d.Date = now
	}
	d.Category = strings.TrimSpace(d.Category)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

func (d Draft) Validate() error {
	var v ValidationError
	switch {
	case d.Amount.IsNegative():
		v.add("amount", ErrNegativeAmount)
	case d.Amount.IsZero():
		v.add("amount", ErrMissingAmount)
	}
	if strings.TrimSpace(d.Category) == "" {
		v.add("category", ErrMissingCategory)
	}
	if d.Type != "" && !d.Type.IsValid() {
		v.add("type", ErrInvalidType)
	}
	if d.Method != "" && !d.Method.IsValid() {
		v.add("method", ErrInvalidMethod)
	}
	return v.orNil()
}

// Transaction builds the stored record for the given id.
func (d Draft) Transaction(id string) Transaction {
	return Transaction{
		ID:          id,
		Type:        d.Type,
		Amount:      d.Amount,
		Category:    d.Category,
		Description: d.Description,
		Date:        d.Date,
		Method:      d.Method,
		Currency:    d.Currency,
	}
}

func (p Patch) Validate() error {
	var v ValidationError
	if p.Amount != nil {
		switch {
		case p.Amount.IsNegative():
			v.add("amount", ErrNegativeAmount)
		case p.Amount.IsZero():
			v.add("amount", ErrMissingAmount)
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		v.add("category", ErrMissingCategory)
	}
	if p.Type != nil && !p.Type.IsValid() {
		v.add("type", ErrInvalidType)
	}
	if p.Method != nil && !p.Method.IsValid() {
		v.add("method", ErrInvalidMethod)
	}
	return v.orNil()
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil && p.Description == nil &&
		p.Date == nil && p.Method == nil && p.Currency == nil
}

// Apply returns t with the patch fields merged in. ID is preserved.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Method != nil {
		t.Method = *p.Method
	}
	if p.Currency != nil {
		if c := strings.ToUpper(strings.TrimSpace(*p.Currency)); c != "" {
			t.Currency = c
		}
	}
	return t
}

func (d BudgetDraft) Normalize() BudgetDraft {
	d.Category = strings.TrimSpace(d.Category)
	if d.Period == "" {
		d.Period = Monthly
	}
	return d
}

func (d BudgetDraft) Validate() error {
	var v ValidationError
	if strings.TrimSpace(d.Category) == "" {
		v.add("category", ErrMissingCategory)
	}
	switch {
	case d.Amount.IsNegative():
		v.add("amount", ErrNegativeAmount)
	case d.Amount.IsZero():
		v.add("amount", ErrMissingAmount)
	}
	if d.Period != "" && !d.Period.IsValid() {
		v.add("period", ErrInvalidPeriod)
	}
	return v.orNil()
}
