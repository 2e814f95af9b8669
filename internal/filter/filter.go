// Package filter narrows a transaction list by the criteria of the
// transaction view.
package filter

import (
	"strings"
	"time"

	"fintrack/internal/core"
)

// All disables the type or method criterion.
const All = "all"

// Criteria are combined with AND. Zero values match everything.
type Criteria struct {
	Search   string
	Type     string
	Category string
	Method   string
	From     time.Time
	To       time.Time
}

// Apply returns the matching transactions in their original order.
func Apply(txs []core.Transaction, c Criteria) []core.Transaction {
	m := c.matcher()
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// HasActive reports whether any criterion narrows the result.
func (c Criteria) HasActive() bool {
	return strings.TrimSpace(c.Search) != "" ||
		isSet(c.Type) || isSet(c.Method) ||
		strings.TrimSpace(c.Category) != "" ||
		!c.From.IsZero() || !c.To.IsZero()
}

// Clear resets every criterion.
func (c *Criteria) Clear() {
	*c = Criteria{}
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

type matcher struct {
	search   string
	txType   core.TransactionType
	category string
	method   core.Method
	from     time.Time
	until    time.Time // exclusive
}

func (c Criteria) matcher() matcher {
	m := matcher{
		search:   strings.ToLower(strings.TrimSpace(c.Search)),
		category: strings.TrimSpace(c.Category),
	}
	if isSet(c.Type) {
		m.txType = core.TransactionType(strings.ToLower(strings.TrimSpace(c.Type)))
	}
	if isSet(c.Method) {
		m.method = core.Method(strings.ToLower(strings.TrimSpace(c.Method)))
	}
	if !c.From.IsZero() {
		m.from = startOfDay(c.From)
	}
	if !c.To.IsZero() {
		m.until = startOfDay(c.To).AddDate(0, 0, 1)
	}
	return m
}

func (m matcher) match(t core.Transaction) bool {
	if m.search != "" &&
		!strings.Contains(strings.ToLower(t.Description), m.search) &&
		!strings.Contains(strings.ToLower(t.Category), m.search) {
		return false
	}
	if m.txType != "" && t.Type != m.txType {
		return false
	}
	if m.category != "" && t.Category != m.category {
		return false
	}
	if m.method != "" && t.Method != m.method {
		return false
	}
	if !m.from.IsZero() && t.Date.Before(m.from) {
		return false
	}
	if !m.until.IsZero() && !t.Date.Before(m.until) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
