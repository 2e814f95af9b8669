// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; query strings carry filter criteria.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// DateLayout is the date-only form accepted in bodies and query strings.
const DateLayout = "2006-01-02"

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Has reports whether the key was sent at all, even empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp. Calendar
// dates are placed at midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, core.ErrInvalidDate
}

// parseAmountField treats an absent or empty amount as zero so that the
// domain validation reports it as missing.
func parseAmountField(p *RequestBodyParser) (decimal.Decimal, error) {
	raw := p.Get("amount")
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, core.NewValidationError("amount", err)
	}
	return amount, nil
}

// ParseDraft builds a transaction draft from the request body. Defaults are
// applied later by the store.
func ParseDraft(p *RequestBodyParser, loc *time.Location) (core.Draft, error) {
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}
	amount, err := parseAmountField(p)
	if err != nil {
		return core.Draft{}, err
	}
	d := core.Draft{
		Type:        core.TransactionType(strings.ToLower(p.Get("type"))),
		Amount:      amount,
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Method:      core.Method(strings.ToLower(p.Get("method"))),
		Currency:    p.Get("currency"),
	}
	if v := p.Get("date"); v != "" {
		if d.Date, err = parseDate(v, loc); err != nil {
			return core.Draft{}, core.NewValidationError("date", err)
		}
	}
	return d, nil
}

// ParsePatch builds a partial update from the keys present in the body.
func ParsePatch(p *RequestBodyParser, loc *time.Location) (core.Patch, error) {
	if err := p.Parse(); err != nil {
		return core.Patch{}, err
	}
	var patch core.Patch
	if p.Has("type") {
		t := core.TransactionType(strings.ToLower(p.Get("type")))
		patch.Type = &t
	}
	if p.Has("amount") {
		amount, err := core.ParseAmount(p.Get("amount"))
		if err != nil {
			return core.Patch{}, core.NewValidationError("amount", err)
		}
		patch.Amount = &amount
	}
	if p.Has("category") {
		c := p.Get("category")
		patch.Category = &c
	}
	if p.Has("description") {
		d := p.Get("description")
		patch.Description = &d
	}
	if p.Has("date") {
		when, err := parseDate(p.Get("date"), loc)
		if err != nil {
			return core.Patch{}, core.NewValidationError("date", err)
		}
		patch.Date = &when
	}
	if p.Has("method") {
		m := core.Method(strings.ToLower(p.Get("method")))
		patch.Method = &m
	}
	if p.Has("currency") {
		c := p.Get("currency")
		patch.Currency = &c
	}
	return patch, nil
}

// ParseBudgetDraft builds a budget draft from the request body.
func ParseBudgetDraft(p *RequestBodyParser) (core.BudgetDraft, error) {
	if err := p.Parse(); err != nil {
		return core.BudgetDraft{}, err
	}
	amount, err := parseAmountField(p)
	if err != nil {
		return core.BudgetDraft{}, err
	}
	return core.BudgetDraft{
		Category: p.Get("category"),
		Amount:   amount,
		Period:   core.Period(strings.ToLower(p.Get("period"))),
	}, nil
}

// ParseCriteria reads filter criteria from query parameters. Dates are
// calendar days in loc.
func ParseCriteria(query url.Values, loc *time.Location) (filter.Criteria, error) {
	c := filter.Criteria{
		Search:   sanitizeInput(query.Get("search")),
		Type:     strings.ToLower(sanitizeInput(query.Get("type"))),
		Category: sanitizeInput(query.Get("category")),
		Method:   strings.ToLower(sanitizeInput(query.Get("method"))),
	}
	var errs []error
	if v := sanitizeInput(query.Get("from")); v != "" {
		from, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			errs = append(errs, core.NewValidationError("from", core.ErrInvalidDate))
		}
		c.From = from
	}
	if v := sanitizeInput(query.Get("to")); v != "" {
		to, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			errs = append(errs, core.NewValidationError("to", core.ErrInvalidDate))
		}
		c.To = to
	}
	if c.Type != "" && c.Type != filter.All && !core.TransactionType(c.Type).IsValid() {
		errs = append(errs, core.NewValidationError("type", core.ErrInvalidType))
	}
	if c.Method != "" && c.Method != filter.All && !core.Method(c.Method).IsValid() {
		errs = append(errs, core.NewValidationError("method", core.ErrInvalidMethod))
	}
	if len(errs) > 0 {
		return filter.Criteria{}, mergeValidation(errs)
	}
	return c, nil
}

func mergeValidation(errs []error) error {
	merged := &core.ValidationError{}
	for _, err := range errs {
		var v *core.ValidationError
		if errors.As(err, &v) {
			merged.Fields = append(merged.Fields, v.Fields...)
		}
	}
	return merged
}

// parseMonth reads a "2006-01" month parameter and returns a time inside
// that month in loc, or fallback when absent.
func parseMonth(query url.Values, loc *time.Location, fallback time.Time) (time.Time, error) {
	v := sanitizeInput(query.Get("month"))
	if v == "" {
		return fallback, nil
	}
	m, err := time.ParseInLocation(core.MonthKeyLayout, v, loc)
	if err != nil {
		return time.Time{}, core.NewValidationError("month", core.ErrInvalidDate)
	}
	return m, nil
}
