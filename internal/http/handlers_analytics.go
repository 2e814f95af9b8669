package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/currency"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	summary := analytics.Overview(s.ledger.List(), now)

	code := sanitizeInput(r.URL.Query().Get("currency"))
	if code == "" {
		code = core.DefaultCurrency
	}
	format := func(d decimal.Decimal, signed bool) string { return currency.Format(d, code, signed) }

	NewJSONResponse().Data(map[string]any{
		"summary": summary,
		"month":   now.Format(core.MonthKeyLayout),
		"formatted": map[string]string{
			"totalIncome":  format(summary.TotalIncome, false),
			"totalExpense": format(summary.TotalExpense, false),
			"balance":      format(summary.Balance, false),
			"monthIncome":  format(summary.MonthIncome, false),
			"monthExpense": format(summary.MonthExpense, false),
			"monthNet":     format(summary.MonthNet, true),
		},
	}).Write(w)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown := analytics.CategoryBreakdown(s.ledger.List())

	top := analytics.TopCategories
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequestError("top must be a non-negative integer").Write(w)
			return
		}
		top = n
	}

	NewJSONResponse().Data(map[string]any{
		"total":      breakdown.Total,
		"categories": breakdown.Categories,
		"top":        breakdown.Top(top),
	}).Write(w)
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(analytics.MonthlySeries(s.ledger.List())).Write(w)
}

// handleCategoryTotals reports the month given by ?month=YYYY-MM, or the
// current one.
func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query(), s.location(), s.now())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{
		"month":  month.Format(core.MonthKeyLayout),
		"totals": analytics.CategoryTotals(s.ledger.List(), month),
	}).Write(w)
}
