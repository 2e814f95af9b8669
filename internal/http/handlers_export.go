package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/export"
	"fintrack/internal/filter"
	"fintrack/internal/log"
)

// handleExport downloads the (optionally filtered) transactions as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query(), s.location())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	txs := filter.Apply(s.ledger.List(), criteria)
	body := export.ToCSV(txs)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(s.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Export write failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		log.FieldOperation, log.OpExport, log.FieldCount, len(txs), log.FieldBytes, len(body))
}
