package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/filter"
	"fintrack/internal/log"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"income":     core.IncomeCategories,
		"expense":    core.ExpenseCategories,
		"currencies": currency.Codes(),
	}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query(), s.location())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	all := s.ledger.List()
	txs := filter.Apply(all, criteria)
	NewJSONResponse().Data(map[string]any{
		"transactions":  txs,
		"count":         len(txs),
		"total":         len(all),
		"filtersActive": criteria.HasActive(),
	}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.ledger.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseDraft(NewRequestBodyParser(r), s.location())
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}

	tx, err := s.ledger.Add(r.Context(), draft)
	if core.IsValidation(err) {
		ValidationErrorResponse(err).Write(w)
		return
	}
	s.writeMutation(w, r, http.StatusCreated, tx, err)
}

// handleUpdateTransaction answers 204 for an unknown id: updates of missing
// records are silent no-ops.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	patch, err := ParsePatch(NewRequestBodyParser(r), s.location())
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}

	tx, found, err := s.ledger.Update(r.Context(), r.PathValue("id"), patch)
	if core.IsValidation(err) {
		ValidationErrorResponse(err).Write(w)
		return
	}
	if !found && err == nil {
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
		return
	}
	s.writeMutation(w, r, http.StatusOK, tx, err)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	_, err := s.ledger.Delete(r.Context(), r.PathValue("id"))
	s.writeMutation(w, r, http.StatusNoContent, nil, err)
}

func (s *Server) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsValidation(err) {
		ValidationErrorResponse(err).Write(w)
		return
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body", log.FieldError, err)
	BadRequestError("malformed request body").Write(w)
}

// writeMutation reports a mutation that was applied in memory. A storage
// failure turns into a warning rather than an error response.
func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	resp := NewJSONResponse().Status(status)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrPersistence):
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Change kept in memory but not persisted", err, log.OpSave, nil)
		resp.Warning("change not saved to storage; it will be retried")
		if status == http.StatusNoContent {
			resp.Status(http.StatusOK)
		}
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Mutation failed", log.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}
	if data != nil {
		resp.Data(data)
	}
	resp.Write(w)
}
