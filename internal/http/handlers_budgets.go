package http

import (
	"net/http"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	statuses := budget.Evaluate(s.budgets.List(), s.ledger.List(), s.now())
	NewJSONResponse().Data(map[string]any{
		"budgets": statuses,
		"summary": budget.Summarize(statuses),
	}).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseBudgetDraft(NewRequestBodyParser(r))
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}
	b, err := s.budgets.Add(r.Context(), draft)
	if core.IsValidation(err) {
		ValidationErrorResponse(err).Write(w)
		return
	}
	s.writeMutation(w, r, http.StatusCreated, b, err)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	_, err := s.budgets.Delete(r.Context(), r.PathValue("id"))
	s.writeMutation(w, r, http.StatusNoContent, nil, err)
}
