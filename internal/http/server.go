package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// Ledger is the transaction store the handlers drive.
type Ledger interface {
	Add(ctx context.Context, d core.Draft) (core.Transaction, error)
	Update(ctx context.Context, id string, p core.Patch) (core.Transaction, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List() []core.Transaction
	Get(id string) (core.Transaction, bool)
	Dirty() bool
}

// Budgets holds the budget definitions.
type Budgets interface {
	Add(ctx context.Context, d core.BudgetDraft) (core.Budget, error)
	Delete(ctx context.Context, id string) (bool, error)
	List() []core.Budget
	Dirty() bool
}

var _ Budgets = (*budget.Book)(nil)

// Options tunes the server. Zero values pick defaults.
type Options struct {
	Logger *log.Logger
	Clock  func() time.Time
	// RequestsPerMinute limits mutating requests per client.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	ledger  Ledger
	budgets Budgets
	logger  *log.Logger
	now     func() time.Time

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, budgets Budgets, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	s := &Server{
		ledger:  ledger,
		budgets: budgets,
		logger:  logger,
		now:     now,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:  trace.NewMiddleware(logger, security.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/analytics/overview", s.handleOverview)
	mux.HandleFunc("GET /api/analytics/categories", s.handleCategoryBreakdown)
	mux.HandleFunc("GET /api/analytics/monthly", s.handleMonthlySeries)
	mux.HandleFunc("GET /api/analytics/category-totals", s.handleCategoryTotals)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/export", s.handleExport)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(security.ClientIP, onRateLimited,
		http.MethodPost, http.MethodPatch, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", "60").
		Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":        "ready",
		"pendingWrites": s.ledger.Dirty() || s.budgets.Dirty(),
	}).Write(w)
}

// location is where calendar-day parameters are interpreted.
func (s *Server) location() *time.Location {
	return s.now().Location()
}
