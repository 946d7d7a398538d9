package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

// Ledger is the use case surface the API exposes.
type Ledger interface {
	CreateAccount(ctx context.Context, owner core.Owner, in services.CreateAccountInput) (core.Account, error)
	UpdateAccount(ctx context.Context, owner core.Owner, id int64, in services.UpdateAccountInput) (core.Account, error)
	DeleteAccount(ctx context.Context, owner core.Owner, id int64) error
	GetAccount(ctx context.Context, owner core.Owner, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, owner core.Owner) ([]core.Account, error)

	AddCredit(ctx context.Context, owner core.Owner, in services.AddCreditInput) (services.CreditResult, error)
	DeleteCredit(ctx context.Context, owner core.Owner, id int64) error
	GetCredit(ctx context.Context, owner core.Owner, id int64) (core.Credit, error)
	ListCredits(ctx context.Context, owner core.Owner) ([]core.Credit, error)

	AddDebt(ctx context.Context, owner core.Owner, in services.AddDebtInput) (services.DebtResult, error)
	UpdateDebt(ctx context.Context, owner core.Owner, id int64, in services.UpdateDebtInput) (services.DebtResult, error)
	CloseDebt(ctx context.Context, owner core.Owner, id int64, accountID *int64) (services.Closed, error)
	GetDebt(ctx context.Context, owner core.Owner, id int64) (core.Debt, error)
	ListDebts(ctx context.Context, owner core.Owner) ([]core.Debt, error)

	CreateBudget(ctx context.Context, owner core.Owner, in services.BudgetInput) (core.Budget, error)
	UpdateBudget(ctx context.Context, owner core.Owner, id int64, in services.BudgetInput) (core.Budget, error)
	CloseBudget(ctx context.Context, owner core.Owner, id int64, transfer bool, accountID *int64) (services.Closed, error)
	GetBudget(ctx context.Context, owner core.Owner, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, owner core.Owner) ([]core.Budget, error)

	CreateInvestment(ctx context.Context, owner core.Owner, in services.CreateInvestmentInput) (services.InvestmentResult, error)
	UpdateInvestment(ctx context.Context, owner core.Owner, id int64, in services.UpdateInvestmentInput) (services.InvestmentResult, error)
	CloseInvestment(ctx context.Context, owner core.Owner, id int64, addToAccount bool) (services.Closed, error)
	GetInvestment(ctx context.Context, owner core.Owner, id int64) (core.Investment, error)
	ListInvestments(ctx context.Context, owner core.Owner) ([]core.Investment, error)

	Ping(ctx context.Context) error
}

var _ Ledger = (*services.LedgerService)(nil)

type Options struct {
	Keys               KeyResolver
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	ledger  Ledger
	keys    KeyResolver
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger
	slog    *log.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	keys := opts.Keys
	if keys == nil {
		keys = StaticKeys{}
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 16, // 64KB
		},
		ledger:  ledger,
		keys:    keys,
		limiter: ratelimit.NewLimiter(ratelimit.Config{Limit: opts.RateLimitPerMinute, Window: time.Minute}),
		tracer:  trace.NewMiddleware(extractClientIP, logger),
		logger:  logger.WithComponent(log.ComponentHTTP),
		slog:    log.NewStructuredLogger(logger),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.protect(h))
	}

	api("POST /api/accounts", s.handleCreateAccount)
	api("GET /api/accounts", s.handleListAccounts)
	api("GET /api/accounts/{id}", s.handleGetAccount)
	api("PUT /api/accounts/{id}", s.handleUpdateAccount)
	api("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	api("POST /api/credits/{accountId}", s.handleAddCredit)
	api("GET /api/credits", s.handleListCredits)
	api("GET /api/credits/{id}", s.handleGetCredit)
	api("DELETE /api/credits/{id}", s.handleDeleteCredit)

	api("POST /api/debts", s.handleAddDebt)
	api("GET /api/debts", s.handleListDebts)
	api("GET /api/debts/{id}", s.handleGetDebt)
	api("PUT /api/debts/{id}", s.handleUpdateDebt)
	api("DELETE /api/debts/{id}", s.handleCloseDebt)

	api("POST /api/budgets", s.handleCreateBudget)
	api("GET /api/budgets", s.handleListBudgets)
	api("GET /api/budgets/{id}", s.handleGetBudget)
	api("PUT /api/budgets/{id}", s.handleUpdateBudget)
	api("POST /api/budgets/close/{id}", s.handleCloseBudget)

	api("POST /api/investments", s.handleCreateInvestment)
	api("GET /api/investments", s.handleListInvestments)
	api("GET /api/investments/{id}", s.handleGetInvestment)
	api("PUT /api/investments/{id}", s.handleUpdateInvestment)
	api("DELETE /api/investments/{id}", s.handleCloseInvestment)

	s.Handler = s.tracer.Middleware(securityHeaders(mux))
	return s
}

// protect applies rate limiting and caller identity to an API handler.
func (s *Server) protect(h http.Handler) http.Handler {
	limit := s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, extractClientIP(r), log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})
	return limit(s.requireAPIKey(h))
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		traced, limited := s.tracer.Stats(), s.limiter.Stats()
		s.logger.Info("HTTP server stopped",
			"requests", traced.Requests,
			"server_errors", traced.ServerErrors,
			"rate_limited", limited.Rejected)
	})
	return shutdownErr
}

// owner returns the caller identity. The API key middleware guarantees it.
func owner(r *http.Request) core.Owner {
	o, _ := OwnerFromContext(r.Context())
	return o
}

// writeError maps err to a JSON error response. Business errors are logged
// at Warn, everything else at Error with the full cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	ctx := r.Context()
	if status == http.StatusInternalServerError {
		s.slog.LogError(ctx, "Ledger operation failed", err, log.ComponentHTTP, op,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
	} else {
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).WarnContext(ctx, "Ledger operation rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldErrorType, errorType(status),
			log.FieldError, msg)
	}
	ErrorResponse(status, msg).Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusForbidden:
		return log.ErrorTypeOwnership
	case http.StatusConflict:
		return log.ErrorTypeConflict
	default:
		return log.ErrorTypeValidation
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Payload(v).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
