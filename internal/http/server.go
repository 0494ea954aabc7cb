package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"ledgerbook/internal/log"
	"ledgerbook/internal/middleware/ratelimit"
	"ledgerbook/internal/middleware/security"
	"ledgerbook/internal/middleware/trace"
	"ledgerbook/internal/services"
)

// DefaultOwnerHeader carries the caller identity when Options leaves it unset.
const DefaultOwnerHeader = "X-Owner-ID"

type Server struct {
	http.Server
	svc         *services.LedgerService
	ownerHeader string
	logger      *log.Logger
	ready       func(ctx context.Context) error

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	clientIP *security.ClientIPResolver

	started      time.Time
	shutdownOnce sync.Once
}

// Options configures NewServer. Zero values select defaults.
type Options struct {
	OwnerHeader string
	Logger      *log.Logger
	// Ready reports whether the backing store can serve requests.
	Ready     func(ctx context.Context) error
	RateLimit ratelimit.Config
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ownerHeader := strings.TrimSpace(opts.OwnerHeader)
	if ownerHeader == "" {
		ownerHeader = DefaultOwnerHeader
	}

	clientIP := security.NewClientIPResolver()
	s := &Server{
		svc:         svc,
		ownerHeader: ownerHeader,
		logger:      logger,
		ready:       opts.Ready,
		limiter:     ratelimit.NewLimiter(opts.RateLimit),
		tracer:      trace.NewMiddleware(logger, clientIP.ExtractClientIP),
		clientIP:    clientIP,
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("GET /budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PATCH /budgets/{id}", s.handleRenameBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /budgets/{id}/transactions", s.handleAppendTransaction)
	mux.HandleFunc("PATCH /budgets/{id}/transactions/{txnID}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /budgets/{id}/transactions/{txnID}", s.handleRemoveTransaction)
	mux.HandleFunc("GET /budgets/{id}/blocks", s.handleBudgetBlocks)

	mux.HandleFunc("POST /misc", s.handleCreateMisc)
	mux.HandleFunc("GET /misc", s.handleListMisc)
	mux.HandleFunc("GET /misc/{id}", s.handleGetMisc)
	mux.HandleFunc("DELETE /misc/{id}", s.handleDeleteMisc)
	mux.HandleFunc("POST /misc/{id}/entries", s.handleAppendEntry)
	mux.HandleFunc("PATCH /misc/{id}/entries/{entryID}", s.handleEditEntry)
	mux.HandleFunc("DELETE /misc/{id}/entries/{entryID}", s.handleRemoveEntry)
	mux.HandleFunc("DELETE /misc/{id}/categories/{category}", s.handleRemoveCategory)

	mux.HandleFunc("GET /rollup", s.handleRollup)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(clientIP.ExtractClientIP, s.onRateLimited)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)

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

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIP.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later", trace.GetRequestID(r.Context())).Write(w)
}

// Shutdown stops the limiter cleanup loop and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
