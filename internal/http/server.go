package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// CategoryService is the category surface the handlers need.
type CategoryService interface {
	ListActive(ctx context.Context) ([]core.Category, error)
	Get(ctx context.Context, id string) (core.Category, error)
	Create(ctx context.Context, name string) (core.Category, error)
	Update(ctx context.Context, id, name string) (core.Category, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

// TransactionService is the transaction surface the handlers need.
type TransactionService interface {
	ListAll(ctx context.Context) ([]core.Transaction, error)
	ListByType(ctx context.Context, t core.TransactionType) ([]core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

// Config holds server settings.
type Config struct {
	Addr               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheSize          int
}

// Server serves the budget JSON API at the root and under /api.
type Server struct {
	http.Server
	categories   CategoryService
	transactions TransactionService
	pinger       Pinger
	logger       *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	categoryCache    *cache.LRUCache[[]core.Category]
	transactionCache *cache.LRUCache[[]core.Transaction]
	cacheManager     *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime              time.Time
	categoriesCreated   int64
	transactionsCreated int64
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(cfg Config, categories CategoryService, transactions TransactionService, pinger Pinger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		categories:       categories,
		transactions:     transactions,
		pinger:           pinger,
		logger:           logger,
		securityDetector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			WritesOnly:        true,
		}),
		categoryCache:    cache.NewLRUCache[[]core.Category](cfg.CacheSize, cfg.CacheTTL),
		transactionCache: cache.NewLRUCache[[]core.Transaction](cfg.CacheSize, cfg.CacheTTL),
		cacheManager:     cache.NewManager(logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	s.cacheManager.Register(s.categoryCache)
	s.cacheManager.Register(s.transactionCache)
	if cfg.CacheTTL > 0 {
		s.cacheManager.StartCleanup(cfg.CacheTTL * 2)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = security.DefaultCORSConfig().AllowedOrigins
	}

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewCORS(security.CORSConfig{AllowedOrigins: origins}).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// routes registers every API route twice: at the root and under /api.
func (s *Server) routes(mux *http.ServeMux) {
	api := map[string]http.HandlerFunc{
		"GET /categories":         s.handleListCategories,
		"GET /categories/{id}":    s.handleGetCategory,
		"POST /categories":        s.handleCreateCategory,
		"PUT /categories/{id}":    s.handleUpdateCategory,
		"DELETE /categories/{id}": s.handleDeleteCategory,

		"GET /transactions":         s.handleListTransactions,
		"GET /transactions/{id}":    s.handleGetTransaction,
		"POST /transactions":        s.handleCreateTransaction,
		"PUT /transactions/{id}":    s.handleUpdateTransaction,
		"DELETE /transactions/{id}": s.handleDeleteTransaction,

		"GET /summary": s.handleSummary,
		"GET /health":  s.handleHealth,
	}
	for pattern, h := range api {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+path, h)
		mux.HandleFunc(method+" /api"+path, h)
	}

	mux.HandleFunc("GET /healthz", s.handleLiveness)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("/", s.handleNotFound)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// invalidateCategories drops cached category lists after a write.
func (s *Server) invalidateCategories() {
	s.categoryCache.Clear()
}

// invalidateTransactions drops cached transaction lists after a write.
func (s *Server) invalidateTransactions() {
	s.transactionCache.Clear()
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
