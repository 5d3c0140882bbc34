// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
)

type appMetrics struct {
	startedAt    time.Time
	txnsWritten  int64
	txnsDeleted  int64
	importedRows int64
	cacheHits    int64
	cacheMisses  int64
}

type Server struct {
	http.Server
	svc *services.LedgerService

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	headers *security.HeadersMiddleware

	// Month aggregations are recomputed on every read otherwise; both
	// caches are purged wholesale on any mutation.
	summaryCache *cache.LRUCache[summaryResponse]
	trendCache   *cache.LRUCache[core.Trend]

	metrics          appMetrics
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, svc *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		svc:              svc,
		limiter:          ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:           trace.NewMiddleware(security.ExtractClientIP),
		headers:          security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		summaryCache:     cache.NewLRUCache[summaryResponse](100, 5*time.Minute),
		trendCache:       cache.NewLRUCache[core.Trend](100, 5*time.Minute),
		metrics:          appMetrics{startedAt: time.Now()},
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.Handle("/api/transactions", s.wrap(http.HandlerFunc(s.handleTransactions)))
	mux.Handle("/api/transactions/", s.wrap(http.HandlerFunc(s.handleTransactionByID)))
	mux.Handle("/api/budget", s.wrap(http.HandlerFunc(s.handleBudget)))
	mux.Handle("/api/summary", s.wrap(http.HandlerFunc(s.handleSummary)))
	mux.Handle("/api/trend", s.wrap(http.HandlerFunc(s.handleTrend)))
	mux.Handle("/api/export", s.wrap(http.HandlerFunc(s.handleExport)))
	mux.Handle("/api/import", s.wrap(http.HandlerFunc(s.handleImport)))
	mux.Handle("/api/theme", s.wrap(http.HandlerFunc(s.handleTheme)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	return s
}

// wrap composes the API middleware chain: tracing outermost, then
// security headers, then rate limiting on mutating methods.
func (s *Server) wrap(next http.Handler) http.Handler {
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := security.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
	return s.tracer.Middleware(s.headers.Middleware(limited))
}

// purgeCaches drops memoized aggregations after any mutation.
func (s *Server) purgeCaches() {
	s.summaryCache.Purge()
	s.trendCache.Purge()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.summaryCache.CleanExpired()
			s.trendCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the background goroutines along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) cacheHit()  { atomic.AddInt64(&s.metrics.cacheHits, 1) }
func (s *Server) cacheMiss() { atomic.AddInt64(&s.metrics.cacheMisses, 1) }
