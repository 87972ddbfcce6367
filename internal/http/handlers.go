package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

// handleHealth answers the API health probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "OK",
		"message": "Budget Tracker API is running",
	})
}

// handleLiveness performs a basic liveness check
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady pings the backend and reports cache and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.pinger == nil:
		checks["backend"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed",
				log.FieldBackend, s.pinger.Name(), log.FieldError, err.Error())
			checks["backend"] = fmt.Sprintf("failed: %s", s.pinger.Name())
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["cache"] = map[string]any{
		"category_entries":    s.categoryCache.Size(),
		"transaction_entries": s.transactionCache.Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	categoryStats := s.categoryCache.Stats()
	transactionStats := s.transactionCache.Stats()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, lines ...string) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests",
		fmt.Sprintf("http_requests_total %d", traceMetrics.TotalRequests))
	metric("http_responses_errors_total", "counter", "HTTP responses by error class",
		fmt.Sprintf("http_responses_errors_total{class=\"4xx\"} %d", traceMetrics.ClientErrors),
		fmt.Sprintf("http_responses_errors_total{class=\"5xx\"} %d", traceMetrics.ServerErrors))
	metric("http_response_time_avg_microseconds", "gauge", "Average response time",
		fmt.Sprintf("http_response_time_avg_microseconds %d", traceMetrics.AverageResponseTime))
	metric("categories_created_total", "counter", "Categories created through the API",
		fmt.Sprintf("categories_created_total %d", atomic.LoadInt64(&s.appMetrics.categoriesCreated)))
	metric("transactions_created_total", "counter", "Transactions created through the API",
		fmt.Sprintf("transactions_created_total %d", atomic.LoadInt64(&s.appMetrics.transactionsCreated)))
	metric("cache_hits_total", "counter", "Total cache hits",
		fmt.Sprintf("cache_hits_total{cache=\"categories\"} %d", categoryStats.Hits),
		fmt.Sprintf("cache_hits_total{cache=\"transactions\"} %d", transactionStats.Hits))
	metric("cache_misses_total", "counter", "Total cache misses",
		fmt.Sprintf("cache_misses_total{cache=\"categories\"} %d", categoryStats.Misses),
		fmt.Sprintf("cache_misses_total{cache=\"transactions\"} %d", transactionStats.Misses))
	metric("cache_entries", "gauge", "Current cache entries",
		fmt.Sprintf("cache_entries{cache=\"categories\"} %d", s.categoryCache.Size()),
		fmt.Sprintf("cache_entries{cache=\"transactions\"} %d", s.transactionCache.Size()))
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter",
		fmt.Sprintf("rate_limit_rejected_total %d", rateLimitMetrics.Rejected))
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients",
		fmt.Sprintf("active_rate_limit_clients %d", rateLimitMetrics.ClientCount))
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected",
		fmt.Sprintf("suspicious_requests_total %d", securityMetrics.SuspiciousRequests))
	metric("invalid_ip_attempts_total", "counter", "Malformed forwarded client addresses",
		fmt.Sprintf("invalid_ip_attempts_total %d", securityMetrics.InvalidIPAttempts))
	metric("uptime_seconds", "gauge", "Application uptime in seconds",
		fmt.Sprintf("uptime_seconds %.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

type summaryResponse struct {
	Currency         core.Currency `json:"currency"`
	Income           string        `json:"income"`
	Expenses         string        `json:"expenses"`
	Transfers        string        `json:"transfers"`
	Balance          string        `json:"balance"`
	FormattedBalance string        `json:"formatted_balance"`
	Count            int           `json:"count"`
}

// handleSummary totals the cached transaction list per currency.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := s.getTransactions(r.Context(), "")
	if err != nil {
		s.writeServiceError(w, r, err, log.OpSummary, transactionErrors.withFailure("Failed to fetch summary"))
		return
	}

	sums := core.Summarize(txs)
	out := make([]summaryResponse, 0, len(sums))
	for _, sum := range sums {
		out = append(out, summaryResponse{
			Currency:         sum.Currency,
			Income:           sum.Income.StringFixed(2),
			Expenses:         sum.Expenses.StringFixed(2),
			Transfers:        sum.Transfers.StringFixed(2),
			Balance:          sum.Balance().StringFixed(2),
			FormattedBalance: core.FormatDecimal(sum.Balance(), sum.Currency),
			Count:            sum.Count,
		})
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("Route not found").Write(w)
}
