package security

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	// AllowedOrigins lists exact origins. "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig allows any origin to use the JSON API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         600,
	}
}

// CORS answers preflight requests and decorates responses for allowed
// origins.
type CORS struct {
	config   CORSConfig
	wildcard bool
}

func NewCORS(config CORSConfig) *CORS {
	defaults := DefaultCORSConfig()
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = defaults.AllowedMethods
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = defaults.AllowedHeaders
	}
	return &CORS{
		config:   config,
		wildcard: slices.Contains(config.AllowedOrigins, "*"),
	}
}

func (c *CORS) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if c.wildcard {
		return "*"
	}
	if slices.Contains(c.config.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := c.allowOrigin(origin)
		headers := w.Header()
		if !c.wildcard {
			headers.Add("Vary", "Origin")
		}
		if allowed != "" {
			headers.Set("Access-Control-Allow-Origin", allowed)
		}

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if !preflight {
			next.ServeHTTP(w, r)
			return
		}

		if allowed != "" {
			headers.Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
			headers.Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
			if c.config.MaxAge > 0 {
				headers.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
