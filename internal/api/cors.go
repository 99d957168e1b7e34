package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// CORSConfig holds CORS configuration. Only the server's own origin and the
// listed extra origins receive CORS headers.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// DefaultCORSConfig returns a same-origin only config. Previews and file
// paths must not be readable by scripts of other sites open in the browser.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept"},
		MaxAge:       600,
	}
}

// allowedOrigin returns origin when it may read responses served to host,
// or "" otherwise.
func (c CORSConfig) allowedOrigin(origin, host string) string {
	if origin == "" {
		return ""
	}
	if origin == "http://"+host || slices.Contains(c.AllowOrigins, origin) {
		return origin
	}
	return ""
}

type corsHeaders struct {
	allowMethods string
	allowHeaders string
	maxAge       string
}

func (c CORSConfig) headers() corsHeaders {
	return corsHeaders{
		allowMethods: strings.Join(c.AllowMethods, ", "),
		allowHeaders: strings.Join(c.AllowHeaders, ", "),
		maxAge:       strconv.Itoa(c.MaxAge),
	}
}

// NewCORSMiddleware creates CORS middleware with the given configuration
func NewCORSMiddleware(config CORSConfig) func(huma.Context, func(huma.Context)) {
	h := config.headers()

	return func(ctx huma.Context, next func(huma.Context)) {
		if origin := config.allowedOrigin(ctx.Header("Origin"), ctx.Host()); origin != "" {
			ctx.SetHeader("Access-Control-Allow-Origin", origin)
			ctx.SetHeader("Access-Control-Allow-Methods", h.allowMethods)
			ctx.SetHeader("Access-Control-Allow-Headers", h.allowHeaders)
			ctx.SetHeader("Access-Control-Max-Age", h.maxAge)
			ctx.SetHeader("Vary", "Origin")
		}

		if ctx.Method() == http.MethodOptions {
			ctx.SetStatus(http.StatusNoContent)
			return
		}

		next(ctx)
	}
}

// AddCORSHandler adds a CORS preflight handler to the mux for OPTIONS requests
// This is needed because Huma middleware doesn't intercept OPTIONS before routing
func AddCORSHandler(mux *http.ServeMux, config CORSConfig) {
	h := config.headers()

	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		if origin := config.allowedOrigin(r.Header.Get("Origin"), r.Host); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", h.allowMethods)
			w.Header().Set("Access-Control-Allow-Headers", h.allowHeaders)
			w.Header().Set("Access-Control-Max-Age", h.maxAge)
			w.Header().Set("Vary", "Origin")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
