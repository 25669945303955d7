// Package localapi serves the Lambda handlers over plain HTTP for local
// development.
package localapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/app"
	"github.com/pricofy/crypto-price-api/internal/handler"
)

// maxBody caps request bodies, matching the API Gateway payload limit.
const maxBody = 10 << 20

// NewRouter mounts the lookup handler at /search and the history handler
// at /history.
func NewRouter(lookup, history app.HandleFunc, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.HandleFunc("/search", adapt(lookup))
	r.HandleFunc("/history", adapt(history))
	return r
}

func adapt(h app.HandleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		resp, err := h(r.Context(), toRequest(r, body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}

func toRequest(r *http.Request, body []byte) handler.Request {
	var req handler.Request
	req.RawPath = r.URL.Path
	req.RawQueryString = r.URL.RawQuery
	req.Body = string(body)
	req.RequestContext.HTTP.Method = r.Method
	req.RequestContext.HTTP.Path = r.URL.Path
	req.RequestContext.HTTP.SourceIP = r.RemoteAddr
	req.RequestContext.RequestID = middleware.GetReqID(r.Context())

	if q := r.URL.Query(); len(q) > 0 {
		req.QueryStringParameters = make(map[string]string, len(q))
		for k, v := range q {
			req.QueryStringParameters[k] = strings.Join(v, ",")
		}
	}
	if len(r.Header) > 0 {
		req.Headers = make(map[string]string, len(r.Header))
		for k, v := range r.Header {
			req.Headers[strings.ToLower(k)] = strings.Join(v, ",")
		}
	}
	return req
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "localapi").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request served")
		})
	}
}
