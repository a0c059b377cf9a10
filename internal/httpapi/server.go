package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error)
	Tokenize(ctx context.Context, req types.TokenizeRequest) (types.TokenizeResponse, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	// The root payload mirrors the original service contract: a one-element
	// collection, not a keyed object.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]string{"Hello"}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware)

		r.Post("/infer", func(w http.ResponseWriter, r *http.Request) {
			req, ok := decodeJSON[types.InferRequest](w, r)
			if !ok {
				return
			}
			lvl := requestLogLevel(r)
			start := time.Now()
			if lvl >= LevelInfo && zlog != nil {
				z := zlog.Info().Str("path", r.URL.Path)
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("infer start")
			}
			// Join server base context with request context so shutdown cancels work too.
			joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			resp, err := svc.Infer(joinedCtx, req)
			if err != nil {
				// If context was canceled (client disconnect), just return.
				if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
					return
				}
				status := errorStatus(err)
				if status == http.StatusTooManyRequests {
					IncrementBackpressure("queue_full")
				}
				writeJSONError(w, status, err.Error())
				logInferEnd(r, lvl, status, start, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
				return
			}
			logInferEnd(r, lvl, http.StatusOK, start, nil)
		})

		r.Post("/tokenize", func(w http.ResponseWriter, r *http.Request) {
			req, ok := decodeJSON[types.TokenizeRequest](w, r)
			if !ok {
				return
			}
			joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			resp, err := svc.Tokenize(joinedCtx, req)
			if err != nil {
				writeJSONError(w, errorStatus(err), err.Error())
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
				return
			}
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Swagger UI, only with the 'swagger' build tag.
	MountSwagger(r)

	return r
}

// decodeJSON enforces the JSON content type and body cap, then decodes the
// body into T. Missing keys keep their zero values; only malformed bodies
// fail.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return req, false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

// errorStatus maps well-known engine errors to HTTP status codes.
func errorStatus(err error) int {
	if engine.IsTooBusy(err) {
		return http.StatusTooManyRequests
	}
	if engine.IsDependencyUnavailable(err) {
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func logInferEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl < LevelInfo || zlog == nil {
		return
	}
	z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg("infer end")
}
