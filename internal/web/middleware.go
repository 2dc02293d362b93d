package web

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/observability/metrics"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// RequestLogger emits structured logs for every HTTP request.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			// chi's RequestID middleware runs first; reuse its ID so logs
			// and context agree.
			reqID := middleware.GetReqID(r.Context())
			if reqID == "" {
				reqID = uuid.NewString()
			}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Metrics records request counts and latency per chi route pattern, keeping
// label cardinality bounded regardless of URL parameters.
func Metrics(m *metrics.WebMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(route, r.Method, strconv.Itoa(sw.status), time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// loadSession attaches the session record and the stored user mirror to the
// request context. Missing or invalid sessions pass through anonymously.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.sessions.Read(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := withSession(r.Context(), rec)
		if user, err := rec.DecodeUser(); err == nil {
			ctx = withUser(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser gates authenticated pages. The stored token is re-verified
// against the backend; an unreachable backend falls back to the stored user
// so the dashboard stays usable, while a rejected token ends the session.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := SessionFrom(r.Context())
		if rec == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		user, err := h.sessions.Resume(r.Context(), rec)
		if err != nil {
			if errors.Is(err, backend.ErrSessionExpired) {
				h.sessions.Clear(r.Context(), w, r)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// requireStaff gates the admin dashboard to admin and doctor roles.
func (h *Handler) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil || !user.IsStaff() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverer renders the retry/go-home fallback page on panics. The raw error
// and stack are shown only in development.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic serving request",
					"path", r.URL.Path,
					"panic", rec,
				)
				detail := ""
				if h.cfg.Env == "development" {
					detail = fmt.Sprintf("%v\n\n%s", rec, debug.Stack())
				}
				w.WriteHeader(http.StatusInternalServerError)
				h.render(w, r, "error.html", map[string]any{
					"Title":  "Something went wrong",
					"Detail": detail,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
