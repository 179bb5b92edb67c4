package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/logging"
	"github.com/dmitrijs2005/firewatch/internal/server/auth"
	"github.com/google/uuid"
)

const (
	msgNoToken      = "Access Denied: No token provided"
	msgInvalidToken = "Invalid or expired token"

	maxRequestIDLength = 128
)

type ctxKey string

const identityKey ctxKey = "identity"

func identityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// requireAuth admits only requests carrying a valid bearer token with a live
// session and puts the token holder's identity in the request context.
func (s *HTTPServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.users.Authenticate(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorUnauthenticated):
				writeMessage(w, http.StatusUnauthorized, msgNoToken)
			case errors.Is(err, common.ErrorForbidden):
				writeMessage(w, http.StatusForbidden, msgInvalidToken)
			default:
				s.logger.Error(r.Context(), "authentication failed", "error", err)
				writeMessage(w, http.StatusInternalServerError, msgInternal)
			}
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	}
}

func (s *HTTPServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(common.RequestIDHeaderName))
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, reqID)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), reqID)))
	})
}

// corsMiddleware allows any origin. Preflight requests are answered here.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Expose-Headers", common.RequestIDHeaderName)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// observeMiddleware must wrap the mux directly: the mux records the matched
// pattern on the request it is given.
func (s *HTTPServer) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" || route == "/" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		s.metrics.observeRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
