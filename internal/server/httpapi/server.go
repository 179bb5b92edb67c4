// Package httpapi exposes the REST surface used by the fire-detection
// dashboard: signup, login, logout, profile, prediction and video upload.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/firewatch/internal/logging"
	"github.com/dmitrijs2005/firewatch/internal/server/auth"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/dmitrijs2005/firewatch/internal/server/services"
)

const (
	ShutdownTimeout = 10 * time.Second

	maxJSONBodySize = 1 << 20
	// room for multipart boundaries and headers around the file part
	multipartOverhead = 1 << 20
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	Authenticate(ctx context.Context, authorization string) (*auth.Identity, error)
}

type VideoService interface {
	Upload(ctx context.Context, ownerID string, up services.VideoUpload) (*models.Video, error)
}

type PredictionService interface {
	Predict(ctx context.Context, inputData any) (string, error)
}

type HTTPServer struct {
	address       string
	logger        logging.Logger
	metrics       *Metrics
	users         UserService
	videos        VideoService
	predictions   PredictionService
	maxUploadSize int64
	httpServer    *http.Server
}

func NewHTTPServer(a string, l logging.Logger, m *Metrics, us UserService, vs VideoService, ps PredictionService, maxUploadSize int64) *HTTPServer {
	s := &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		metrics:       m,
		users:         us,
		videos:        vs,
		predictions:   ps,
		maxUploadSize: maxUploadSize,
	}

	s.httpServer = &http.Server{
		Addr:              a,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the full middleware chain around the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.requestIDMiddleware(corsMiddleware(s.observeMiddleware(s.routes())))
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/profile", s.requireAuth(s.handleProfile))

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /api/upload-video", s.handleUploadVideo)

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
