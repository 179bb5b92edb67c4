package httpapi

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/firewatch/internal/logging"
	"github.com/dmitrijs2005/firewatch/internal/server/auth"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/dmitrijs2005/firewatch/internal/server/services"
)

var errNotImplemented = errors.New("not implemented")

type fakeUserService struct {
	registerFunc     func(name, email, password string) error
	loginFunc        func(email, password string) (string, error)
	logoutFunc       func(token string) error
	profileFunc      func(userID string) (*models.Profile, error)
	authenticateFunc func(authorization string) (*auth.Identity, error)
}

func (f fakeUserService) Register(_ context.Context, name, email, password string) error {
	if f.registerFunc == nil {
		return errNotImplemented
	}
	return f.registerFunc(name, email, password)
}

func (f fakeUserService) Login(_ context.Context, email, password string) (string, error) {
	if f.loginFunc == nil {
		return "", errNotImplemented
	}
	return f.loginFunc(email, password)
}

func (f fakeUserService) Logout(_ context.Context, token string) error {
	if f.logoutFunc == nil {
		return errNotImplemented
	}
	return f.logoutFunc(token)
}

func (f fakeUserService) Profile(_ context.Context, userID string) (*models.Profile, error) {
	if f.profileFunc == nil {
		return nil, errNotImplemented
	}
	return f.profileFunc(userID)
}

func (f fakeUserService) Authenticate(_ context.Context, authorization string) (*auth.Identity, error) {
	if f.authenticateFunc == nil {
		return nil, errNotImplemented
	}
	return f.authenticateFunc(authorization)
}

type fakeVideoService struct {
	uploadFunc func(ownerID string, up services.VideoUpload) (*models.Video, error)
}

func (f fakeVideoService) Upload(_ context.Context, ownerID string, up services.VideoUpload) (*models.Video, error) {
	if f.uploadFunc == nil {
		return nil, errNotImplemented
	}
	return f.uploadFunc(ownerID, up)
}

func newTestServer(us UserService, vs VideoService) *HTTPServer {
	return NewHTTPServer("127.0.0.1:0", logging.Nop{}, NewMetrics(), us, vs, services.NewPredictionService(), 1<<10)
}
