package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/users"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/videos"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- users ---

type fakeUsersRepo struct {
	byEmail     map[string]*models.User
	createCalls int
	createErr   error
	getErr      error
	profileErr  error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, name, email, passwordHash string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	if _, ok := f.byEmail[email]; ok {
		return "", common.ErrorDuplicateEmail
	}
	id := fmt.Sprintf("u-%d", len(f.byEmail)+1)
	f.byEmail[email] = &models.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	return id, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return &models.Profile{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- sessions ---

type fakeSessionsRepo struct {
	mu        sync.Mutex
	byToken   map[string]models.Session
	createErr error
	deleteErr error
	existsErr error

	expiredN     int64
	expiredErr   error
	expiredCalls chan time.Time
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{byToken: map[string]models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID, token string, createdAt, expiresAt time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("s-%d", len(f.byToken)+1)
	f.byToken[token] = models.Session{ID: id, UserID: userID, Token: token, CreatedAt: createdAt, ExpiresAt: expiresAt}
	return id, nil
}

func (f *fakeSessionsRepo) DeleteByToken(ctx context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.byToken[token]; !ok {
		return 0, nil
	}
	delete(f.byToken, token)
	return 1, nil
}

func (f *fakeSessionsRepo) Exists(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byToken[token]
	return ok, nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.expiredCalls != nil {
		select {
		case f.expiredCalls <- now:
		default:
		}
	}
	return f.expiredN, f.expiredErr
}

func (f *fakeSessionsRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byToken)
}

// --- videos ---

type fakeVideosRepo struct {
	created []*models.Video
	err     error
}

func (f *fakeVideosRepo) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	v.ID = fmt.Sprintf("v-%d", len(f.created)+1)
	v.CreatedAt = time.Now()
	f.created = append(f.created, v)
	return v, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	v *fakeVideosRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository     { return m.s }
func (m *fakeRepoManager) Videos(db dbx.DBTX) videos.Repository         { return m.v }
