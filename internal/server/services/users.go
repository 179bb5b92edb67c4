package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/server/auth"
	"github.com/dmitrijs2005/firewatch/internal/server/config"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/repomanager"
)

const (
	MinPasswordLength = 6

	// bcrypt refuses to hash longer passwords.
	MaxPasswordBytes = 72
)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	hasher                      *auth.PasswordHasher
	dummyHash                   string
	now                         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// compared against when the email is unknown
	dummyPassword, _ := common.MakeRandHexString(16)
	dummyHash, _ := hasher.Hash(dummyPassword)

	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hasher:                      hasher,
		dummyHash:                   dummyHash,
		now:                         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. It does not log the user in.
func (s *UserService) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if name == "" || email == "" || password == "" {
		return common.NewValidationError("All fields are required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return common.NewValidationError(fmt.Sprintf("Password must be at most %d bytes long", MaxPasswordBytes))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.Create(ctx, name, email, hash); err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return common.ErrorDuplicateEmail
		}
		return fmt.Errorf("%w: creating user: %v", common.ErrorInternal, err)
	}

	return nil
}

// Login checks the credentials, issues a bearer token and records a session
// for it.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return "", common.NewValidationError("Email and password are required")
	}
	if len(password) > MaxPasswordBytes {
		return "", common.ErrorInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Compare(s.dummyHash, password)
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: looking up user: %v", common.ErrorInternal, err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("%w: comparing password: %v", common.ErrorInternal, err)
	}
	if !ok {
		return "", common.ErrorInvalidCredentials
	}

	issuedAt := s.now()
	identity := auth.Identity{UserID: user.ID, Name: user.Name, Email: user.Email}

	token, expiresAt, err := auth.GenerateToken(identity, s.jwtSecret, issuedAt, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %v", common.ErrorInternal, err)
	}

	if _, err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, token, issuedAt, expiresAt); err != nil {
		return "", fmt.Errorf("%w: creating session: %v", common.ErrorInternal, err)
	}

	return token, nil
}

// Logout revokes the session holding exactly this token. The token itself is
// not verified, so stale or expired tokens can still be revoked.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorSessionNotFound
	}

	n, err := s.repomanager.Sessions(s.db).DeleteByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: deleting session: %v", common.ErrorInternal, err)
	}
	if n == 0 {
		return common.ErrorSessionNotFound
	}

	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repomanager.Users(s.db).GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: loading profile: %v", common.ErrorInternal, err)
	}
	return p, nil
}

// Authenticate admits the value of an Authorization header. A missing header
// is ErrorUnauthenticated; a malformed, unverifiable, expired or revoked
// token is ErrorForbidden.
func (s *UserService) Authenticate(ctx context.Context, authorization string) (*auth.Identity, error) {
	if authorization == "" {
		return nil, common.ErrorUnauthenticated
	}

	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return nil, fmt.Errorf("%w: malformed authorization header", common.ErrorForbidden)
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorForbidden, err)
	}

	live, err := s.repomanager.Sessions(s.db).Exists(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: checking session: %v", common.ErrorInternal, err)
	}
	if !live {
		return nil, fmt.Errorf("%w: session revoked", common.ErrorForbidden)
	}

	return &claims.Identity, nil
}
