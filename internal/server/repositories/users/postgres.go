package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/jackc/pgerrcode"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create relies on the users_email_key constraint for uniqueness; there is
// no read-before-write.
func (r *PostgresRepository) Create(ctx context.Context, name, email, passwordHash string) (string, error) {
	query :=
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query, name, email, passwordHash).Scan(&id)
	if err != nil {
		if dbx.PgErrorCode(err) == pgerrcode.UniqueViolation {
			return "", common.ErrorDuplicateEmail
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE email = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, name, email, created_at FROM users
		 WHERE id = $1`

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.CreatedAt)
	if err != nil {
		// a malformed uuid cannot name an existing user
		if errors.Is(err, sql.ErrNoRows) || dbx.PgErrorCode(err) == pgerrcode.InvalidTextRepresentation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}
