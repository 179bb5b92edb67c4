package videos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos (owner_id, storage_key, content_type, file_name, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	owner := sql.NullString{String: v.OwnerID, Valid: v.OwnerID != ""}

	err := r.db.QueryRowContext(ctx, query, owner, v.StorageKey, v.ContentType, v.FileName, v.SizeBytes).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}
