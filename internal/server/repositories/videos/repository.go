// Package videos declares the repository for uploaded video metadata.
package videos

import (
	"context"

	"github.com/dmitrijs2005/firewatch/internal/server/models"
)

type Repository interface {
	// Create inserts v and fills in its ID and CreatedAt.
	Create(ctx context.Context, v *models.Video) (*models.Video, error)
}
