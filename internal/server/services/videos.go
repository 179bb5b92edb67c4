package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/dbx"
	"github.com/dmitrijs2005/firewatch/internal/server/config"
	"github.com/dmitrijs2005/firewatch/internal/server/models"
	"github.com/dmitrijs2005/firewatch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/firewatch/internal/server/storage"
)

// VideoUpload is one file taken from a multipart request.
type VideoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type VideoService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         storage.BlobStore
	maxUploadSize int64
	storageKey    func() string
}

func NewVideoService(db *sql.DB, m repomanager.RepositoryManager, store storage.BlobStore, cfg *config.Config) *VideoService {
	return &VideoService{
		db:            db,
		repomanager:   m,
		store:         store,
		maxUploadSize: cfg.MaxUploadSize,
		storageKey:    storage.GetRandomStorageKey,
	}
}

func isVideo(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "video/") && len(mediaType) > len("video/")
}

// Upload records the video and stores its bytes. The row is inserted first
// and rolled back if the object store rejects the body. ownerID may be empty.
func (s *VideoService) Upload(ctx context.Context, ownerID string, up VideoUpload) (*models.Video, error) {
	if up.Body == nil || up.Size <= 0 {
		return nil, common.NewValidationError("Video file is required")
	}
	if !isVideo(up.ContentType) {
		return nil, common.NewValidationError("Only video files are accepted")
	}
	if s.maxUploadSize > 0 && up.Size > s.maxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", common.ErrorTooLarge, up.Size, s.maxUploadSize)
	}

	mediaType, _, _ := mime.ParseMediaType(up.ContentType)

	var video *models.Video

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		v, err := s.repomanager.Videos(tx).Create(ctx, &models.Video{
			OwnerID:     ownerID,
			StorageKey:  s.storageKey(),
			ContentType: mediaType,
			FileName:    up.FileName,
			SizeBytes:   up.Size,
		})
		if err != nil {
			return err
		}

		if err := s.store.Put(ctx, v.StorageKey, v.ContentType, up.Body, up.Size); err != nil {
			return err
		}

		video = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: uploading video: %v", common.ErrorInternal, err)
	}

	return video, nil
}
