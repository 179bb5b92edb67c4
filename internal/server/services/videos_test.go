package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	puts map[string][]byte
	err  error
}

func (f *fakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = b
	return nil
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newVideoService(t *testing.T, db *sql.DB, store *fakeBlobStore) (*VideoService, *fakeVideosRepo) {
	t.Helper()
	vr := &fakeVideosRepo{}
	s := NewVideoService(db, &fakeRepoManager{v: vr}, store, &config.Config{MaxUploadSize: 1 << 10})
	s.storageKey = func() string { return "videos/2026/1/1/key" }
	return s, vr
}

func upload(body string, contentType string) VideoUpload {
	return VideoUpload{
		FileName:    "clip.webm",
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewBufferString(body),
	}
}

func TestUpload_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := &fakeBlobStore{}
	s, vr := newVideoService(t, db, store)

	v, err := s.Upload(context.Background(), "u-1", upload("frames", "video/webm; codecs=vp9"))
	require.NoError(t, err)

	assert.Equal(t, "u-1", v.OwnerID)
	assert.Equal(t, "video/webm", v.ContentType)
	assert.Equal(t, "clip.webm", v.FileName)
	assert.Equal(t, int64(6), v.SizeBytes)
	assert.Len(t, vr.created, 1)
	assert.Equal(t, []byte("frames"), store.puts["videos/2026/1/1/key"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_Anonymous(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s, _ := newVideoService(t, db, &fakeBlobStore{})

	v, err := s.Upload(context.Background(), "", upload("x", "video/mp4"))
	require.NoError(t, err)
	assert.Empty(t, v.OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_StoreFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s, _ := newVideoService(t, db, &fakeBlobStore{err: errBoom{}})

	_, err := s.Upload(context.Background(), "u-1", upload("frames", "video/mp4"))
	require.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_RowFailureSkipsStore(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	store := &fakeBlobStore{}
	s, vr := newVideoService(t, db, store)
	vr.err = errBoom{}

	_, err := s.Upload(context.Background(), "u-1", upload("frames", "video/mp4"))
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, store.puts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_Validation(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s, _ := newVideoService(t, db, &fakeBlobStore{})

	tests := []struct {
		name    string
		up      VideoUpload
		wantErr error
	}{
		{"no body", VideoUpload{ContentType: "video/mp4"}, common.ErrorValidation},
		{"empty file", upload("", "video/mp4"), common.ErrorValidation},
		{"not a video", upload("abc", "image/png"), common.ErrorValidation},
		{"bare video type", upload("abc", "video/"), common.ErrorValidation},
		{"bad content type", upload("abc", ";;"), common.ErrorValidation},
		{"too large", upload(string(make([]byte, 2<<10)), "video/mp4"), common.ErrorTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Upload(context.Background(), "", tt.up)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.NoError(t, mock.ExpectationsWereMet(), "no transaction on invalid input")
}
