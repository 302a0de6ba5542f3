package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/chatkit/chatauth/internal/storage"
	"github.com/chatkit/chatauth/internal/validation"
	"github.com/google/uuid"
)

type FileService struct {
	storage storage.Storage
}

func NewFileService(storage storage.Storage) *FileService {
	return &FileService{
		storage: storage,
	}
}

// UploadAvatar stores a validated image and returns its public URL.
func (s *FileService) UploadAvatar(ctx context.Context, img *validation.Image) (string, error) {
	filename := uuid.New().String() + img.Ext
	storagePath := path.Join("public", "avatars", filename)

	err := s.storage.Save(ctx, storagePath, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.storage.URL(storagePath), nil
}

// DeleteByURL removes an object previously returned by UploadAvatar. URLs pointing
// elsewhere (gravatar, old hosts) are ignored.
func (s *FileService) DeleteByURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	storagePath, ok := s.storage.PathFromURL(url)
	if !ok {
		return
	}

	// Best effort: a leftover object is harmless
	err := s.storage.Delete(ctx, storagePath)
	if err != nil {
		slog.Warn("failed to delete file from storage", "error", err, "path", storagePath)
	}
}
