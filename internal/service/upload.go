package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"tam_website/internal/storage"

	"github.com/google/uuid"
)

const MaxImageSize = 5 * 1024 * 1024 // 5MB

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// uploadImage validates file and stores it under prefix/<uuid><ext>.
func uploadImage(ctx context.Context, store storage.Storage, prefix string, file *multipart.FileHeader) (storage.ObjectInfo, error) {
	if file.Size > MaxImageSize {
		return storage.ObjectInfo{}, ErrFileSizeExceeded
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return storage.ObjectInfo{}, ErrInvalidFileFormat
	}

	src, err := file.Open()
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := prefix + "/" + uuid.NewString() + ext
	info, err := store.Put(ctx, key, src, storage.PutObjectOptions{Size: file.Size, ContentType: contentType})
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("failed to store image: %w", err)
	}
	if info.Key == "" {
		info.Key = key
	}
	if info.URL == "" {
		info.URL = store.URL(key)
	}
	return info, nil
}

// imageSwap tracks an upload replacing an existing image. Commit drops the old
// object once the row is saved, Rollback drops the new one when it is not.
type imageSwap struct {
	store  storage.Storage
	logger *slog.Logger
	oldKey *string
	newKey string
}

func (s *imageSwap) Commit(ctx context.Context) {
	if s == nil || s.oldKey == nil || *s.oldKey == "" || *s.oldKey == s.newKey {
		return
	}
	if err := s.store.Delete(ctx, *s.oldKey); err != nil {
		s.logger.Warn("failed to delete replaced image", slog.String("key", *s.oldKey), slog.String("error", err.Error()))
	}
}

func (s *imageSwap) Rollback(ctx context.Context) {
	if s == nil || s.newKey == "" {
		return
	}
	if err := s.store.Delete(ctx, s.newKey); err != nil {
		s.logger.Error("failed to roll back uploaded image", slog.String("key", s.newKey), slog.String("error", err.Error()))
	}
}

// swapImage uploads file and points key and url at it. A nil file changes nothing.
func swapImage(ctx context.Context, store storage.Storage, logger *slog.Logger, prefix string, file *multipart.FileHeader, key, url **string) (*imageSwap, error) {
	if file == nil {
		return nil, nil
	}
	info, err := uploadImage(ctx, store, prefix, file)
	if err != nil {
		return nil, err
	}
	swap := &imageSwap{store: store, logger: logger, oldKey: *key, newKey: info.Key}
	*key = &info.Key
	*url = &info.URL
	return swap, nil
}

func deleteImage(ctx context.Context, store storage.Storage, logger *slog.Logger, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := store.Delete(ctx, *key); err != nil {
		logger.Warn("failed to delete image", slog.String("key", *key), slog.String("error", err.Error()))
	}
}
