package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/kalindhi/kalindhi-api/internal/models"
)

// allowedImageTypes maps accepted MIME types to stored extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// ObjectPutter stores an object and returns its public URL
type ObjectPutter interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// UploadResult describes a stored image
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadService validates and stores images for the admin dashboard
type UploadService struct {
	store   ObjectPutter
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
}

func NewUploadService(store ObjectPutter, maxSize int64, logger *slog.Logger) *UploadService {
	return &UploadService{store: store, maxSize: maxSize, logger: logger, now: time.Now}
}

// Upload reads at most maxSize bytes from r, checks the sniffed content type
// and stores the image under a dated random key.
func (s *UploadService) Upload(ctx context.Context, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, models.NewValidationError("Image file is empty")
	}
	if int64(len(data)) > s.maxSize {
		return nil, models.NewValidationError(fmt.Sprintf("Image must be at most %d MB", s.maxSize>>20))
	}

	mime := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mime.String()]
	if !ok {
		return nil, models.NewValidationError("Unsupported image type")
	}

	key := path.Join("images", s.now().UTC().Format("2006/01/02"), uuid.New().String()+ext)

	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mime.String())
	if err != nil {
		s.logger.Error("failed to store image", slog.String("key", key), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &UploadResult{URL: url, Key: key}, nil
}
