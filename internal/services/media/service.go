package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrTooLarge        = errors.New("file too large")
)

const maxPhotoSize = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type UserStore interface {
	SetProfilePhoto(ctx context.Context, userID int64, url string) error
}

// Service stores profile photos in object storage and writes the resulting
// URL onto the user row.
type Service struct {
	storage ObjectStorage
	users   UserStore
	now     func() time.Time
}

func NewService(storage ObjectStorage, users UserStore) *Service {
	return &Service{
		storage: storage,
		users:   users,
		now:     time.Now,
	}
}

func (s *Service) UploadProfilePhoto(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64) (string, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return "", ErrValidation
	}
	if size > maxPhotoSize {
		return "", ErrTooLarge
	}
	if s.storage == nil || s.users == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return "", ErrUnsupportedType
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey := s.buildAvatarKey(userID, fileName, contentType)

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	url := s.storage.PublicURL(objectKey)
	if err := s.users.SetProfilePhoto(ctx, userID, url); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return "", fmt.Errorf("save profile photo url: %w", err)
	}

	return url, nil
}

func (s *Service) buildAvatarKey(userID int64, fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = allowedContentTypes[contentType]
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("avatars/%d/%s_%s%s", userID, stamp, uuid.NewString(), ext)
}
