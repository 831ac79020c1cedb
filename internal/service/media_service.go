package service

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

// BlobStore is the binary upload backend.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// MediaConfig bounds accepted uploads.
type MediaConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// MediaUpload is the stored result of an upload.
type MediaUpload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

var (
	folderPattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
	keyPattern    = regexp.MustCompile(`^[a-z0-9_-]{1,32}/[A-Za-z0-9_-]+(\.[a-z0-9]+)?$`)
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MediaService stores admin image uploads in the blob store.
type MediaService struct {
	blobs   BlobStore
	config  MediaConfig
	allowed map[string]struct{}
	logger  *zap.Logger
}

// NewMediaService constructs the service.
func NewMediaService(blobs BlobStore, cfg MediaConfig, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mime := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(mime))] = struct{}{}
	}
	return &MediaService{blobs: blobs, config: cfg, allowed: allowed, logger: logger}
}

// Upload validates and stores an image under folder, returning its public URL.
// The content type is sniffed from the payload; the client's claim is ignored.
func (s *MediaService) Upload(ctx context.Context, actor *models.JWTClaims, folder, filename string, size int64, r io.Reader) (*MediaUpload, error) {
	if err := authorize(actor, models.CapMediaUpload); err != nil {
		return nil, err
	}
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = "uploads"
	}
	if !folderPattern.MatchString(folder) {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid upload folder"), map[string]string{"folder": "is not a valid folder name"})
	}
	if size <= 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "empty upload"), map[string]string{"file": "is required"})
	}
	if size > s.config.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds the upload limit")
	}

	buffered := bufio.NewReaderSize(r, 512)
	head, err := buffered.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	contentType := strings.SplitN(http.DetectContentType(head), ";", 2)[0]
	if _, ok := s.allowed[contentType]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "unsupported media type "+contentType)
	}

	ext := strings.ToLower(path.Ext(filename))
	if known, ok := mimeExtensions[contentType]; ok {
		ext = known
	}
	key := folder + "/" + uuid.NewString() + ext

	url, err := s.blobs.Upload(ctx, key, io.LimitReader(buffered, s.config.MaxFileSize), size, contentType)
	if err != nil {
		s.logger.Warn("media upload failed", zap.String("key", key), zap.Error(err))
		return nil, storeError(err, "upload", "media")
	}
	s.logger.Info("media uploaded", zap.String("key", key), zap.String("user_id", actorID(actor)), zap.Int64("size", size))
	return &MediaUpload{URL: url, Key: key, ContentType: contentType, Size: size}, nil
}

// Delete removes a previously uploaded object. Deleting a key that is already
// gone succeeds.
func (s *MediaService) Delete(ctx context.Context, actor *models.JWTClaims, key string) error {
	if err := authorize(actor, models.CapMediaUpload); err != nil {
		return err
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if !keyPattern.MatchString(key) {
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid media key"), map[string]string{"key": "is not a valid media key"})
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("media delete failed", zap.String("key", key), zap.Error(err))
		return storeError(err, "delete", "media")
	}
	s.logger.Info("media deleted", zap.String("key", key), zap.String("user_id", actorID(actor)))
	return nil
}
