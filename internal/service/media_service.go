package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/storage"
	"github.com/rs/zerolog"
)

// Sentinel errors for media uploads.
var (
	ErrFileRequired = errors.New("file required")
	ErrFileTooLarge = errors.New("file too large")
)

// Upload kinds reported back to clients.
const (
	UploadKindImage = "image"
	UploadKindRaw   = "raw"
)

// UploadResult is the opaque file reference returned after an upload.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
}

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	safeExt         = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

// MediaService handles file upload operations.
type MediaService struct {
	cfg   *config.Config
	store storage.BlobStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, store storage.BlobStore, log zerolog.Logger) *MediaService {
	return &MediaService{
		cfg:   cfg,
		store: store,
		log:   log.With().Str("component", "media_service").Logger(),
		now:   time.Now,
	}
}

// SaveUpload stores an uploaded file and returns its URL.
func (s *MediaService) SaveUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if file == nil || header == nil {
		return nil, ErrFileRequired
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	contentType := header.Header.Get("Content-Type")
	kind := UploadKindRaw
	if strings.HasPrefix(contentType, "image/") {
		kind = UploadKindImage
	}

	key := s.objectName(header.Filename)
	url, err := s.store.Put(ctx, key, file, header.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	s.log.Info().Str("key", key).Str("kind", kind).Int64("size", header.Size).Msg("File uploaded")
	return &UploadResult{URL: url, Filename: key, Kind: kind}, nil
}

// objectName builds "<unix-ms>-<base>-<rand><.ext>" from a client file name.
func (s *MediaService) objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "file"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	return fmt.Sprintf("%d-%s-%s%s", s.now().UnixMilli(), base, uuid.New().String()[:8], ext)
}
