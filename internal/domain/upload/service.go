package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadintake/internal/domain/lead"
)

const DefaultMaxFileSize = 10 * 1024 * 1024 // 10 MB

// AllowedMimeTypes defines which file types are accepted
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Service validates lead documents and forwards them to document storage.
type Service struct {
	storage Storage
	maxSize int64
	log     *zap.Logger
}

func NewService(storage Storage, maxSize int64, log *zap.Logger) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{storage: storage, maxSize: maxSize, log: log}
}

// NewCorrelationID returns the temporary entity id uploads are filed under
// before the lead they belong to has been created.
func NewCorrelationID() string {
	return "temp-" + uuid.New().String()
}

// Forward checks the file and sends it to storage against target.
// The returned document is ready to be attached to a draft.
func (s *Service) Forward(ctx context.Context, target Target, fileHeader *multipart.FileHeader) (*lead.Document, error) {
	if strings.TrimSpace(target.DocumentType) == "" {
		return nil, ErrMissingDocumentType
	}
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := http.DetectContentType(buf[:n])
	mimeType = strings.Split(mimeType, ";")[0]

	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	if target.EntityType == "" {
		target.EntityType = EntityTypeLead
	}
	f := File{
		Name:     storedName(fileHeader.Filename, mimeType),
		MimeType: mimeType,
		Size:     fileHeader.Size,
		Content:  file,
	}

	stored, err := s.storage.Store(ctx, target, f)
	if err != nil {
		s.log.Warn("document upload failed",
			zap.String("entity_id", target.EntityID),
			zap.String("document_type", target.DocumentType),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if stored == nil || stored.Location() == "" {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, ErrNoLocation)
	}

	doc := stored.ToDocument(target.DocumentType, f)
	s.log.Debug("document uploaded",
		zap.String("entity_id", target.EntityID),
		zap.String("document_type", doc.DocumentType),
		zap.Int64("size", doc.FileSize),
	)
	return &doc, nil
}

// IsClientError reports whether err was caused by the file itself rather than storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidMimeType) ||
		errors.Is(err, ErrMissingDocumentType)
}

func storedName(original, mimeType string) string {
	ext := filepath.Ext(original)
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	return sanitizeName(original) + strings.ToLower(ext)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
