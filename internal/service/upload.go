package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"accidentapi/internal/storage"
)

// UploadPolicy limits what files clients may store.
type UploadPolicy struct {
	MaxBytes int64
	// Allowed holds MIME types; "image/*" style wildcards match a whole family.
	Allowed []string
}

// Check validates the declared content type and size of an upload.
func (p UploadPolicy) Check(contentType string, size int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return ErrFileTooLarge
	}
	if !p.allows(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return nil
}

func (p UploadPolicy) allows(contentType string) bool {
	if len(p.Allowed) == 0 {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, a := range p.Allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == mt {
			return true
		}
		if strings.HasSuffix(a, "/*") && strings.HasPrefix(mt, strings.TrimSuffix(a, "*")) {
			return true
		}
	}
	return false
}

// StoredFile describes a file saved outside any ticket.
type StoredFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// UploadService stores loose files, such as evidence picked before a ticket exists.
type UploadService interface {
	Store(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*StoredFile, error)
}

type uploadService struct {
	store  storage.Storage
	policy UploadPolicy
}

func NewUploadService(store storage.Storage, policy UploadPolicy) UploadService {
	return &uploadService{store: store, policy: policy}
}

func (s *uploadService) Store(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*StoredFile, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := s.policy.Check(contentType, size); err != nil {
		return nil, err
	}

	key := objectKey("uploads", originalFilename)
	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{storage.MetaOriginalFilename: originalFilename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	url, err := s.store.URL(ctx, info.Key)
	if err != nil {
		return nil, fmt.Errorf("resolve url: %w", err)
	}
	return &StoredFile{
		Filename: path.Base(info.Key),
		URL:      url,
		Type:     contentType,
		Size:     info.Size,
	}, nil
}

// objectKey builds prefix/<uuid><ext>, keeping only the original extension.
func objectKey(prefix, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return path.Join(prefix, uuid.New().String()+ext)
}
