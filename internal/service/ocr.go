package service

import (
	"context"
	"fmt"
	"io"

	"accidentapi/internal/ai"
)

const maxImageBytes = 10 << 20

// OCRResult holds the raw recognised text and the fields found in it.
type OCRResult struct {
	Text   string    `json:"text"`
	Fields ai.Fields `json:"fields"`
}

// OCRService reads documents such as licence plates, insurance cards and reports.
type OCRService interface {
	Recognize(ctx context.Context, r io.Reader, contentType string, size int64) (*OCRResult, error)
}

type ocrService struct {
	reader ai.TextReader
	policy UploadPolicy
}

func NewOCRService(reader ai.TextReader) OCRService {
	return &ocrService{
		reader: reader,
		policy: UploadPolicy{MaxBytes: maxImageBytes, Allowed: []string{"image/*"}},
	}
}

func (s *ocrService) Recognize(ctx context.Context, r io.Reader, contentType string, size int64) (*OCRResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := s.policy.Check(contentType, size); err != nil {
		return nil, err
	}
	img, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) > maxImageBytes {
		return nil, ErrFileTooLarge
	}
	if len(img) == 0 {
		return nil, ErrEmptyFile
	}

	text, err := s.reader.ReadText(ctx, img, contentType)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	return &OCRResult{Text: text, Fields: ai.ExtractFields(text)}, nil
}
