package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	aiMocks "accidentapi/internal/ai/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOCRService_Recognize(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts fields", func(t *testing.T) {
		m := new(aiMocks.MockTextReader)
		img := []byte{0xff, 0xd8, 0xff}
		m.On("ReadText", ctx, img, "image/jpeg").Return("Plate AB-123-CD\nDate 2024-03-15 17:45", nil)

		res, err := NewOCRService(m).Recognize(ctx, bytes.NewReader(img), "image/jpeg", int64(len(img)))

		require.NoError(t, err)
		assert.Equal(t, []string{"AB-123-CD"}, res.Fields.Plates)
		assert.Equal(t, []string{"2024-03-15"}, res.Fields.Dates)
		assert.Equal(t, []string{"17:45"}, res.Fields.Times)
		m.AssertExpectations(t)
	})

	t.Run("rejects pdf", func(t *testing.T) {
		_, err := NewOCRService(nil).Recognize(ctx, bytes.NewReader([]byte("x")), "application/pdf", 1)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("declared size lies", func(t *testing.T) {
		m := new(aiMocks.MockTextReader)
		big := bytes.Repeat([]byte{1}, maxImageBytes+10)
		_, err := NewOCRService(m).Recognize(ctx, bytes.NewReader(big), "image/png", 10)
		assert.ErrorIs(t, err, ErrFileTooLarge)
		m.AssertNotCalled(t, "ReadText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vendor error", func(t *testing.T) {
		m := new(aiMocks.MockTextReader)
		m.On("ReadText", ctx, mock.Anything, "image/png").Return("", errors.New("unavailable"))
		_, err := NewOCRService(m).Recognize(ctx, bytes.NewReader([]byte("png")), "image/png", 3)
		assert.ErrorContains(t, err, "ocr: unavailable")
	})
}
