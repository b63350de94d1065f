package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"accidentapi/internal/storage"
	storeMocks "accidentapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadPolicy_Check(t *testing.T) {
	p := UploadPolicy{MaxBytes: 10, Allowed: []string{"image/*", "application/pdf"}}

	assert.NoError(t, p.Check("image/png", 10))
	assert.NoError(t, p.Check("application/pdf; charset=binary", 1))
	assert.NoError(t, p.Check("IMAGE/JPEG", -1))
	assert.ErrorIs(t, p.Check("image/png", 11), ErrFileTooLarge)
	assert.ErrorIs(t, p.Check("image/png", 0), ErrEmptyFile)
	assert.ErrorIs(t, p.Check("text/html", 1), ErrUnsupportedType)
	assert.ErrorIs(t, p.Check("", 1), ErrUnsupportedType)

	assert.NoError(t, UploadPolicy{}.Check("text/plain", 1<<40))
}

func TestUploadService_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := storeMocks.NewMockStorage(t)
		r := strings.NewReader("pdf!")
		mStore.On("Put", ctx, mock.Anything, r, mock.Anything).Return(storage.ObjectInfo{Key: "uploads/abc.pdf", Size: 4}, nil)
		mStore.On("URL", ctx, "uploads/abc.pdf").Return("/uploads/uploads/abc.pdf", nil)

		f, err := NewUploadService(mStore, testPolicy).Store(ctx, r, "police-report.PDF", "application/pdf", 4)

		require.NoError(t, err)
		assert.Equal(t, "abc.pdf", f.Filename)
		assert.Equal(t, "/uploads/uploads/abc.pdf", f.URL)
		assert.Equal(t, int64(4), f.Size)
		key := mStore.Calls[0].Arguments.String(1)
		assert.True(t, strings.HasPrefix(key, "uploads/") && strings.HasSuffix(key, ".pdf"), key)
	})

	t.Run("rejected type never reaches storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		_, err := NewUploadService(mStore, testPolicy).Store(ctx, strings.NewReader("x"), "a.exe", "application/x-msdownload", 1)
		assert.ErrorIs(t, err, ErrUnsupportedType)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("disk full"))
		_, err := NewUploadService(mStore, testPolicy).Store(ctx, strings.NewReader("x"), "a.png", "image/png", 1)
		assert.ErrorContains(t, err, "upload to storage: disk full")
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := NewUploadService(nil, testPolicy).Store(ctx, nil, "a.png", "image/png", 1)
		assert.ErrorIs(t, err, ErrReaderNil)
	})
}

func TestObjectKey(t *testing.T) {
	k := objectKey("tickets/t1", "../../Photo.JPEG")
	assert.True(t, strings.HasPrefix(k, "tickets/t1/"))
	assert.True(t, strings.HasSuffix(k, ".jpeg"))
	assert.NotContains(t, k, "..")
}
