package mocks

import (
	"context"
	"io"

	"accidentapi/internal/model"
	"accidentapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockChatService struct {
	mock.Mock
}

var _ service.ChatService = (*MockChatService)(nil)

func (m *MockChatService) Send(ctx context.Context, ticketID, message string) (*service.ChatResult, error) {
	args := m.Called(ctx, ticketID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatResult), args.Error(1)
}

type MockSpeechService struct {
	mock.Mock
}

var _ service.SpeechService = (*MockSpeechService)(nil)

func (m *MockSpeechService) Synthesize(ctx context.Context, text, voice string) (*service.Audio, error) {
	args := m.Called(ctx, text, voice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Audio), args.Error(1)
}

func (m *MockSpeechService) Transcribe(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	args := m.Called(ctx, r, filename, contentType, size)
	return args.String(0), args.Error(1)
}

type MockOCRService struct {
	mock.Mock
}

var _ service.OCRService = (*MockOCRService)(nil)

func (m *MockOCRService) Recognize(ctx context.Context, r io.Reader, contentType string, size int64) (*service.OCRResult, error) {
	args := m.Called(ctx, r, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OCRResult), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
}

var _ service.UploadService = (*MockUploadService)(nil)

func (m *MockUploadService) Store(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*service.StoredFile, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFile), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Verify(token string) (*service.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, username, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	args := m.Called(ctx, username, password)
	return args.Bool(0), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

var _ service.ReportService = (*MockReportService)(nil)

func (m *MockReportService) Markdown(ctx context.Context, ticketID string) (string, error) {
	args := m.Called(ctx, ticketID)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) HTML(ctx context.Context, ticketID string) (string, error) {
	args := m.Called(ctx, ticketID)
	return args.String(0), args.Error(1)
}
