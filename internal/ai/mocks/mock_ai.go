package mocks

import (
	"context"
	"io"

	"accidentapi/internal/ai"

	"github.com/stretchr/testify/mock"
)

type MockChatModel struct {
	mock.Mock
}

var _ ai.ChatModel = (*MockChatModel)(nil)

func (m *MockChatModel) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type MockSpeaker struct {
	mock.Mock
}

var _ ai.Speaker = (*MockSpeaker)(nil)

func (m *MockSpeaker) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	args := m.Called(ctx, text, voice)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

var _ ai.Transcriber = (*MockTranscriber)(nil)

func (m *MockTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	args := m.Called(ctx, filename, audio)
	return args.String(0), args.Error(1)
}

type MockTextReader struct {
	mock.Mock
}

var _ ai.TextReader = (*MockTextReader)(nil)

func (m *MockTextReader) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}
