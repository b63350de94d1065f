// Package ai defines the vendor-neutral AI capabilities the backend proxies:
// chat completion, speech synthesis, transcription and OCR.
package ai

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyResponse is returned when the vendor answers without usable content.
var ErrEmptyResponse = errors.New("empty response from ai provider")

// Chat roles understood by ChatModel.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn sent to a ChatModel.
type Message struct {
	Role    string
	Content string
}

// ChatModel produces the next assistant turn for a conversation.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Speaker converts text into encoded audio.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

// Transcriber converts an audio stream into text. filename carries the
// original extension, which some providers use to detect the codec.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// TextReader extracts raw text from an image.
type TextReader interface {
	ReadText(ctx context.Context, image []byte, mimeType string) (string, error)
}
