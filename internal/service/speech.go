package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"accidentapi/internal/ai"
)

const (
	maxSpeechChars  = 4096
	maxAudioBytes   = 25 << 20
	speechAudioMIME = "audio/mpeg"
)

// Audio is synthesized speech ready to stream to a client.
type Audio struct {
	Data        []byte
	ContentType string
}

// SpeechService proxies text-to-speech and speech-to-text.
type SpeechService interface {
	Synthesize(ctx context.Context, text, voice string) (*Audio, error)
	Transcribe(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error)
}

type speechService struct {
	speaker     ai.Speaker
	transcriber ai.Transcriber
	policy      UploadPolicy
}

func NewSpeechService(speaker ai.Speaker, transcriber ai.Transcriber) SpeechService {
	return &speechService{
		speaker:     speaker,
		transcriber: transcriber,
		policy: UploadPolicy{
			MaxBytes: maxAudioBytes,
			Allowed:  []string{"audio/*", "video/webm", "video/mp4"},
		},
	}
}

func (s *speechService) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}
	if utf8.RuneCountInString(text) > maxSpeechChars {
		return nil, ErrTextTooLong
	}
	data, err := s.speaker.Speak(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("text to speech: %w", err)
	}
	return &Audio{Data: data, ContentType: speechAudioMIME}, nil
}

func (s *speechService) Transcribe(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	if r == nil {
		return "", ErrReaderNil
	}
	if err := s.policy.Check(contentType, size); err != nil {
		return "", err
	}
	if filename == "" {
		filename = "audio.webm"
	}
	text, err := s.transcriber.Transcribe(ctx, filename, r)
	if err != nil {
		return "", fmt.Errorf("speech to text: %w", err)
	}
	return text, nil
}
