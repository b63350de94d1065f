package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"accidentapi/internal/config"
)

const ocrPrompt = "Transcribe every piece of text visible in this image exactly as written. " +
	"Keep the original line breaks. Reply with the text only."

// OpenAI talks to any OpenAI-compatible endpoint. It implements ChatModel,
// Speaker, Transcriber and TextReader.
type OpenAI struct {
	cli *openai.Client
	cfg config.AIConfig
}

var (
	_ ChatModel   = (*OpenAI)(nil)
	_ Speaker     = (*OpenAI)(nil)
	_ Transcriber = (*OpenAI)(nil)
	_ TextReader  = (*OpenAI)(nil)
)

// NewOpenAI builds a client whose HTTP calls are traced with otelhttp.
func NewOpenAI(cfg config.AIConfig) *OpenAI {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	cc.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
	return &OpenAI{cli: openai.NewClientWithConfig(cc), cfg: cfg}
}

func (o *OpenAI) Complete(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := o.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.ChatModel,
		Messages:    msgs,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: float32(o.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAI) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = o.cfg.TTSVoice
	}
	resp, err := o.cli.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.TTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyResponse
	}
	return audio, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := o.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.STTModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ReadText sends the image inline as a data URL to the vision model.
func (o *OpenAI) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := o.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailHigh,
				}},
			},
		}},
		MaxTokens: o.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
