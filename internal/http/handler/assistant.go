package handler

import (
	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/service"
)

type chatRequest struct {
	TicketID string `json:"ticket_id" validate:"omitempty,uuid"`
	Message  string `json:"message" validate:"required,max=4000"`
}

type ttsRequest struct {
	Text  string `json:"text" validate:"required,max=4096"`
	Voice string `json:"voice" validate:"omitempty,alpha,max=32"`
}

// Chat godoc
// @Summary  Send one message of the reporting conversation
// @Tags     assistant
// @Accept   json
// @Produce  json
// @Success  200 {object} service.ChatResult
// @Router   /api/chat [post]
func Chat(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		res, err := svc.Send(c.UserContext(), req.TicketID, req.Message)
		if err != nil {
			return writeUpstreamError(c, err)
		}
		return c.JSON(res)
	}
}

// TextToSpeech godoc
// @Summary  Synthesize speech
// @Tags     assistant
// @Accept   json
// @Produce  audio/mpeg
// @Router   /api/tts [post]
func TextToSpeech(svc service.SpeechService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ttsRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		audio, err := svc.Synthesize(c.UserContext(), req.Text, req.Voice)
		if err != nil {
			return writeUpstreamError(c, err)
		}
		c.Set(fiber.HeaderContentType, audio.ContentType)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).Send(audio.Data)
	}
}

// SpeechToText godoc
// @Summary  Transcribe a recording (multipart field "audio")
// @Tags     assistant
// @Accept   mpfd
// @Produce  json
// @Param    audio formData file true "recording"
// @Router   /api/stt [post]
func SpeechToText(svc service.SpeechService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("audio")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "audio is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		text, err := svc.Transcribe(c.UserContext(), f, fh.Filename, formContentType(fh.Header.Get(fiber.HeaderContentType)), fh.Size)
		if err != nil {
			return writeUpstreamError(c, err)
		}
		return c.JSON(fiber.Map{"text": text})
	}
}

// OCR godoc
// @Summary  Read text from a photo (multipart field "image")
// @Tags     assistant
// @Accept   mpfd
// @Produce  json
// @Param    image formData file true "photo of a document or plate"
// @Success  200 {object} service.OCRResult
// @Router   /api/ocr [post]
func OCR(svc service.OCRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("image")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "image is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Recognize(c.UserContext(), f, formContentType(fh.Header.Get(fiber.HeaderContentType)), fh.Size)
		if err != nil {
			return writeUpstreamError(c, err)
		}
		return c.JSON(res)
	}
}

// Upload godoc
// @Summary  Store a file that is not yet tied to a ticket (multipart field "file")
// @Tags     assistant
// @Accept   mpfd
// @Produce  json
// @Param    file formData file true "file"
// @Success  201 {object} service.StoredFile
// @Router   /api/upload [post]
func Upload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Store(c.UserContext(), f, fh.Filename, formContentType(fh.Header.Get(fiber.HeaderContentType)), fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
