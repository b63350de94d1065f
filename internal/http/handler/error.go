package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/ai"
	"accidentapi/internal/http/middleware"
	"accidentapi/internal/logger"
	"accidentapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type mappedError struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors translates service sentinels into HTTP responses. Order matters
// only where one sentinel wraps another.
var serviceErrors = []mappedError{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "ticket not found"},
	{service.ErrAttachmentNotFound, fiber.StatusNotFound, "NOT_FOUND", "attachment not found"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrInvalidStatus, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status"},
	{service.ErrInvalidPhase, fiber.StatusBadRequest, "INVALID_PHASE", "invalid phase"},
	{service.ErrUploadNotAllowed, fiber.StatusConflict, "UPLOAD_NOT_ALLOWED", "uploads are not allowed in the current phase"},
	{service.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "unsupported file type"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large"},
	{service.ErrEmptyFile, fiber.StatusBadRequest, "FILE_EMPTY", "file is empty"},
	{service.ErrMessageRequired, fiber.StatusBadRequest, "VALIDATION_ERROR", "message is required"},
	{service.ErrTextRequired, fiber.StatusBadRequest, "VALIDATION_ERROR", "text is required"},
	{service.ErrTextTooLong, fiber.StatusBadRequest, "VALIDATION_ERROR", "text too long"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password"},
	{service.ErrInvalidToken, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrUserExists, fiber.StatusConflict, "CONFLICT", "user already exists"},
	{service.ErrInvalidRole, fiber.StatusBadRequest, "INVALID_ROLE", "invalid role"},
	{service.ErrInvalidUser, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid username or password"},
}

func lookupServiceError(err error) (mappedError, bool) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return mappedError{}, false
}

// writeServiceError maps a service error to the envelope. Unknown errors are
// logged and reported as 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	if m, ok := lookupServiceError(err); ok {
		return writeError(c, m.status, m.code, m.message)
	}
	logger.WithComponent("http").Error("request_failed",
		"request_id", middleware.RequestIDFromCtx(c),
		"path", c.Path(),
		"error", err,
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// writeUpstreamError is writeServiceError for endpoints that call the AI provider,
// where unknown failures are reported as a bad gateway.
func writeUpstreamError(c *fiber.Ctx, err error) error {
	if m, ok := lookupServiceError(err); ok {
		return writeError(c, m.status, m.code, m.message)
	}
	logger.WithComponent("http").Error("upstream_failed",
		"request_id", middleware.RequestIDFromCtx(c),
		"path", c.Path(),
		"error", err,
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "ai provider timed out")
	case errors.Is(err, ai.ErrEmptyResponse):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "ai provider returned no answer")
	default:
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "ai provider unavailable")
	}
}

func unauthorized(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func forbidden(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "insufficient permissions")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		case fiber.StatusUnsupportedMediaType:
			return writeError(c, status, "UNSUPPORTED_MEDIA_TYPE", "unsupported media type")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
