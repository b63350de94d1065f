package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"accidentapi/internal/http/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the request body into dst and validates it. On failure it
// writes the error response and returns ok=false.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request")
		}
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:], Rule: fe.Tag()})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(errorPayload{
			RequestID: middleware.RequestIDFromCtx(c),
			Error: errorEnvelope{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  fields,
			},
		})
	}
	return true, nil
}

// ticketID reads and validates the :id path parameter.
func ticketID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
