package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"accidentapi/internal/http/middleware"
	"accidentapi/internal/model"
	"accidentapi/internal/service"
	serviceMocks "accidentapi/internal/service/mocks"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, target, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateTicket(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Post("/tickets", CreateTicket(mockSvc))

	t.Run("empty body", func(t *testing.T) {
		created := &model.Ticket{ID: uuid.NewString(), Status: model.StatusOpen, Phase: "greeting"}
		mockSvc.On("Create", mock.Anything, map[string]any(nil)).Return(created, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/tickets", nil))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Ticket
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, created.ID, got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("with extracted data", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, map[string]any{"location": "A1"}).
			Return(&model.Ticket{ID: uuid.NewString()}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/tickets", fiber.Map{"extracted_data": fiber.Map{"location": "A1"}}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader("{"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestListTickets(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Get("/tickets", ListTickets(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.TicketListResult{
			Items: []model.Ticket{{ID: uuid.NewString(), Status: model.StatusOpen}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, model.TicketStatus(""), 10, 0).Return(expected, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result struct {
			Data  []model.Ticket `json:"data"`
			Total int            `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Data, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("status filter", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, model.StatusClosed, 5, 10).
			Return(&service.TicketListResult{Items: []model.Ticket{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?status=closed&limit=5&offset=10", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?offset=x", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, model.TicketStatus("lost"), 10, 0).Return(nil, service.ErrInvalidStatus).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?status=lost", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, model.TicketStatus(""), 10, 0).Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "service error")
		mockSvc.AssertExpectations(t)
	})
}

func TestGetTicket(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Get("/tickets/:id", GetTicket(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Ticket{ID: id}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.Ticket
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, id, got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateTicket(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			c.Locals(middleware.UserLocalKey, &service.Claims{Username: "ana", Role: model.RoleAgent})
		}
		return c.Next()
	})
	app.Patch("/tickets/:id", UpdateTicket(mockSvc))

	t.Run("status and phase", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(u service.TicketUpdate) bool {
			return u.Status != nil && *u.Status == model.StatusInReview &&
				u.Phase != nil && *u.Phase == "review" &&
				u.Transcript == nil
		})).Return(&model.Ticket{ID: id, Status: model.StatusInReview}, nil).Once()

		resp, _ := app.Test(withToken(jsonRequest(http.MethodPatch, "/tickets/"+id, fiber.Map{"status": "in_review", "phase": "review"}), "agent-token"))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("status and phase need staff", func(t *testing.T) {
		calls := len(mockSvc.Calls)
		for _, body := range []fiber.Map{{"phase": "evidence"}, {"status": "closed"}} {
			resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tickets/"+uuid.NewString(), body))

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
		}
		assert.Len(t, mockSvc.Calls, calls)
	})

	t.Run("transcript", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(u service.TicketUpdate) bool {
			return len(u.Transcript) == 1 && u.Transcript[0].Role == model.RoleUser && u.Status == nil
		})).Return(&model.Ticket{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tickets/"+id, fiber.Map{
			"transcript": []fiber.Map{{"role": "user", "content": "hit a pole"}},
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tickets/"+uuid.NewString(), fiber.Map{"status": "bogus"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "status", body.Error.Fields[0].Field)
		assert.Equal(t, "oneof", body.Error.Fields[0].Rule)
	})

	t.Run("invalid transcript role", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/tickets/"+uuid.NewString(), fiber.Map{
			"transcript": []fiber.Map{{"role": "system", "content": "x"}},
		}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "transcript[0].role", body.Error.Fields[0].Field)
	})
}

func TestDeleteTicket(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Delete("/tickets/:id", DeleteTicket(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/tickets/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/tickets/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/tickets/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Post("/tickets/:id/attachments", UploadAttachment(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		att := &model.Attachment{ID: uuid.NewString(), TicketID: id, Filename: "dent.jpg", Type: "image/jpeg"}
		mockSvc.On("UploadAttachment", mock.Anything, mock.MatchedBy(func(in service.AttachmentUpload) bool {
			return in.TicketID == id && in.Filename == "dent.jpg" &&
				in.ContentType == "image/jpeg" && in.Size == 4 && !in.Override
		})).Return(att, nil).Once()

		resp, _ := app.Test(multipartRequest(t, "/tickets/"+id+"/attachments", "file", "dent.jpg", "image/jpeg", []byte("jpeg")))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Attachment
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, att.ID, got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/tickets/"+uuid.NewString()+"/attachments", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"phase gate", service.ErrUploadNotAllowed, http.StatusConflict, "UPLOAD_NOT_ALLOWED"},
		{"too large", service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"bad type", service.ErrUnsupportedType, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"storage failure", errors.New("db save failed: boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc.On("UploadAttachment", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			resp, _ := app.Test(multipartRequest(t, "/tickets/"+uuid.NewString()+"/attachments", "file", "a.bin", "application/zip", []byte("zz")))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Error.Code)
		})
	}
}

func TestDeleteAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockTicketService)
	app := fiber.New()
	app.Delete("/tickets/:id/attachments/:aid", DeleteAttachment(mockSvc))

	id := uuid.NewString()
	mockSvc.On("DeleteAttachment", mock.Anything, id, "a1").Return(nil).Once()
	mockSvc.On("DeleteAttachment", mock.Anything, id, "a2").Return(service.ErrAttachmentNotFound).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/tickets/"+id+"/attachments/a1", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/tickets/"+id+"/attachments/a2", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "attachment not found", decodeError(t, resp).Error.Message)

	mockSvc.AssertExpectations(t)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/teapot", func(c *fiber.Ctx) error { return errors.New("plain") })
	app.Get("/large", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/large", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "FILE_TOO_LARGE", decodeError(t, resp).Error.Code)
}
