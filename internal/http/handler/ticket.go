package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/http/middleware"
	"accidentapi/internal/model"
	"accidentapi/internal/service"
)

type createTicketRequest struct {
	ExtractedData map[string]any `json:"extracted_data"`
}

type messageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

type updateTicketRequest struct {
	Transcript    []messageRequest `json:"transcript" validate:"omitempty,max=500,dive"`
	ExtractedData map[string]any   `json:"extracted_data"`
	Status        *string          `json:"status" validate:"omitempty,oneof=open in_review closed"`
	Phase         *string          `json:"phase" validate:"omitempty,oneof=greeting collecting evidence review complete"`
}

func (r updateTicketRequest) toUpdate() service.TicketUpdate {
	upd := service.TicketUpdate{ExtractedData: r.ExtractedData, Phase: r.Phase}
	if r.Transcript != nil {
		upd.Transcript = make([]model.Message, len(r.Transcript))
		for i, m := range r.Transcript {
			upd.Transcript[i] = model.Message{Role: m.Role, Content: m.Content}
		}
	}
	if r.Status != nil {
		st := model.TicketStatus(*r.Status)
		upd.Status = &st
	}
	return upd
}

// CreateTicket godoc
// @Summary  Create an accident report ticket
// @Tags     tickets
// @Accept   json
// @Produce  json
// @Success  201 {object} model.Ticket
// @Router   /api/tickets [post]
func CreateTicket(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTicketRequest
		if len(c.Body()) > 0 {
			if ok, err := bindJSON(c, &req); !ok {
				return err
			}
		}
		t, err := svc.Create(c.UserContext(), req.ExtractedData)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// ListTickets godoc
// @Summary  List tickets, newest first
// @Tags     tickets
// @Produce  json
// @Param    limit  query int    false "page size"
// @Param    offset query int    false "offset"
// @Param    status query string false "open, in_review or closed"
// @Success  200 {object} service.TicketListResult
// @Security BearerAuth
// @Router   /api/tickets [get]
func ListTickets(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), model.TicketStatus(c.Query("status")), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetTicket godoc
// @Summary  Get a ticket with its attachments
// @Tags     tickets
// @Produce  json
// @Param    id path string true "ticket id"
// @Success  200 {object} model.Ticket
// @Router   /api/tickets/{id} [get]
func GetTicket(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(t)
	}
}

// UpdateTicket godoc
// @Summary     Partially update a ticket
// @Description Changing status or phase requires a bearer token.
// @Tags     tickets
// @Accept   json
// @Produce  json
// @Param    id path string true "ticket id"
// @Success  200 {object} model.Ticket
// @Router   /api/tickets/{id} [patch]
func UpdateTicket(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateTicketRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		// Phase gates uploads, so reporters may only edit content.
		if (req.Status != nil || req.Phase != nil) && middleware.UserFromCtx(c) == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "status and phase can only be changed by staff")
		}
		t, err := svc.Update(c.UserContext(), id, req.toUpdate())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(t)
	}
}

// DeleteTicket godoc
// @Summary  Delete a ticket and its stored files
// @Tags     tickets
// @Param    id path string true "ticket id"
// @Success  204
// @Security BearerAuth
// @Router   /api/tickets/{id} [delete]
func DeleteTicket(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadAttachment godoc
// @Summary  Attach evidence to a ticket (multipart field "file")
// @Tags     tickets
// @Accept   mpfd
// @Produce  json
// @Param    id   path     string true "ticket id"
// @Param    file formData file   true "evidence file"
// @Success  201 {object} model.Attachment
// @Router   /api/tickets/{id}/attachments [post]
func UploadAttachment(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		att, err := svc.UploadAttachment(c.UserContext(), service.AttachmentUpload{
			TicketID:    id,
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: formContentType(fh.Header.Get(fiber.HeaderContentType)),
			Size:        fh.Size,
			Override:    middleware.IsAdmin(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(att)
	}
}

// DeleteAttachment godoc
// @Summary  Remove one attachment from a ticket
// @Tags     tickets
// @Param    id  path string true "ticket id"
// @Param    aid path string true "attachment id"
// @Success  204
// @Security BearerAuth
// @Router   /api/tickets/{id}/attachments/{aid} [delete]
func DeleteAttachment(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteAttachment(c.UserContext(), id, c.Params("aid")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func formContentType(ct string) string {
	if ct == "" {
		return fiber.MIMEOctetStream
	}
	return ct
}
