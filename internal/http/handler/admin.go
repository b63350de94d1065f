package handler

import (
	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/model"
	"accidentapi/internal/service"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin agent"`
}

// Login godoc
// @Summary  Exchange credentials for an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} service.LoginResult
// @Router   /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateUser godoc
// @Summary  Create a back-office account
// @Tags     admin
// @Accept   json
// @Produce  json
// @Success  201 {object} model.User
// @Security BearerAuth
// @Router   /api/admin/users [post]
func CreateUser(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		u, err := svc.CreateUser(c.UserContext(), req.Username, req.Password, model.Role(req.Role))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListUsers godoc
// @Summary  List back-office accounts
// @Tags     admin
// @Produce  json
// @Success  200 {object} map[string][]model.User
// @Security BearerAuth
// @Router   /api/admin/users [get]
func ListUsers(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.ListUsers(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": users})
	}
}

// AdminStats godoc
// @Summary  Ticket counts per status
// @Tags     admin
// @Produce  json
// @Success  200 {object} service.TicketStats
// @Security BearerAuth
// @Router   /api/admin/stats [get]
func AdminStats(svc service.TicketService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}

// TicketReport godoc
// @Summary  Render a ticket as an HTML report, or Markdown with ?format=md
// @Tags     admin
// @Produce  html
// @Param    id     path  string true  "ticket id"
// @Param    format query string false "html (default) or md"
// @Security BearerAuth
// @Router   /api/admin/tickets/{id}/report [get]
func TicketReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ticketID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		switch c.Query("format", "html") {
		case "md", "markdown":
			md, err := svc.Markdown(c.UserContext(), id)
			if err != nil {
				return writeServiceError(c, err)
			}
			c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
			return c.SendString(md)
		case "html":
			html, err := svc.HTML(c.UserContext(), id)
			if err != nil {
				return writeServiceError(c, err)
			}
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.SendString(html)
		default:
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORMAT", "format must be html or md")
		}
	}
}
