package handler

import (
	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/http/middleware"
	"accidentapi/internal/model"
	"accidentapi/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Tickets service.TicketService
	Chat    service.ChatService
	Speech  service.SpeechService
	OCR     service.OCRService
	Upload  service.UploadService
	Auth    service.AuthService
	Reports service.ReportService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, health Pinger, svc Services) {
	app.Get("/health", HealthCheck(health))
	app.Get("/healthz", LivenessProbe())

	requireAuth := middleware.RequireAuth(svc.Auth, unauthorized)
	adminOnly := middleware.RequireRole(forbidden, model.RoleAdmin)

	// Drivers use the API anonymously; a valid token only adds privileges.
	api := app.Group("/api", middleware.OptionalAuth(svc.Auth))

	api.Post("/auth/login", Login(svc.Auth))

	api.Post("/chat", Chat(svc.Chat))
	api.Post("/tts", TextToSpeech(svc.Speech))
	api.Post("/stt", SpeechToText(svc.Speech))
	api.Post("/ocr", OCR(svc.OCR))
	api.Post("/upload", Upload(svc.Upload))

	api.Post("/tickets", CreateTicket(svc.Tickets))
	api.Get("/tickets", requireAuth, ListTickets(svc.Tickets))
	api.Get("/tickets/:id", GetTicket(svc.Tickets))
	api.Patch("/tickets/:id", UpdateTicket(svc.Tickets))
	api.Delete("/tickets/:id", requireAuth, adminOnly, DeleteTicket(svc.Tickets))
	api.Post("/tickets/:id/attachments", UploadAttachment(svc.Tickets))
	api.Delete("/tickets/:id/attachments/:aid", requireAuth, DeleteAttachment(svc.Tickets))

	admin := api.Group("/admin", requireAuth, adminOnly)
	admin.Get("/stats", AdminStats(svc.Tickets))
	admin.Get("/tickets/:id/report", TicketReport(svc.Reports))
	admin.Get("/users", ListUsers(svc.Auth))
	admin.Post("/users", CreateUser(svc.Auth))
}
