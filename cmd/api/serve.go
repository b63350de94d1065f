package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"accidentapi/docs"
	"accidentapi/internal/ai"
	"accidentapi/internal/config"
	handlers "accidentapi/internal/http/handler"
	"accidentapi/internal/http/middleware"
	"accidentapi/internal/logger"
	"accidentapi/internal/notify"
	"accidentapi/internal/otel"
	"accidentapi/internal/service"
	"accidentapi/internal/storage"
)

// Audio uploads for speech-to-text may exceed the evidence limit.
const minBodyLimit = 26 << 20

var skipMigrate bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the accident reporting HTTP server using configuration from the environment.`,
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not create the SQL schema on startup")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.Init(cfg.Logger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing_shutdown_failed", "error", err)
		}
	}()

	store, err := openStore(ctx, cfg, log, !skipMigrate)
	if err != nil {
		return err
	}
	defer store.Close()

	objStore, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	if cfg.AI.APIKey == "" {
		log.Warn("ai_api_key_missing", "detail", "AI_API_KEY is unset, assistant endpoints will fail")
	}
	aiClient := ai.NewOpenAI(cfg.AI)
	speaker, closeCache := newSpeaker(ctx, aiClient, cfg.Redis, log)
	defer closeCache()

	prompt, err := service.LoadSystemPrompt(cfg.AI.SystemPromptFile)
	if err != nil {
		return err
	}

	if err := ensureJWTSecret(&cfg.Auth, log); err != nil {
		return err
	}
	authSvc, err := service.NewAuthService(store.Users(), cfg.Auth)
	if err != nil {
		return err
	}
	if cfg.Auth.AdminPassword != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			log.Info("admin_created", "username", cfg.Auth.AdminUsername)
		}
	}

	policy := service.UploadPolicy{MaxBytes: cfg.MaxUploadBytes(), Allowed: cfg.AllowedUploadMIME}
	ticketSvc := service.NewTicketService(store.Tickets(), objStore, policy, logger.WithComponent("tickets"))
	services := handlers.Services{
		Tickets: ticketSvc,
		Chat:    service.NewChatService(store.Tickets(), aiClient, notify.New(cfg.SMTP), prompt, logger.WithComponent("chat")),
		Speech:  service.NewSpeechService(speaker, aiClient),
		OCR:     service.NewOCRService(aiClient),
		Upload:  service.NewUploadService(objStore, policy),
		Auth:    authSvc,
		Reports: service.NewReportService(ticketSvc),
	}

	bodyLimit := int(cfg.MaxUploadBytes()) + 1<<20
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Register global middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		p := c.Path()
		return p == "/metrics" || p == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	if cfg.Storage.Backend == config.StorageLocal && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		app.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir, fiber.Static{ByteRange: true})
	}

	handlers.RegisterRoutes(app, handlers.PingFunc(store.Ping), services)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_starting", "address", addr, "store", cfg.Store.Backend, "storage", cfg.Storage.Backend)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error("server_forced_shutdown", "error", err)
		return err
	}
	log.Info("server_stopped")
	return nil
}
