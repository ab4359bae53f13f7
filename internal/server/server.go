// Package server wires the job store, engine, worker and HTTP routes together.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	_ "github.com/ltxvideo/api/docs"
	"github.com/ltxvideo/api/internal/client"
	"github.com/ltxvideo/api/internal/config"
	"github.com/ltxvideo/api/internal/engine"
	"github.com/ltxvideo/api/internal/handler"
	"github.com/ltxvideo/api/internal/middleware"
	"github.com/ltxvideo/api/internal/pipeline"
	"github.com/ltxvideo/api/internal/service"
	"github.com/ltxvideo/api/internal/store"
	ws "github.com/ltxvideo/api/internal/websocket"
	"github.com/ltxvideo/api/internal/worker"
	"github.com/ltxvideo/api/pkg/response"
)

// Options carries collaborators that main builds from config and tests replace.
// Nil Redis and Storage disable the features that depend on them.
type Options struct {
	Pipeline pipeline.Pipeline
	Encoder  pipeline.Encoder
	Storage  client.StorageClient
	Redis    *redis.Client
}

// Server is a fully wired API instance
type Server struct {
	App    *fiber.App
	Engine engine.Engine
	Store  store.JobStore
	Hub    *ws.Hub

	cfg    *config.Config
	logger *logrus.Logger
}

// New builds the server. The engine is not started until Start.
func New(cfg *config.Config, logger *logrus.Logger, opts Options) (*Server, error) {
	if opts.Pipeline == nil || opts.Encoder == nil {
		return nil, errors.New("server: pipeline and encoder are required")
	}

	jobStore, err := store.NewMemoryStore(cfg.Storage.OutputDir)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger)

	generationWorker := worker.NewGenerationWorker(jobStore, opts.Pipeline, opts.Encoder, opts.Storage, hub, logger)
	eng, err := engine.New(cfg, generationWorker.Process, logger)
	if err != nil {
		return nil, err
	}

	var redisPinger service.Pinger
	if opts.Redis != nil {
		redisPinger = service.PingFunc(func(ctx context.Context) error {
			return opts.Redis.Ping(ctx).Err()
		})
	}

	generationService := service.NewGenerationService(jobStore, eng, cfg.Upload.MaxImageMB, logger)
	jobService := service.NewJobService(jobStore, opts.Storage, logger)
	systemService := service.NewSystemService(cfg, jobStore, eng, opts.Pipeline, redisPinger, opts.Storage != nil)

	validate := validator.New()
	generationHandler := handler.NewGenerationHandler(generationService, validate, cfg.Upload.MaxImageMB)
	jobsHandler := handler.NewJobsHandler(jobService)
	systemHandler := handler.NewSystemHandler(systemService)
	eventsHandler := handler.NewEventsHandler(hub, jobService)

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(logger),
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/", systemHandler.Root)
	app.Get("/health", systemHandler.Health)
	app.Get("/models", systemHandler.Models)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authMiddleware := middleware.Optional(cfg.Auth.Enabled, middleware.Authenticate(cfg.Auth.JWTSecret))
	rateLimiter := middleware.NewRateLimiter(opts.Redis, logger)
	generateLimit := middleware.Optional(cfg.RateLimit.Enabled, rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour))

	api := app.Group("/api/v1", authMiddleware)
	api.Post("/text-to-video", generateLimit, generationHandler.TextToVideo)
	api.Post("/image-to-video", generateLimit, generationHandler.ImageToVideo)
	api.Get("/status/:jobId", jobsHandler.Status)
	api.Get("/download/:jobId", jobsHandler.Download)
	api.Get("/jobs", jobsHandler.List)
	api.Delete("/jobs/:jobId", jobsHandler.Delete)

	app.Get("/ws/jobs/:jobId", authMiddleware, eventsHandler.Upgrade, eventsHandler.Stream())

	return &Server{
		App:    app,
		Engine: eng,
		Store:  jobStore,
		Hub:    hub,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start launches the websocket hub and the generation engine
func (s *Server) Start() error {
	go s.Hub.Run()
	return s.Engine.Start()
}

// Listen serves HTTP until the app is shut down
func (s *Server) Listen() error {
	addr := s.cfg.Server.Addr()
	s.logger.WithField("addr", addr).Info("server starting")
	return s.App.Listen(addr)
}

// Shutdown stops accepting requests, then drains the engine until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	httpTimeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < httpTimeout {
		httpTimeout = time.Until(deadline)
	}
	httpErr := s.App.ShutdownWithTimeout(httpTimeout)
	return errors.Join(httpErr, s.Engine.Shutdown(ctx))
}

// errorHandler renders errors that reach fiber as the API envelope. Errors
// other than *fiber.Error are logged and never echoed to the client.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
		}

		errCode := response.CodeServiceError
		switch code {
		case fiber.StatusNotFound:
			errCode = response.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUpgradeRequired:
			errCode = response.CodeValidationError
		}

		return response.Error(c, code, errCode, message, nil)
	}
}
