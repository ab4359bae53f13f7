package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ltxvideo/api/docs"
	"github.com/ltxvideo/api/internal/client"
	"github.com/ltxvideo/api/internal/config"
	"github.com/ltxvideo/api/internal/pipeline"
	"github.com/ltxvideo/api/internal/server"
)

// Long enough for an in-flight generation to finish
const drainTimeout = 30 * time.Minute

// @title          LTX Video API
// @version        1.0
// @description    Asynchronous text-to-video and image-to-video generation.
// @host           localhost:8001
// @BasePath       /
// @schemes        http https
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
// @description    Enter your bearer token in the format **Bearer &lt;token&gt;**
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Server)

	// Configure Swagger host/scheme based on environment
	if cfg.Server.ApiDomain != "" {
		docs.SwaggerInfo.Host = cfg.Server.ApiDomain
		docs.SwaggerInfo.Schemes = []string{"https"}
	} else {
		docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
		docs.SwaggerInfo.Schemes = []string{"http"}
	}

	// Redis backs the asynq engine and rate limiting; neither is required locally
	var redisClient *redis.Client
	if cfg.Engine.Backend == "asynq" || cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("Redis not available")
		}
		cancel()
	}

	var gen pipeline.Pipeline
	switch cfg.Pipeline.Mode {
	case "http":
		gen = pipeline.NewHTTPPipeline(&cfg.Pipeline)
		logger.WithField("url", cfg.Pipeline.ServiceURL).Info("using inference service")
	default:
		gen = pipeline.NewMockPipeline(time.Duration(cfg.Pipeline.MockDelayMs)*time.Millisecond, cfg.Pipeline.AudioSampleRate)
		logger.Info("using mock pipeline")
	}

	encoder := pipeline.NewFFmpegEncoder(cfg.Encoder.FFmpegBin)
	if !encoder.Available() {
		logger.WithField("bin", cfg.Encoder.FFmpegBin).Warn("ffmpeg not found, generation jobs will fail at encoding")
	}

	// R2 mirror is optional
	opts := server.Options{
		Pipeline: gen,
		Encoder:  encoder,
		Redis:    redisClient,
	}
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			logger.WithError(err).Warn("R2 client not initialized")
		} else {
			opts.Storage = r2Client
		}
	} else {
		logger.Info("R2 storage not configured, videos are kept locally only")
	}

	srv, err := server.New(cfg, logger, opts)
	if err != nil {
		logger.Fatalf("Failed to build server: %v", err)
	}
	if err := srv.Start(); err != nil {
		logger.Fatalf("Failed to start engine: %v", err)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit
		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	if err := srv.Listen(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	<-done
}
