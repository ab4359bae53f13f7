package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Upload       UploadConfig
	Pipeline     PipelineConfig
	Encoder      EncoderConfig
	Engine       EngineConfig
	Redis        RedisConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	R2           R2Config
	Capabilities CapabilitiesConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Env         string
	LogLevel    string
	LogFormat   string // "json" or "text"
	ApiDomain   string
	BodyLimitMB int
}

type StorageConfig struct {
	OutputDir string
}

type UploadConfig struct {
	MaxImageMB int
}

type PipelineConfig struct {
	Mode            string // "mock" or "http"
	ServiceURL      string
	Timeout         int // seconds
	ModelName       string
	AudioSampleRate int
	MockDelayMs     int
}

type EncoderConfig struct {
	FFmpegBin string
}

type EngineConfig struct {
	Backend string // "local" or "asynq"
	Queue   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type RateLimitConfig struct {
	Enabled         bool
	GeneratePerHour int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type CapabilitiesConfig struct {
	MaxFrames     int
	MaxResolution string
	DefaultFPS    int
	Quantization  string
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.log_format", "LOG_FORMAT")
	_ = v.BindEnv("server.api_domain", "API_DOMAIN")
	_ = v.BindEnv("server.body_limit_mb", "BODY_LIMIT_MB")
	_ = v.BindEnv("storage.output_dir", "OUTPUT_DIR")
	_ = v.BindEnv("upload.max_image_mb", "UPLOAD_MAX_IMAGE_MB")
	_ = v.BindEnv("pipeline.mode", "PIPELINE_MODE")
	_ = v.BindEnv("pipeline.service_url", "PIPELINE_SERVICE_URL")
	_ = v.BindEnv("pipeline.timeout", "PIPELINE_TIMEOUT")
	_ = v.BindEnv("pipeline.model_name", "PIPELINE_MODEL_NAME")
	_ = v.BindEnv("pipeline.audio_sample_rate", "PIPELINE_AUDIO_SAMPLE_RATE")
	_ = v.BindEnv("pipeline.mock_delay_ms", "PIPELINE_MOCK_DELAY_MS")
	_ = v.BindEnv("encoder.ffmpeg_bin", "FFMPEG_BIN")
	_ = v.BindEnv("engine.backend", "ENGINE_BACKEND")
	_ = v.BindEnv("engine.queue", "ENGINE_QUEUE")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("auth.enabled", "AUTH_ENABLED")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("ratelimit.enabled", "RATELIMIT_ENABLED")
	_ = v.BindEnv("ratelimit.generate_per_hour", "RATELIMIT_GENERATE_PER_HOUR")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")

	// Defaults
	v.SetDefault("server.port", "8001")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("storage.output_dir", "./outputs")
	v.SetDefault("upload.max_image_mb", 20)

	// Pipeline defaults
	v.SetDefault("pipeline.mode", "mock")
	v.SetDefault("pipeline.service_url", "http://localhost:8090")
	v.SetDefault("pipeline.timeout", 1800)
	v.SetDefault("pipeline.model_name", "ltx-2-19b-dev-fp8")
	v.SetDefault("pipeline.audio_sample_rate", 24000)
	v.SetDefault("pipeline.mock_delay_ms", 2000)
	v.SetDefault("encoder.ffmpeg_bin", "ffmpeg")

	v.SetDefault("engine.backend", "local")
	v.SetDefault("engine.queue", "generation")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.generate_per_hour", 30)

	v.SetDefault("capabilities.max_frames", 241)
	v.SetDefault("capabilities.max_resolution", "768x512")
	v.SetDefault("capabilities.default_fps", 25)
	v.SetDefault("capabilities.quantization", "FP8")

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("server.port"),
			Host:        v.GetString("server.host"),
			Env:         v.GetString("server.env"),
			LogLevel:    v.GetString("server.log_level"),
			LogFormat:   v.GetString("server.log_format"),
			ApiDomain:   v.GetString("server.api_domain"),
			BodyLimitMB: v.GetInt("server.body_limit_mb"),
		},
		Storage: StorageConfig{
			OutputDir: v.GetString("storage.output_dir"),
		},
		Upload: UploadConfig{
			MaxImageMB: v.GetInt("upload.max_image_mb"),
		},
		Pipeline: PipelineConfig{
			Mode:            strings.ToLower(v.GetString("pipeline.mode")),
			ServiceURL:      v.GetString("pipeline.service_url"),
			Timeout:         v.GetInt("pipeline.timeout"),
			ModelName:       v.GetString("pipeline.model_name"),
			AudioSampleRate: v.GetInt("pipeline.audio_sample_rate"),
			MockDelayMs:     v.GetInt("pipeline.mock_delay_ms"),
		},
		Encoder: EncoderConfig{
			FFmpegBin: v.GetString("encoder.ffmpeg_bin"),
		},
		Engine: EngineConfig{
			Backend: strings.ToLower(v.GetString("engine.backend")),
			Queue:   v.GetString("engine.queue"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Enabled:   v.GetBool("auth.enabled"),
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		RateLimit: RateLimitConfig{
			Enabled:         v.GetBool("ratelimit.enabled"),
			GeneratePerHour: v.GetInt("ratelimit.generate_per_hour"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
		Capabilities: CapabilitiesConfig{
			MaxFrames:     v.GetInt("capabilities.max_frames"),
			MaxResolution: v.GetString("capabilities.max_resolution"),
			DefaultFPS:    v.GetInt("capabilities.default_fps"),
			Quantization:  v.GetString("capabilities.quantization"),
		},
	}

	return cfg, nil
}
