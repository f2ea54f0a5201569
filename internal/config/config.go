package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	AWS       AWSConfig
	S3        S3Config
	Extractor ExtractorConfig
	RateLimit RateLimitConfig
	Template  TemplateConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AWSConfig holds credentials and region shared by the Textract and S3
// clients. Empty keys fall back to the default AWS credential chain.
type AWSConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// S3Config holds object storage settings for submission intake.
type S3Config struct {
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ExtractorProviderConfig holds settings for a single vision extraction
// provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds extraction backend settings. The primary backend
// is always Textract (configured via AWSConfig); Secondary and Tertiary
// name the vision fallbacks invoked when the primary is insufficient.
type ExtractorConfig struct {
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
	Tertiary  ExtractorProviderConfig `mapstructure:"tertiary"`
}

// SecondaryConfig returns the secondary extractor config, or nil if not
// configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" && e.Secondary.APIKey != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary extractor config, or nil if not
// configured.
func (e *ExtractorConfig) TertiaryConfig() *ExtractorProviderConfig {
	if e.Tertiary.Provider != "" && e.Tertiary.APIKey != "" {
		return &e.Tertiary
	}
	return nil
}

// RateLimitConfig holds the shared sliding-window limiter settings for
// the rate-limited vision provider.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	MinIntervalMS     int `mapstructure:"min_interval_ms"`
}

// TemplateConfig holds destination template settings.
type TemplateConfig struct {
	Path       string `mapstructure:"path"`
	DateFormat string `mapstructure:"date_format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the MEDBOT_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// AWS defaults
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.access_key", "")
	v.SetDefault("aws.secret_key", "")

	// S3 defaults
	v.SetDefault("s3.bucket", "medbot-submissions")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Extractor defaults: GPT vision as secondary, Claude as tertiary.
	v.SetDefault("extractor.secondary.provider", "openai")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "gpt-4o-mini")
	v.SetDefault("extractor.secondary.max_retries", 5)
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.tertiary.provider", "claude")
	v.SetDefault("extractor.tertiary.api_key", "")
	v.SetDefault("extractor.tertiary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.tertiary.max_retries", 2)
	v.SetDefault("extractor.tertiary.timeout_secs", 120)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_minute", 15)
	v.SetDefault("rate_limit.min_interval_ms", 300)

	// Template defaults
	v.SetDefault("template.path", "templates/insurance_template.xlsx")
	v.SetDefault("template.date_format", "DD/MM/YYYY")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "MEDBOT_SERVER_PORT",
		"server.read_timeout":               "MEDBOT_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "MEDBOT_SERVER_WRITE_TIMEOUT",
		"server.environment":                "MEDBOT_SERVER_ENVIRONMENT",
		"log.level":                         "MEDBOT_LOG_LEVEL",
		"log.format":                        "MEDBOT_LOG_FORMAT",
		"aws.region":                        "MEDBOT_AWS_REGION",
		"aws.access_key":                    "MEDBOT_AWS_ACCESS_KEY",
		"aws.secret_key":                    "MEDBOT_AWS_SECRET_KEY",
		"s3.bucket":                         "MEDBOT_S3_BUCKET",
		"s3.endpoint":                       "MEDBOT_S3_ENDPOINT",
		"s3.max_file_size_mb":               "MEDBOT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "MEDBOT_S3_PRESIGN_EXPIRY",
		"extractor.secondary.provider":      "MEDBOT_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "MEDBOT_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "MEDBOT_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.max_retries":   "MEDBOT_EXTRACTOR_SECONDARY_MAX_RETRIES",
		"extractor.secondary.timeout_secs":  "MEDBOT_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.tertiary.provider":       "MEDBOT_EXTRACTOR_TERTIARY_PROVIDER",
		"extractor.tertiary.api_key":        "MEDBOT_EXTRACTOR_TERTIARY_API_KEY",
		"extractor.tertiary.default_model":  "MEDBOT_EXTRACTOR_TERTIARY_DEFAULT_MODEL",
		"extractor.tertiary.max_retries":    "MEDBOT_EXTRACTOR_TERTIARY_MAX_RETRIES",
		"extractor.tertiary.timeout_secs":   "MEDBOT_EXTRACTOR_TERTIARY_TIMEOUT_SECS",
		"rate_limit.requests_per_minute":    "MEDBOT_RATE_LIMIT_REQUESTS_PER_MINUTE",
		"rate_limit.min_interval_ms":        "MEDBOT_RATE_LIMIT_MIN_INTERVAL_MS",
		"template.path":                     "MEDBOT_TEMPLATE_PATH",
		"template.date_format":              "MEDBOT_TEMPLATE_DATE_FORMAT",
		"cors.allowed_origins":              "MEDBOT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDBOT_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDBOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.AWS = AWSConfig{
		Region:    v.GetString("aws.region"),
		AccessKey: v.GetString("aws.access_key"),
		SecretKey: v.GetString("aws.secret_key"),
	}
	cfg.S3 = S3Config{
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Extractor = ExtractorConfig{
		Secondary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			MaxRetries:   v.GetInt("extractor.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
		},
		Tertiary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.tertiary.provider"),
			APIKey:       v.GetString("extractor.tertiary.api_key"),
			DefaultModel: v.GetString("extractor.tertiary.default_model"),
			MaxRetries:   v.GetInt("extractor.tertiary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.tertiary.timeout_secs"),
		},
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerMinute: v.GetInt("rate_limit.requests_per_minute"),
		MinIntervalMS:     v.GetInt("rate_limit.min_interval_ms"),
	}
	cfg.Template = TemplateConfig{
		Path:       v.GetString("template.path"),
		DateFormat: v.GetString("template.date_format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
