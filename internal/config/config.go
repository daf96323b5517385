package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"trendradar/internal/mailer"
	"trendradar/pkg/llm"
	"trendradar/pkg/snapshot"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderGemini    = llm.ProviderGemini
	ProviderOpenAI    = llm.ProviderOpenAI
	ProviderAnthropic = llm.ProviderAnthropic
)

var defaultModels = map[string][]string{
	ProviderGemini: {
		"gemini-3-pro-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	},
	ProviderOpenAI: {
		"gpt-4.1",
		"gpt-4.1-mini",
	},
	ProviderAnthropic: {
		"claude-sonnet-4-5",
		"claude-haiku-4-5",
	},
}

var apiKeyEnv = map[string]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

const implicitTLSPort = 465

const defaultSchedule = "0 8 * * *;0 13 * * *;0 20 * * *"

type LLMConfig struct {
	Provider string   `env:"LLM_PROVIDER" validate:"oneof=gemini openai anthropic"`
	APIKey   string   `env:"LLM_API_KEY" validate:"required"`
	Models   []string `env:"LLM_MODELS" validate:"min=1,dive,required"`
}

// Config is read once at startup and passed to every stage.
type Config struct {
	Storage snapshot.S3Config
	LLM     LLMConfig

	// Mail is nil when sender, recipient or password is missing: delivery is disabled.
	Mail *mailer.Config

	TopicLimit       int `env:"TOPIC_LIMIT" validate:"min=1"`
	PromptTopicLimit int `env:"PROMPT_TOPIC_LIMIT" validate:"min=1"`
	MinTitleLength   int `env:"MIN_TITLE_LENGTH" validate:"min=1"`

	Location *time.Location `validate:"required"`
	LogLevel slog.Level

	Schedule    []string `env:"DIGEST_SCHEDULE" validate:"dive,required"`
	MetricsAddr string   `env:"METRICS_ADDR"`
	APIAddr     string   `env:"API_ADDR"`
	FrontendURL string   `env:"FRONTEND_URL"`
}

func (c *Config) MailEnabled() bool {
	return c.Mail != nil
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Storage: snapshot.S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT_URL"),
			Region:          getEnvOrDefault("S3_REGION", "auto"),
			Bucket:          os.Getenv("S3_BUCKET_NAME"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		APIAddr:     getEnvOrDefault("API_ADDR", ":8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		Schedule:    splitList(getEnvOrDefault("DIGEST_SCHEDULE", defaultSchedule), ";"),
	}

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini))
	cfg.LLM = LLMConfig{
		Provider: provider,
		APIKey:   os.Getenv(apiKeyEnv[provider]),
		Models:   splitList(os.Getenv("LLM_MODELS"), ","),
	}
	if len(cfg.LLM.Models) == 0 {
		cfg.LLM.Models = defaultModels[provider]
	}

	var err error
	if cfg.TopicLimit, err = getIntEnv("TOPIC_LIMIT", 200); err != nil {
		return nil, err
	}
	if cfg.PromptTopicLimit, err = getIntEnv("PROMPT_TOPIC_LIMIT", 150); err != nil {
		return nil, err
	}
	if cfg.MinTitleLength, err = getIntEnv("MIN_TITLE_LENGTH", 4); err != nil {
		return nil, err
	}

	offset, err := getIntEnv("TZ_OFFSET_HOURS", 8)
	if err != nil {
		return nil, err
	}
	if offset < -12 || offset > 14 {
		return nil, fmt.Errorf("TZ_OFFSET_HOURS out of range: %d", offset)
	}
	cfg.Location = time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*60*60)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.Mail, err = loadMail(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadMail() (*mailer.Config, error) {
	from := os.Getenv("EMAIL_FROM")
	to := os.Getenv("EMAIL_TO")
	if from == "" || to == "" {
		return nil, nil
	}

	password := os.Getenv("EMAIL_PASSWORD")
	if password == "" {
		slog.Warn("EMAIL_PASSWORD not set, mail delivery disabled", "from", from, "to", to)
		return nil, nil
	}

	port, err := getIntEnv("SMTP_PORT", implicitTLSPort)
	if err != nil {
		return nil, err
	}

	implicitTLS, err := getBoolEnv("SMTP_SSL", port == implicitTLSPort)
	if err != nil {
		return nil, err
	}

	return &mailer.Config{
		Host:        getEnvOrDefault("SMTP_SERVER", "smtp.qq.com"),
		Port:        port,
		Username:    from,
		Password:    password,
		From:        from,
		To:          to,
		ImplicitTLS: implicitTLS,
	}, nil
}

// Validate checks required fields, reporting them by environment variable name.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	validate.RegisterStructValidation(validateStorage, snapshot.S3Config{})

	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return newValidationError(errs, c.LLM.Provider)
		}
		return err
	}
	return nil
}

func validateStorage(sl validator.StructLevel) {
	s := sl.Current().Interface().(snapshot.S3Config)

	required := []struct {
		value, env string
	}{
		{s.Endpoint, "S3_ENDPOINT_URL"},
		{s.Bucket, "S3_BUCKET_NAME"},
		{s.AccessKeyID, "S3_ACCESS_KEY_ID"},
		{s.SecretAccessKey, "S3_SECRET_ACCESS_KEY"},
	}
	for _, r := range required {
		if r.value == "" {
			sl.ReportError(r.value, r.env, r.env, "required", "")
		}
	}
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

func newValidationError(errs validator.ValidationErrors, provider string) *ValidationError {
	out := &ValidationError{}
	for _, fe := range errs {
		field := fe.Field()
		if field == "LLM_API_KEY" {
			if env, ok := apiKeyEnv[provider]; ok {
				field = env
			}
		}

		switch fe.Tag() {
		case "required":
			out.Errors = append(out.Errors, fmt.Sprintf("%s is required", field))
		case "oneof":
			out.Errors = append(out.Errors, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "hostname_rfc1123|ip":
			out.Errors = append(out.Errors, fmt.Sprintf("%s must be a hostname or IP address", field))
		case "email":
			out.Errors = append(out.Errors, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			out.Errors = append(out.Errors, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			out.Errors = append(out.Errors, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			out.Errors = append(out.Errors, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
