package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultGroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultGroqModel         = "Gemma2-9b-It"
	DefaultLangSmithEndpoint = "https://api.smith.langchain.com"
	DefaultLogLevel          = "info"
)

// ErrMissingCredential is returned when a required key is unset or blank.
var ErrMissingCredential = errors.New("missing or invalid")

// Config is built once at startup and passed to the components that need it.
type Config struct {
	GroqAPIKey     string
	GroqBaseURL    string
	GroqModel      string
	TelegramAPIKey string
	TelegramDebug  bool

	LangSmithAPIKey   string
	LangSmithProject  string // optional, empty means the LangSmith default project
	LangSmithEndpoint string
	TracingEnabled    bool

	LogLevel  string
	HTTPAddr  string // empty disables the operator HTTP server
	JWTSecret string // empty leaves /api unmounted
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Required credentials are
// checked in a fixed order and the first missing one is reported.
func LoadFrom(getenv func(string) string) (Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}
	orDefault := func(key, fallback string) string {
		if v := get(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		GroqAPIKey:        get("GROQ_API_KEY"),
		GroqBaseURL:       strings.TrimRight(orDefault("GROQ_BASE_URL", DefaultGroqBaseURL), "/"),
		GroqModel:         orDefault("GROQ_MODEL", DefaultGroqModel),
		TelegramAPIKey:    get("TELEGRAM_API_KEY"),
		LangSmithAPIKey:   get("LANGCHAIN_API_KEY"),
		LangSmithProject:  get("LANGCHAIN_PROJECT"),
		LangSmithEndpoint: strings.TrimRight(orDefault("LANGCHAIN_ENDPOINT", DefaultLangSmithEndpoint), "/"),
		TracingEnabled:    true,
		LogLevel:          strings.ToLower(orDefault("LOG_LEVEL", DefaultLogLevel)),
		HTTPAddr:          get("HTTP_ADDR"),
		JWTSecret:         get("JWT_SECRET"),
	}

	if raw := get("TELEGRAM_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_DEBUG %q: %w", raw, err)
		}
		cfg.TelegramDebug = debug
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails on the first required credential that is empty.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GROQ_API_KEY", c.GroqAPIKey},
		{"LANGCHAIN_API_KEY", c.LangSmithAPIKey},
		{"TELEGRAM_API_KEY", c.TelegramAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w %s", ErrMissingCredential, r.name)
		}
	}
	return nil
}
