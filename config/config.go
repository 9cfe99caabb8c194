// Package config loads the assistant configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/kmalhotra18/Career-Conversations/utils"
)

// Config holds everything the assistant needs at runtime. Credentials come
// from the deployment environment and are never embedded.
type Config struct {
	// Persona and grounding documents.
	PersonaName string `env:"PERSONA_NAME" envDefault:"Kunal Malhotra"`
	SummaryPath string `env:"SUMMARY_PATH" envDefault:"me/summary.txt" validate:"required"`
	ProfilePath string `env:"PROFILE_PATH" envDefault:"me/linkedin.pdf" validate:"required"`

	// Primary model service (chat completions).
	OpenAIAPIKey string        `env:"OPENAI_API_KEY" validate:"required"`
	OpenAIModel  string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Secondary model service (reply evaluation). Optional: when the key is
	// absent the evaluator degrades to pass-through.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// Notification channel. Optional: without credentials notifications
	// become best-effort failures that never surface to the conversation.
	PushoverToken string `env:"PUSHOVER_TOKEN"`
	PushoverUser  string `env:"PUSHOVER_USER"`

	// Conversation window. Zero disables token-budget trimming.
	ContextTokenBudget int `env:"CONTEXT_TOKEN_BUDGET" envDefault:"0" validate:"gte=0"`

	// Serving surface.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":7860"`

	LogLevel utils.LogLevel `env:"LOG_LEVEL" envDefault:"INFO"`
}

var validate = validator.New()

// Load parses the environment into a Config and validates it. A missing
// primary credential or document path is a startup-fatal condition.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Option mutates a Config; used by tests and alternate entrypoints.
type Option func(*Config)

func New(options ...Option) *Config {
	cfg := &Config{
		PersonaName: "Kunal Malhotra",
		SummaryPath: "me/summary.txt",
		ProfilePath: "me/linkedin.pdf",
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-1.5-flash",
		LLMTimeout:  60 * time.Second,
		HTTPAddr:    ":7860",
		LogLevel:    utils.LogLevelInfo,
	}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func SetPersonaName(name string) Option {
	return func(c *Config) { c.PersonaName = name }
}

func SetDocuments(summaryPath, profilePath string) Option {
	return func(c *Config) {
		c.SummaryPath = summaryPath
		c.ProfilePath = profilePath
	}
}

func SetOpenAI(apiKey, model string) Option {
	return func(c *Config) {
		c.OpenAIAPIKey = apiKey
		c.OpenAIModel = model
	}
}

func SetGemini(apiKey, model string) Option {
	return func(c *Config) {
		c.GoogleAPIKey = apiKey
		c.GeminiModel = model
	}
}

func SetPushover(token, user string) Option {
	return func(c *Config) {
		c.PushoverToken = token
		c.PushoverUser = user
	}
}

func SetContextTokenBudget(tokens int) Option {
	return func(c *Config) {
		if tokens < 0 {
			tokens = 0
		}
		c.ContextTokenBudget = tokens
	}
}

func SetHTTPAddr(addr string) Option {
	return func(c *Config) { c.HTTPAddr = addr }
}

func SetLogLevel(level utils.LogLevel) Option {
	return func(c *Config) { c.LogLevel = level }
}
