package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmalhotra18/Career-Conversations/utils"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PERSONA_NAME", "Ada Lovelace")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CONTEXT_TOKEN_BUDGET", "2048")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "Ada Lovelace", cfg.PersonaName)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 2048, cfg.ContextTokenBudget)
	assert.Equal(t, ":7860", cfg.HTTPAddr)
}

func TestLoadRequiresPrimaryCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestNewWithOptions(t *testing.T) {
	cfg := New(
		SetPersonaName("Grace Hopper"),
		SetOpenAI("sk-abc", "gpt-4o"),
		SetGemini("g-key", "gemini-2.0-flash"),
		SetPushover("tok", "usr"),
		SetContextTokenBudget(512),
		SetHTTPAddr(":8080"),
	)

	assert.Equal(t, "Grace Hopper", cfg.PersonaName)
	assert.Equal(t, "sk-abc", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "g-key", cfg.GoogleAPIKey)
	assert.Equal(t, "tok", cfg.PushoverToken)
	assert.Equal(t, 512, cfg.ContextTokenBudget)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestSetContextTokenBudgetClampsNegative(t *testing.T) {
	cfg := New(SetContextTokenBudget(-5))
	assert.Equal(t, 0, cfg.ContextTokenBudget)
}
