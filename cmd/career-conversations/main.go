// Command career-conversations serves a personal career-conversations
// assistant: a chat surface that answers visitor questions as a named
// individual, grounded in their summary and LinkedIn profile.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kmalhotra18/Career-Conversations/chat"
	"github.com/kmalhotra18/Career-Conversations/config"
	"github.com/kmalhotra18/Career-Conversations/eval"
	"github.com/kmalhotra18/Career-Conversations/llm"
	"github.com/kmalhotra18/Career-Conversations/notify"
	"github.com/kmalhotra18/Career-Conversations/persona"
	"github.com/kmalhotra18/Career-Conversations/server"
	"github.com/kmalhotra18/Career-Conversations/tools"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; the deployment environment
	// provides real credentials.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.LogLevel)

	docs, err := persona.LoadDocuments(cfg.SummaryPath, cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load grounding documents: %w", err)
	}
	me := persona.New(cfg.PersonaName, docs)
	logger.Info("Grounding documents loaded",
		"summary_bytes", len(docs.Summary), "profile_bytes", len(docs.Profile))

	notifier := notify.NewPushover(cfg.PushoverToken, cfg.PushoverUser, notify.WithLogger(logger))
	registry := tools.NewRegistry(notifier, logger)

	client := llm.NewClient(cfg.OpenAIAPIKey,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithLogger(logger),
	)

	judge := eval.NewGemini(cfg.GoogleAPIKey, cfg.GeminiModel, eval.WithLogger(logger))
	if cfg.GoogleAPIKey == "" {
		logger.Warn("GOOGLE_API_KEY not set; replies will not be evaluated")
	}

	engineOpts := []chat.Option{chat.WithLogger(logger)}
	if cfg.ContextTokenBudget > 0 {
		window, err := chat.NewWindow(cfg.ContextTokenBudget, cfg.OpenAIModel, logger)
		if err != nil {
			return fmt.Errorf("create context window: %w", err)
		}
		engineOpts = append(engineOpts, chat.WithWindow(window))
	}
	engine := chat.NewEngine(me, client, cfg.OpenAIModel, registry, judge, engineOpts...)

	srv := server.New(engine, logger)
	logger.Info("Listening", "addr", cfg.HTTPAddr, "persona", cfg.PersonaName)
	return http.ListenAndServe(cfg.HTTPAddr, srv.Handler())
}
