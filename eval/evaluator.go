// Package eval implements the secondary judgment pass that accepts or
// rejects a completed reply before the engine treats it as final.
package eval

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

// Evaluation is the verdict on a candidate reply. Ephemeral: produced and
// consumed within a single turn.
type Evaluation struct {
	IsAcceptable bool
	Feedback     string
}

// Request carries everything the judge needs for one verdict.
type Request struct {
	PersonaName string
	Summary     string
	Profile     string
	Reply       string
	UserMessage string
	History     []types.Message
}

// Judge scores a completed reply. Stateless; called once per turn.
type Judge interface {
	Evaluate(ctx context.Context, req *Request) (*Evaluation, error)
}

// Gemini judges replies with a secondary model call. Without an API key it
// fails open: every reply is acceptable and no network call is made, so the
// absence of the optional dependency never blocks the primary flow.
type Gemini struct {
	apiKey     string
	model      string
	classifier Classifier
	logger     utils.Logger
}

// Option configures a Gemini judge.
type Option func(*Gemini)

func WithClassifier(c Classifier) Option {
	return func(g *Gemini) { g.classifier = c }
}

func WithLogger(logger utils.Logger) Option {
	return func(g *Gemini) { g.logger = logger }
}

func NewGemini(apiKey, model string, options ...Option) *Gemini {
	g := &Gemini{
		apiKey:     apiKey,
		model:      model,
		classifier: NewKeywordClassifier(),
		logger:     utils.NewLogger(utils.LogLevelWarn),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *Gemini) Evaluate(ctx context.Context, req *Request) (*Evaluation, error) {
	if g.apiKey == "" {
		g.logger.Warn("No evaluator credential configured, skipping evaluation")
		return &Evaluation{IsAcceptable: true, Feedback: "No API key; skipping evaluation"}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return nil, fmt.Errorf("create evaluator client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(evaluatorSystemPrompt(req), genai.RoleUser),
		genai.NewContentFromText(evaluatorUserPrompt(req), genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("evaluate reply: %w", err)
	}

	judgment := strings.TrimSpace(resp.Text())
	g.logger.Debug("Evaluator judgment", "judgment", judgment)

	return &Evaluation{
		IsAcceptable: g.classifier.Acceptable(judgment),
		Feedback:     judgment,
	}, nil
}

func evaluatorSystemPrompt(req *Request) string {
	return fmt.Sprintf(`You are an evaluator that decides whether a response to a question is acceptable.
The Agent represents %s professionally and should respond appropriately.

## Summary:
%s

## LinkedIn:
%s

Evaluate the agent's reply below.
`, req.PersonaName, req.Summary, req.Profile)
}

func evaluatorUserPrompt(req *Request) string {
	return fmt.Sprintf(`Conversation history:
%s

User's message: %s

Agent's reply: %s

Is this acceptable? Give a short explanation.
`, renderTranscript(req.History), req.UserMessage, req.Reply)
}

// renderTranscript formats prior user/agent turn pairs. System and tool
// messages are omitted; the judge only sees the visible conversation.
func renderTranscript(history []types.Message) string {
	var sb strings.Builder
	var pendingUser string
	for _, msg := range history {
		switch msg.Role {
		case types.RoleUser:
			pendingUser = msg.Content
		case types.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			fmt.Fprintf(&sb, "User: %s\nAgent: %s\n", pendingUser, msg.Content)
			pendingUser = ""
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
