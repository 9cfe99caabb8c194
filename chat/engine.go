package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kmalhotra18/Career-Conversations/eval"
	"github.com/kmalhotra18/Career-Conversations/llm"
	"github.com/kmalhotra18/Career-Conversations/persona"
	"github.com/kmalhotra18/Career-Conversations/tools"
	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

// Engine drives one conversational turn at a time. It holds no state
// between turns; the caller supplies the history and keeps the updated
// copy the turn stream hands back.
type Engine struct {
	persona   *persona.Persona
	model     llm.ModelService
	modelName string
	registry  *tools.Registry
	judge     eval.Judge
	window    *Window
	logger    utils.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithWindow(window *Window) Option {
	return func(e *Engine) { e.window = window }
}

func WithLogger(logger utils.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(p *persona.Persona, model llm.ModelService, modelName string, registry *tools.Registry, judge eval.Judge, options ...Option) *Engine {
	e := &Engine{
		persona:   p,
		model:     model,
		modelName: modelName,
		registry:  registry,
		judge:     judge,
		logger:    utils.NewLogger(utils.LogLevelWarn),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// turn states.
type turnState int

const (
	stateStreaming turnState = iota
	stateEvaluating
	stateRetrying
	stateDone
)

// TurnStream is the lazy sequence of reply snapshots for one turn. Each
// Next returns the full accumulated reply so far; io.EOF ends the turn.
// A stream is not restartable; start a fresh turn per user message.
type TurnStream struct {
	engine      *Engine
	userMessage string
	updated     []types.Message // history + this turn's messages, sans system
	state       turnState
	stream      llm.Stream
	collected   strings.Builder
	rejection   *persona.Rejection
	final       string
	err         error
}

// StreamChat begins a turn. The request is issued lazily on the first Next,
// so abandoning the stream before that costs nothing. The caller's history
// is copied, never mutated.
func (e *Engine) StreamChat(userMessage string, history []types.Message) *TurnStream {
	updated := make([]types.Message, 0, len(history)+1)
	updated = append(updated, history...)
	updated = append(updated, types.UserMessage(userMessage))

	return &TurnStream{
		engine:      e,
		userMessage: userMessage,
		updated:     updated,
	}
}

// History returns the updated conversation once the turn has resolved.
func (t *TurnStream) History() []types.Message {
	return t.updated
}

// Final returns the reply text the turn settled on; empty for tool-resolved
// turns.
func (t *TurnStream) Final() string {
	return t.final
}

// Close releases the upstream completion stream. History for the turn is
// left as far as it got; abandoning mid-stream never corrupts the caller's
// copy.
func (t *TurnStream) Close() error {
	if t.stream != nil {
		return t.stream.Close()
	}
	return nil
}

func (t *TurnStream) fail(err error) (string, error) {
	t.err = err
	if t.stream != nil {
		t.stream.Close()
		t.stream = nil
	}
	return "", err
}

// Next advances the turn and returns the next accumulated-reply snapshot.
// It suspends exactly at "awaiting the next token from the model service";
// ctx cancels that wait.
func (t *TurnStream) Next(ctx context.Context) (string, error) {
	if t.err != nil {
		return "", t.err
	}

	for {
		switch t.state {
		case stateStreaming:
			snapshot, emitted, err := t.pump(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return "", io.EOF
				}
				return t.fail(err)
			}
			if emitted {
				return snapshot, nil
			}

		case stateEvaluating:
			if err := t.evaluate(ctx); err != nil {
				return t.fail(err)
			}

		case stateRetrying:
			snapshot, err := t.retry(ctx)
			if err != nil {
				return t.fail(err)
			}
			return snapshot, nil

		case stateDone:
			return "", io.EOF
		}
	}
}

// pump consumes the completion stream. It returns (snapshot, true, nil)
// when a new snapshot should be yielded, (_, false, nil) after a state
// transition, and io.EOF when a tool dispatch resolved the turn.
func (t *TurnStream) pump(ctx context.Context) (string, bool, error) {
	if t.stream == nil {
		system := t.engine.persona.SystemPrompt(nil)
		stream, err := t.engine.model.ChatStream(ctx, &llm.ChatRequest{
			Model:    t.engine.modelName,
			Messages: t.compose(system),
			Tools:    t.engine.registry.Specs(),
		})
		if err != nil {
			return "", false, err
		}
		t.stream = stream
	}

	delta, err := t.stream.Recv()
	if errors.Is(err, io.EOF) {
		// Stream ended without an explicit finish signal; treat the reply
		// as complete.
		t.closeStream()
		t.state = stateEvaluating
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	switch delta.FinishReason {
	case llm.FinishToolCalls:
		t.closeStream()
		if err := t.dispatchTools(ctx, delta.ToolCalls); err != nil {
			return "", false, err
		}
		// A tool-resolved turn produces no visible reply and is never
		// evaluated.
		t.state = stateDone
		return "", false, io.EOF

	case llm.FinishStop:
		t.closeStream()
		t.state = stateEvaluating
		return "", false, nil
	}

	if delta.Content != "" {
		t.collected.WriteString(delta.Content)
		return t.collected.String(), true, nil
	}
	return "", false, nil
}

func (t *TurnStream) closeStream() {
	if t.stream != nil {
		t.stream.Close()
		t.stream = nil
	}
}

// dispatchTools runs the requested calls in order and appends the
// assistant's tool-call message followed by one tool message per call.
func (t *TurnStream) dispatchTools(ctx context.Context, calls []types.ToolCall) error {
	t.engine.logger.Debug("Turn resolved via tool calls", "calls", len(calls))

	t.updated = append(t.updated, types.Message{
		Role:      types.RoleAssistant,
		ToolCalls: calls,
	})
	for _, result := range t.engine.registry.DispatchAll(ctx, calls) {
		t.updated = append(t.updated, result.Message())
	}
	return nil
}

// evaluate asks the judge about the completed reply and either finishes
// the turn or arms a single retry.
func (t *TurnStream) evaluate(ctx context.Context) error {
	reply := t.collected.String()
	history := t.updated[:len(t.updated)-1] // everything before this turn's user message

	evaluation, err := t.engine.judge.Evaluate(ctx, &eval.Request{
		PersonaName: t.engine.persona.Name,
		Summary:     t.engine.persona.Docs.Summary,
		Profile:     t.engine.persona.Docs.Profile,
		Reply:       reply,
		UserMessage: t.userMessage,
		History:     history,
	})
	if err != nil {
		return err
	}

	if evaluation.IsAcceptable {
		t.engine.logger.Debug("Reply passed evaluation")
		t.final = reply
		t.updated = append(t.updated, types.AssistantMessage(reply))
		t.state = stateDone
		return nil
	}

	t.engine.logger.Info("Reply failed evaluation, retrying", "feedback", evaluation.Feedback)
	t.rejection = &persona.Rejection{Reply: reply, Reason: evaluation.Feedback}
	t.state = stateRetrying
	return nil
}

// retry performs the single corrective regeneration: a non-streaming
// completion without tools, conditioned on the rejection. Whatever comes
// back is final and is not re-evaluated.
func (t *TurnStream) retry(ctx context.Context) (string, error) {
	system := t.engine.persona.SystemPrompt(t.rejection)

	resp, err := t.engine.model.Chat(ctx, &llm.ChatRequest{
		Model:    t.engine.modelName,
		Messages: t.compose(system),
	})
	if err != nil {
		return "", err
	}

	t.final = resp.Content
	t.updated = append(t.updated, types.AssistantMessage(resp.Content))
	t.state = stateDone
	return resp.Content, nil
}

// compose builds the request message list: system prompt plus the turn's
// messages, trimmed to the token budget when a window is configured.
func (t *TurnStream) compose(system string) []types.Message {
	trimmed := t.engine.window.Trim(t.updated)
	messages := make([]types.Message, 0, len(trimmed)+1)
	messages = append(messages, types.SystemMessage(system))
	messages = append(messages, trimmed...)
	return messages
}
