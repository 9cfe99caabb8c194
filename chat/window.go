// Package chat implements the conversation engine: the streaming turn
// state machine, tool-call interception and the evaluation/retry loop.
package chat

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

// perMessageOverhead approximates the wire framing tokens that accompany
// each chat message beyond its content.
const perMessageOverhead = 4

// tokenCounter counts the tokens of a message content string.
type tokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Window trims conversation history to a token budget so a long session
// never outgrows the model context. The newest message always survives.
type Window struct {
	budget  int
	counter tokenCounter
	logger  utils.Logger
}

// NewWindow creates a trimming window for the given model's encoding. A
// model without a known encoding falls back to the gpt-4o tokenizer.
func NewWindow(budget int, model string, logger utils.Logger) (*Window, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("No encoding for model, defaulting to gpt-4o", "model", model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, fmt.Errorf("get default encoding: %v", err)
		}
	}
	return &Window{budget: budget, counter: tiktokenCounter{encoding: encoding}, logger: logger}, nil
}

func newWindowWithCounter(budget int, counter tokenCounter, logger utils.Logger) *Window {
	return &Window{budget: budget, counter: counter, logger: logger}
}

// Trim drops the oldest messages until the remainder fits the budget. The
// input is never mutated; callers own their history. A tool message never
// becomes the first survivor: the wire format requires it to follow the
// assistant message that requested it, so the boundary skips past any tool
// results whose requesting message was dropped.
func (w *Window) Trim(messages []types.Message) []types.Message {
	if w == nil || w.budget <= 0 || len(messages) == 0 {
		return messages
	}

	total := 0
	counts := make([]int, len(messages))
	for i, msg := range messages {
		counts[i] = w.cost(msg)
		total += counts[i]
	}

	start := 0
	for total > w.budget && start < len(messages)-1 {
		total -= counts[start]
		start++
	}
	for start > 0 && start < len(messages)-1 && messages[start].Role == types.RoleTool {
		total -= counts[start]
		start++
	}

	if start > 0 {
		w.logger.Debug("Trimmed history to token budget", "dropped", start, "tokens", total)
	}
	return messages[start:]
}

// cost is the token price of one message: content plus any tool call
// payloads, plus the wire framing overhead.
func (w *Window) cost(msg types.Message) int {
	n := w.counter.Count(msg.Content) + perMessageOverhead
	for _, call := range msg.ToolCalls {
		n += w.counter.Count(call.Function.Name)
		n += w.counter.Count(string(call.Function.Arguments))
	}
	return n
}
