package llm

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

// streamChunk is one SSE payload of a streaming completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string          `json:"content"`
			ToolCalls []toolCallDelta `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallDelta is a tool call fragment. The model spreads a single call
// over several chunks: the first carries id and function name, the rest
// append argument text. Index identifies the call being extended.
type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type partialToolCall struct {
	id   string
	name string
	args strings.Builder
}

type chatStream struct {
	body    io.ReadCloser
	decoder *SSEDecoder
	logger  utils.Logger

	// Tool call fragments accumulated so far, by call index.
	pending []*partialToolCall
	// Terminal delta held back when its chunk also carried content.
	terminal *StreamDelta
	done     bool
}

// Recv returns the next delta. Content fragments come through as they
// arrive; tool call fragments are absorbed silently and delivered fully
// assembled together with the terminal finish_reason delta. Returns io.EOF
// once the stream is exhausted.
func (s *chatStream) Recv() (*StreamDelta, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.terminal != nil {
		delta := s.terminal
		s.terminal = nil
		return delta, nil
	}

	for s.decoder.Next() {
		data := s.decoder.Data()
		if string(data) == "[DONE]" {
			s.done = true
			return nil, io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, NewLLMError(ErrorTypeResponse, "failed to parse stream chunk", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		for _, tc := range choice.Delta.ToolCalls {
			s.absorb(tc)
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			finish := &StreamDelta{
				FinishReason: *choice.FinishReason,
				ToolCalls:    s.assembled(),
			}
			// Some backends fold the last content fragment into the
			// finish chunk; deliver the content first, the finish next.
			if choice.Delta.Content != "" {
				s.terminal = finish
				return &StreamDelta{Content: choice.Delta.Content}, nil
			}
			return finish, nil
		}

		if choice.Delta.Content != "" {
			return &StreamDelta{Content: choice.Delta.Content}, nil
		}
	}

	if err := s.decoder.Err(); err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "stream read failed", err)
	}
	s.done = true
	return nil, io.EOF
}

// absorb merges a tool call fragment into the pending set.
func (s *chatStream) absorb(tc toolCallDelta) {
	for len(s.pending) <= tc.Index {
		s.pending = append(s.pending, &partialToolCall{})
	}
	p := s.pending[tc.Index]
	if tc.ID != "" {
		p.id = tc.ID
	}
	if tc.Function.Name != "" {
		p.name = tc.Function.Name
	}
	p.args.WriteString(tc.Function.Arguments)
}

// assembled converts the pending fragments into complete tool calls.
func (s *chatStream) assembled() []types.ToolCall {
	if len(s.pending) == 0 {
		return nil
	}
	calls := make([]types.ToolCall, 0, len(s.pending))
	for _, p := range s.pending {
		args := p.args.String()
		if args == "" {
			args = "{}"
		}
		calls = append(calls, types.ToolCall{
			ID:   p.id,
			Type: "function",
			Function: types.FunctionCall{
				Name:      p.name,
				Arguments: json.RawMessage(args),
			},
		})
		s.logger.Debug("Tool call assembled", "id", p.id, "name", p.name)
	}
	return calls
}

func (s *chatStream) Close() error {
	return s.body.Close()
}
