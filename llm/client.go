// Package llm implements the primary model service: a chat-completions
// client speaking the OpenAI wire format over plain HTTP, with support for
// tool calling and incremental token streaming.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Finish reasons signaled by the model service.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool_calls"
)

// ChatRequest describes one completion request.
type ChatRequest struct {
	Model       string
	Messages    []types.Message
	Tools       []types.Tool
	Temperature *float64
	MaxTokens   *int
}

// ChatResponse is a complete, non-streaming completion.
type ChatResponse struct {
	Content      string
	FinishReason string
	ToolCalls    []types.ToolCall
}

// StreamDelta is one increment of a streaming completion. Content carries a
// token fragment; a non-empty FinishReason marks the terminal delta, with
// ToolCalls fully assembled when the model elected to call tools.
type StreamDelta struct {
	Content      string
	FinishReason string
	ToolCalls    []types.ToolCall
}

// Stream is an incremental sequence of completion deltas. Recv returns
// io.EOF once the stream is exhausted.
type Stream interface {
	Recv() (*StreamDelta, error)
	io.Closer
}

// ModelService is the surface the conversation engine depends on, kept
// narrow so tests can substitute a stub.
type ModelService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStream(ctx context.Context, req *ChatRequest) (Stream, error)
}

// Client is the HTTP chat-completions client.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   utils.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = timeout }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

func WithLogger(logger utils.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func NewClient(apiKey string, options ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   utils.NewLogger(utils.LogLevelWarn),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// chatCompletionRequest is the request body on the wire.
type chatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Tools       []types.Tool    `json:"tools,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

func (c *Client) post(ctx context.Context, req *ChatRequest, stream bool) (*http.Response, error) {
	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Stream:      stream,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	reqJSON, err := json.Marshal(body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to marshal request", err)
	}
	c.logger.Debug("Sending completion request", "stream", stream, "messages", len(req.Messages), "tools", len(req.Tools))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("API error", "status", resp.StatusCode, "body", string(respBody))
		errType := ErrorTypeAPI
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			errType = ErrorTypeAuthentication
		}
		return nil, NewLLMError(errType, fmt.Sprintf("API error: status code %d", resp.StatusCode), nil)
	}

	return resp, nil
}

// Chat performs a single blocking completion request.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content   string           `json:"content"`
				ToolCalls []types.ToolCall `json:"tool_calls"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, NewLLMError(ErrorTypeResponse, "empty response from API", nil)
	}

	choice := parsed.Choices[0]
	return &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		ToolCalls:    choice.Message.ToolCalls,
	}, nil
}

// ChatStream requests a streaming completion and returns the delta stream.
// The caller owns the stream and must Close it.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return &chatStream{
		body:    resp.Body,
		decoder: NewSSEDecoder(resp.Body),
		logger:  c.logger,
	}, nil
}
