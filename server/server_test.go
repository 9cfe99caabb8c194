package server

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmalhotra18/Career-Conversations/chat"
	"github.com/kmalhotra18/Career-Conversations/eval"
	"github.com/kmalhotra18/Career-Conversations/llm"
	"github.com/kmalhotra18/Career-Conversations/persona"
	"github.com/kmalhotra18/Career-Conversations/tools"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string) error { return nil }

// newTestServer wires a full stack: the chat endpoint backed by a stubbed
// model service and the fail-open evaluator.
func newTestServer(t *testing.T, modelHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	model := httptest.NewServer(modelHandler)
	t.Cleanup(model.Close)

	logger := utils.NewTestLogger()
	p := persona.New("Ada Lovelace", &persona.Documents{Summary: "s", Profile: "p"})
	registry := tools.NewRegistry(noopNotifier{}, logger)
	client := llm.NewClient("test-key", llm.WithEndpoint(model.URL), llm.WithLogger(logger))
	judge := eval.NewGemini("", "gemini-1.5-flash", eval.WithLogger(logger))
	engine := chat.NewEngine(p, client, "gpt-4o-mini", registry, judge, chat.WithLogger(logger))

	srv := httptest.NewServer(New(engine, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// sseEvents parses a text/event-stream body into (event, data) pairs.
func sseEvents(t *testing.T, body *bufio.Reader) [][2]string {
	t.Helper()
	var events [][2]string
	event, data := "", []string{}
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			if event != "" || len(data) > 0 {
				events = append(events, [2]string{event, strings.Join(data, "\n")})
			}
			event, data = "", nil
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	return events
}

func postChat(t *testing.T, srv *httptest.Server, body string) (*http.Response, [][2]string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp, sseEvents(t, bufio.NewReader(resp.Body))
}

func TestChatEndpointStreamsSnapshots(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"there\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	resp, events := postChat(t, srv, `{"message":"hello","history":[]}`)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NotEmpty(t, events)
	var chunks []string
	for _, e := range events {
		if e[0] == "chunk" {
			chunks = append(chunks, e[1])
		}
	}
	assert.Equal(t, []string{"Hi ", "Hi there"}, chunks)

	last := events[len(events)-1]
	assert.Equal(t, "done", last[0])
	assert.Contains(t, last[1], `"reply":"Hi there"`)
	assert.Contains(t, last[1], `"role":"assistant"`)
}

func TestChatEndpointToolTurnYieldsNoChunks(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_9\",\"type\":\"function\",\"function\":{\"name\":\"record_unknown_question\",\"arguments\":\"{\\\"question\\\":\\\"why?\\\"}\"}}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"tool_calls\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	_, events := postChat(t, srv, `{"message":"why?","history":[]}`)

	for _, e := range events {
		assert.NotEqual(t, "chunk", e[0], "tool turns must not stream text")
	}
	last := events[len(events)-1]
	assert.Equal(t, "done", last[0])
	assert.Contains(t, last[1], `"reply":""`)
	assert.Contains(t, last[1], `"tool_call_id":"call_9"`)
}

func TestChatEndpointModelFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, events := postChat(t, srv, `{"message":"hello","history":[]}`)

	require.NotEmpty(t, events)
	assert.Equal(t, "error", events[len(events)-1][0])
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
