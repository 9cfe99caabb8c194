package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmalhotra18/Career-Conversations/utils"
)

func TestPushoverSend(t *testing.T) {
	var gotToken, gotUser, gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostFormValue("token")
		gotUser = r.PostFormValue("user")
		gotMessage = r.PostFormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushover("tok", "usr", WithEndpoint(srv.URL), WithLogger(utils.NewTestLogger()))
	err := p.Send(context.Background(), "Recording question")
	require.NoError(t, err)

	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, "usr", gotUser)
	assert.Equal(t, "Recording question", gotMessage)
}

func TestPushoverSendWithoutCredentials(t *testing.T) {
	p := NewPushover("", "", WithLogger(utils.NewTestLogger()))
	err := p.Send(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPushoverSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPushover("tok", "usr", WithEndpoint(srv.URL), WithLogger(utils.NewTestLogger()))
	err := p.Send(context.Background(), "anything")
	assert.Error(t, err)
}
