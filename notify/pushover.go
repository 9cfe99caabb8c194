// Package notify delivers push notifications through Pushover. Delivery is
// best-effort: callers treat every failure as noise, never as a reason to
// interrupt a conversation.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kmalhotra18/Career-Conversations/utils"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

// Notifier is the outbound notification channel the tool handlers use.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Pushover posts messages to the Pushover API.
type Pushover struct {
	token    string
	user     string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   utils.Logger
}

// Option configures a Pushover client.
type Option func(*Pushover)

func WithEndpoint(endpoint string) Option {
	return func(p *Pushover) { p.endpoint = endpoint }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(p *Pushover) { p.client = hc }
}

func WithLogger(logger utils.Logger) Option {
	return func(p *Pushover) { p.logger = logger }
}

func NewPushover(token, user string, options ...Option) *Pushover {
	p := &Pushover{
		token:    token,
		user:     user,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		// Pushover asks clients to stay around 2 messages per second.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		logger:  utils.NewLogger(utils.LogLevelWarn),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Send posts one message. A missing credential pair or a transport failure
// comes back as an error; it is up to the caller to swallow it.
func (p *Pushover) Send(ctx context.Context, message string) error {
	if p.token == "" || p.user == "" {
		return fmt.Errorf("pushover credentials not configured")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.user)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}

	p.logger.Debug("Notification delivered", "bytes", len(message))
	return nil
}
