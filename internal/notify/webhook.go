package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned by Send when no webhook URL is set
var ErrNotConfigured = errors.New("notification webhook is not configured")

// maxContentLength is the chat service's message limit
const maxContentLength = 2000

// Field is a labelled value appended to a message
type Field struct {
	Name  string
	Value string
}

// Message is a notification before formatting
type Message struct {
	Title  string
	Body   string
	Fields []Field
}

// Format renders the message as chat markdown
func (m Message) Format() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString("**")
		b.WriteString(m.Title)
		b.WriteString("**\n")
	}
	b.WriteString(m.Body)
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "\n**%s:** %s", f.Name, f.Value)
	}
	return truncate(b.String(), maxContentLength)
}

// truncate shortens text to at most limit bytes, cutting on a rune boundary
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit - len("...")
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// Webhook posts messages to a chat webhook
type Webhook struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewWebhook creates a webhook notifier. An empty url yields a notifier
// whose Send returns ErrNotConfigured.
func NewWebhook(url string, timeout time.Duration, log zerolog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "webhook").Logger(),
	}
}

// Configured reports whether a webhook URL is set
func (w *Webhook) Configured() bool {
	return w != nil && w.url != ""
}

// Send posts {"content": text}. There is no retry.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	if !w.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"content": msg.Format()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	w.log.Debug().Str("title", msg.Title).Msg("Notification delivered")
	return nil
}
