package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shortfactory/internal/config"
)

const userAgent = "shortfactory-go/0.1.0"

// suppressed events are pipeline internals too chatty for a push
// notification; Publish is a no-op for these regardless of transport.
var suppressed = map[Event]bool{
	EventScriptingComplete:  true,
	EventNarrationComplete:  true,
	EventClipsSourced:       true,
	EventAssemblyComplete:   true,
	EventCaptioningComplete: true,
	EventMetadataReady:      true,
	EventStageRetrying:      true,
}

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.Topic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if suppressed[event] {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventItemApproved:
		return message{
			title: "shortfactory - Approved",
			body:  fmt.Sprintf("✅ Approved: %s", payload.get("conceptText")),
			tags:  []string{"shortfactory", "approved"},
		}, true
	case EventPublished:
		body := fmt.Sprintf("\U0001F3AC Published: %s", payload.get("title"))
		if url := payload.get("url"); url != "" {
			body = fmt.Sprintf("%s\n%s", body, url)
		}
		return message{
			title: "shortfactory - Published",
			body:  body,
			tags:  []string{"shortfactory", "published"},
		}, true
	case EventItemFailed:
		return message{
			title:    "shortfactory - Failed",
			body:     fmt.Sprintf("❌ Failed at %s: %s", payload.get("stage"), payload.get("error")),
			tags:     []string{"shortfactory", "failed", "alert"},
			priority: "high",
		}, true
	case EventPipelineDrained:
		return message{
			title: "shortfactory - Drain Complete",
			body: fmt.Sprintf("Drain complete: %s processed, %s failed in %s",
				payload.get("processed"), payload.get("failed"), payload.get("duration")),
			tags: []string{"shortfactory", "drain", "completed"},
		}, true
	case EventError:
		contextLabel := payload.get("context")
		body := "❌ Error"
		if contextLabel != "" {
			body = fmt.Sprintf("%s with %s", body, contextLabel)
		}
		body = fmt.Sprintf("%s: %s", body, payload.get("error"))
		return message{
			title:    "shortfactory - Error",
			body:     body,
			tags:     []string{"shortfactory", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "shortfactory - Test",
			body:     "\U0001F9EA Notification system test",
			tags:     []string{"shortfactory", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
