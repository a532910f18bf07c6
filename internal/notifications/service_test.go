package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortfactory/internal/config"
	"shortfactory/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.Topic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventPublished, notifications.Payload{"title": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "item approved",
			event:         notifications.EventItemApproved,
			payload:       notifications.Payload{"conceptText": "Three morning habits that changed my life"},
			expectTitle:   "shortfactory - Approved",
			expectMessage: "✅ Approved: Three morning habits that changed my life",
			expectTags:    "shortfactory,approved",
		},
		{
			name:  "published",
			event: notifications.EventPublished,
			payload: notifications.Payload{
				"title": "Three Morning Habits",
				"url":   "https://youtube.com/shorts/abc123",
			},
			expectTitle:   "shortfactory - Published",
			expectMessage: "\U0001F3AC Published: Three Morning Habits\nhttps://youtube.com/shorts/abc123",
			expectTags:    "shortfactory,published",
		},
		{
			name:  "item failed",
			event: notifications.EventItemFailed,
			payload: notifications.Payload{
				"stage": "assembling",
				"error": "ffmpeg exited with status 1",
			},
			expectTitle:    "shortfactory - Failed",
			expectMessage:  "❌ Failed at assembling: ffmpeg exited with status 1",
			expectTags:     "shortfactory,failed,alert",
			expectPriority: "high",
		},
		{
			name:  "pipeline drained",
			event: notifications.EventPipelineDrained,
			payload: notifications.Payload{
				"processed": "12",
				"failed":    "1",
				"duration":  "4m32s",
			},
			expectTitle:   "shortfactory - Drain Complete",
			expectMessage: "Drain complete: 12 processed, 1 failed in 4m32s",
			expectTags:    "shortfactory,drain,completed",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "dashboard sync",
				"error":   "request timed out",
			},
			expectTitle:    "shortfactory - Error",
			expectMessage:  "❌ Error with dashboard sync: request timed out",
			expectTags:     "shortfactory,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.Topic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.Topic = server.URL

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventScriptingComplete,
		notifications.EventNarrationComplete,
		notifications.EventClipsSourced,
		notifications.EventAssemblyComplete,
		notifications.EventCaptioningComplete,
		notifications.EventMetadataReady,
		notifications.EventStageRetrying,
	}

	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}
