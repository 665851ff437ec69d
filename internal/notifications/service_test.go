package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidtext/internal/config"
	"vidtext/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), "/videos/sample.mp4", "local", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop test notification to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), "/videos/sample.mp4", "local", 3)
			},
			expectTitle:   "Vidtext - Run Complete",
			expectMessage: "✅ Extracted: sample.mp4 (local transcription, 3 subtitle entries)",
			expectTags:    "vidtext,run,completed",
		},
		{
			name: "run completed without text",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), "/videos/silent.mp4", "", 0)
			},
			expectTitle:   "Vidtext - Run Complete",
			expectMessage: "✅ Extracted: silent.mp4 (no text recovered)",
			expectTags:    "vidtext,run,completed",
		},
		{
			name: "run failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunFailed(context.Background(), "/videos/broken.mp4", errors.New("cannot write output"))
			},
			expectTitle:    "Vidtext - Run Failed",
			expectMessage:  "❌ Failed: broken.mp4: cannot write output",
			expectTags:     "vidtext,run,failed",
			expectPriority: "high",
		},
		{
			name: "batch started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchStarted(context.Background(), "/videos", 5)
			},
			expectTitle:   "Vidtext - Batch Started",
			expectMessage: "Started processing 5 videos from /videos",
			expectTags:    "vidtext,batch,started",
		},
		{
			name: "batch completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 5, 0, 90*time.Second)
			},
			expectTitle:   "Vidtext - Batch Complete",
			expectMessage: "Batch complete: 5 videos processed in 1m30s",
			expectTags:    "vidtext,batch,completed",
		},
		{
			name: "batch completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 4, 1, 2*time.Minute)
			},
			expectTitle:   "Vidtext - Batch Complete (with errors)",
			expectMessage: "Batch complete: 4 succeeded, 1 failed in 2m0s",
			expectTags:    "vidtext,batch,completed",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("disk full"), "batch")
			},
			expectTitle:    "Vidtext - Error",
			expectMessage:  "❌ Error with batch: disk full",
			expectTags:     "vidtext,error,alert",
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
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
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

func TestNtfyServiceSuppressesDisabledCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Runs = false
	cfg.Notifications.Batches = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyRunCompleted(ctx, "/videos/a.mp4", "local", 1); err != nil {
		t.Fatalf("suppressed run notification errored: %v", err)
	}
	if err := svc.NotifyBatchStarted(ctx, "/videos", 3); err != nil {
		t.Fatalf("suppressed batch notification errored: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "pipeline"); err != nil {
		t.Fatalf("suppressed error notification errored: %v", err)
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
