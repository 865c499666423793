package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ChapterUpdate describes a newly discovered chapter on a favorite title.
type ChapterUpdate struct {
	TitleID      string `json:"title_id"`
	Title        string `json:"title"`
	ChapterTitle string `json:"chapter_title"`
	ChapterURL   string `json:"chapter_url,omitempty"`
}

type Notifier interface {
	NotifyChapter(ctx context.Context, update ChapterUpdate) error
}

type NoopNotifier struct{}

func (n NoopNotifier) NotifyChapter(_ context.Context, _ ChapterUpdate) error {
	return nil
}

// WebhookNotifier posts chapter updates as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &WebhookNotifier{
		url: trimmed,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebhookNotifier) NotifyChapter(ctx context.Context, update ChapterUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal chapter update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send chapter notification: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", res.StatusCode)
	}

	return nil
}
