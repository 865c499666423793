package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookNotifier_PostsUpdate(t *testing.T) {
	var received ChapterUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL)
	if err != nil {
		t.Fatalf("new webhook notifier: %v", err)
	}

	update := ChapterUpdate{TitleID: "alpha", Title: "Alpha", ChapterTitle: "Chapter 11"}
	if err := notifier.NotifyChapter(context.Background(), update); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if received != update {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestWebhookNotifier_NonSuccessStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL)
	if err != nil {
		t.Fatalf("new webhook notifier: %v", err)
	}
	if err := notifier.NotifyChapter(context.Background(), ChapterUpdate{TitleID: "alpha"}); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	if _, err := NewWebhookNotifier("   "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
