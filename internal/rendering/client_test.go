package rendering

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/familyjustice/orders-api/internal/services"
)

func TestClientRender(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rs/render" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["templateName"] != "FL-ORD-C21-blank-order-directions-eng" {
			t.Errorf("unexpected template %v", body["templateName"])
		}

		_ = json.NewEncoder(w).Encode(map[string]string{
			"url":       "https://dm-store/doc-1",
			"binaryUrl": "https://dm-store/doc-1/binary",
			"hashToken": "abc123",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token-123")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	doc, err := client.Render(context.Background(), services.RenderRequest{
		Template: "FL-ORD-C21-blank-order-directions-eng",
		FileName: "Blank_Order_Directions_C21.pdf",
		Data:     map[string]any{"caseId": "1658"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.URL != "https://dm-store/doc-1" || doc.Hash != "abc123" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestClientRenderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "template not found", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Render(context.Background(), services.RenderRequest{Template: "unknown"})
	if !errors.Is(err, ErrRenderRejected) {
		t.Fatalf("expected ErrRenderRejected, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("   ", "token"); err == nil {
		t.Fatal("expected error for blank base URL")
	}
}
