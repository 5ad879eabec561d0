package pachca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", Token: "bot"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestSendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer bot" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var body sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Message.EntityType != "discussion" || body.Message.EntityID != 7431593 || body.Message.Content != "hello" {
			t.Errorf("unexpected body %+v", body)
		}
		fmt.Fprint(w, `{"data":{"id":555,"entity_type":"discussion","entity_id":7431593,"content":"hello"}}`)
	})

	msg, err := client.SendMessage(context.Background(), "discussion", 7431593, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != 555 {
		t.Fatalf("expected id 555, got %d", msg.ID)
	}
}

func TestCreateThread(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages/555/thread" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"id":77,"chat_id":1,"message_id":555}}`)
	})

	thread, err := client.CreateThread(context.Background(), 555)
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if thread.ID != 77 {
		t.Fatalf("expected thread 77, got %d", thread.ID)
	}
}

func TestGetAndUpdateMessage(t *testing.T) {
	var updated string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"data":{"id":9,"content":"🟢 **New** hi (hh.ru)"}}`)
		case http.MethodPut:
			var body updateMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode: %v", err)
			}
			updated = body.Content
			fmt.Fprint(w, `{"data":{"id":9}}`)
		}
	})

	msg, err := client.GetMessage(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if msg.Content != "🟢 **New** hi (hh.ru)" {
		t.Fatalf("unexpected content %q", msg.Content)
	}

	if err := client.UpdateMessage(context.Background(), 9, "✅ **Принят** hi (hh.ru)"); err != nil {
		t.Fatalf("UpdateMessage: %v", err)
	}
	if updated != "✅ **Принят** hi (hh.ru)" {
		t.Fatalf("unexpected update body %q", updated)
	}
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors":[{"key":"content"}]}`)
	})

	_, err := client.SendMessage(context.Background(), "discussion", 1, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 APIError, got %v", err)
	}
}
