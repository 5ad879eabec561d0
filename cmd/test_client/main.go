package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type options struct {
	Addr          string `env:"HHNOTIFY_ADDR" envDefault:"http://localhost:3001"`
	WebhookSecret string `env:"PACHCA_WEBHOOK_SECRET"`

	// reaction test runs only when a real message id is given
	MessageID int64  `env:"TEST_MESSAGE_ID"`
	Reaction  string `env:"TEST_REACTION" envDefault:"👀"`
}

func main() {
	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatalf("Failed to read options: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: time.Minute}
	base := strings.TrimSuffix(opts.Addr, "/")

	testHealth(ctx, client, base)
	testPoll(ctx, client, base)
	testUnsupportedEvent(ctx, client, base, opts.WebhookSecret)
	if opts.MessageID != 0 {
		testReaction(ctx, client, base, opts)
	}

	fmt.Println("\nAll tests completed")
}

func testHealth(ctx context.Context, client *http.Client, base string) {
	fmt.Println("\nTEST: healthz")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/healthz", nil)
	check(client, req, http.StatusOK)
}

func testPoll(ctx context.Context, client *http.Client, base string) {
	fmt.Println("\nTEST: responses")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/responses", nil)
	check(client, req, http.StatusOK)
}

func testUnsupportedEvent(ctx context.Context, client *http.Client, base, secret string) {
	fmt.Println("\nTEST: reaction (unsupported event)")
	req, err := newWebhookRequest(ctx, base, secret, webhookEvent{Type: "reaction", Event: "delete"})
	if err != nil {
		log.Printf("build request: %v", err)
		return
	}
	check(client, req, http.StatusBadRequest)
}

func testReaction(ctx context.Context, client *http.Client, base string, opts options) {
	fmt.Println("\nTEST: reaction")
	req, err := newWebhookRequest(ctx, base, opts.WebhookSecret, webhookEvent{
		Type:      "reaction",
		Event:     "new",
		MessageID: opts.MessageID,
		Code:      opts.Reaction,
	})
	if err != nil {
		log.Printf("build request: %v", err)
		return
	}
	check(client, req, http.StatusOK)
}

type webhookEvent struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	MessageID int64  `json:"message_id,omitempty"`
	Code      string `json:"code,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
}

// newWebhookRequest builds a Pachca-style webhook call, signed when secret is set
func newWebhookRequest(ctx context.Context, base, secret string, ev webhookEvent) (*http.Request, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/reaction", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		req.Header.Set("Pachca-Signature", hex.EncodeToString(mac.Sum(nil)))
	}
	return req, nil
}

func check(client *http.Client, req *http.Request, want int) bool {
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("%s %s failed: %v", req.Method, req.URL.Path, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Printf("  %d %s\n", resp.StatusCode, strings.TrimSpace(string(body)))

	if resp.StatusCode != want {
		log.Printf("%s %s: expected %d", req.Method, req.URL.Path, want)
		return false
	}
	fmt.Printf("%s passed\n", req.URL.Path)
	return true
}
