package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	"github.com/honeycarbs/hhnotify/internal/domain/status"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

type fakeAuth struct {
	code string
	err  error
}

func (f *fakeAuth) AuthCodeURL() string {
	return "https://hh.ru/oauth/authorize?response_type=code&client_id=client"
}

func (f *fakeAuth) Exchange(_ context.Context, code string) (*domain.Credential, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Credential{AccessToken: "a", RefreshToken: "r"}, nil
}

type fakePoller struct {
	calls int
	err   error
}

func (f *fakePoller) PollAndNotify(context.Context) (responses.Report, error) {
	f.calls++
	return responses.Report{CycleID: "c"}, f.err
}

type fakeReactions struct {
	messageID int64
	code      string
	err       error
}

func (f *fakeReactions) ApplyReaction(_ context.Context, messageID int64, code string) error {
	f.messageID, f.code = messageID, code
	return f.err
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Host = "127.0.0.1"
	cfg.Port = "3001"
	cfg.HH.ClientID = "client"
	cfg.HH.RedirectURI = "http://localhost:3001/callback"
	return cfg
}

type fixture struct {
	auth      *fakeAuth
	poller    *fakePoller
	reactions *fakeReactions
	handler   http.Handler
}

func newFixture(cfg config.Config) *fixture {
	f := &fixture{auth: &fakeAuth{}, poller: &fakePoller{}, reactions: &fakeReactions{}}
	f.handler = NewServer(logging.NewNop(), cfg, f.auth, f.poller, f.reactions).Routes()
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestHealthz(t *testing.T) {
	f := newFixture(testConfig())
	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if code != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected response %d %q", code, body)
	}
}

func TestAuthRedirects(t *testing.T) {
	f := newFixture(testConfig())

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://hh.ru/oauth/authorize") {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAuthNotConfigured(t *testing.T) {
	f := newFixture(config.Config{})
	code, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/auth", nil))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
}

func TestCallback(t *testing.T) {
	f := newFixture(testConfig())

	code, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/callback", nil))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code, got %d", code)
	}

	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))
	if code != http.StatusOK || body != "HH Token obtained, responses fetched. Check logs." {
		t.Fatalf("unexpected response %d %q", code, body)
	}
	if f.auth.code != "abc" || f.poller.calls != 1 {
		t.Fatalf("expected exchange and poll, got code=%q polls=%d", f.auth.code, f.poller.calls)
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	f := newFixture(testConfig())
	f.auth.err = errors.New(`oauth2: "invalid_grant"`)

	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))
	if code != http.StatusInternalServerError || body != "Error exchanging code for token" {
		t.Fatalf("unexpected response %d %q", code, body)
	}
	if f.poller.calls != 0 {
		t.Fatalf("poll must not run after failed exchange")
	}
}

func TestResponses(t *testing.T) {
	f := newFixture(testConfig())
	f.poller.err = errors.New("no token")

	code, body := f.do(t, httptest.NewRequest(http.MethodGet, "/responses", nil))
	if code != http.StatusOK || body != "Check logs for details." {
		t.Fatalf("unexpected response %d %q", code, body)
	}
	if f.poller.calls != 1 {
		t.Fatalf("expected one poll, got %d", f.poller.calls)
	}
}

func reactionRequest(payload string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/reaction", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestReaction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		err     error
		want    int
	}{
		{"applied", `{"type":"reaction","event":"new","message_id":5,"code":"✅","user_id":1}`, nil, http.StatusOK},
		{"unsupported event", `{"type":"reaction","event":"delete","message_id":5,"code":"✅"}`, nil, http.StatusBadRequest},
		{"unsupported type", `{"type":"message","event":"new","message_id":5}`, nil, http.StatusBadRequest},
		{"malformed", `{`, nil, http.StatusBadRequest},
		{"unknown content", `{"type":"reaction","event":"new","message_id":5,"code":"✅"}`, status.ErrUnrecognizedContent, http.StatusBadRequest},
		{"unknown code", `{"type":"reaction","event":"new","message_id":5,"code":"🔥"}`, status.ErrUnknownReaction, http.StatusBadRequest},
		{"upstream failure", `{"type":"reaction","event":"new","message_id":5,"code":"✅"}`, errors.New("pachca down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(testConfig())
			f.reactions.err = tt.err

			code, body := f.do(t, reactionRequest(tt.payload))
			if code != tt.want {
				t.Fatalf("expected %d, got %d (%q)", tt.want, code, body)
			}
			if tt.want == http.StatusOK {
				if body != "Message content updated." || f.reactions.messageID != 5 || f.reactions.code != "✅" {
					t.Fatalf("unexpected result %q %+v", body, f.reactions)
				}
			}
		})
	}
}

func TestReactionSignature(t *testing.T) {
	cfg := testConfig()
	cfg.Pachca.WebhookSecret = "s3cret"
	f := newFixture(cfg)

	payload := `{"type":"reaction","event":"new","message_id":9,"code":"👀"}`

	code, _ := f.do(t, reactionRequest(payload))
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", code)
	}

	req := reactionRequest(payload)
	req.Header.Set(signatureHeader, "deadbeef")
	if code, _ := f.do(t, req); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signature, got %d", code)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	fmt.Fprint(mac, payload)
	req = reactionRequest(payload)
	req.Header.Set(signatureHeader, hex.EncodeToString(mac.Sum(nil)))
	if code, body := f.do(t, req); code != http.StatusOK {
		t.Fatalf("expected 200 for valid signature, got %d %q", code, body)
	}
	if f.reactions.messageID != 9 {
		t.Fatalf("expected body to reach the handler, got %+v", f.reactions)
	}
}
