package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/honeycarbs/hhnotify/internal/domain/status"
)

const maxWebhookBody = 1 << 20

type reactionEvent struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	MessageID int64  `json:"message_id"`
	Code      string `json:"code"`
	UserID    int64  `json:"user_id"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if s.config.HH.ClientID == "" || s.config.HH.RedirectURI == "" {
		writeText(w, http.StatusInternalServerError, "CLIENT_ID or REDIRECT_URI is not configured")
		return
	}
	http.Redirect(w, r, s.auth.AuthCodeURL(), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.logger.Warn("callback without authorization code")
		writeText(w, http.StatusBadRequest, "Authorization code is missing")
		return
	}

	if _, err := s.auth.Exchange(r.Context(), code); err != nil {
		s.logger.Error("failed to exchange authorization code", "err", err)
		writeText(w, http.StatusInternalServerError, "Error exchanging code for token")
		return
	}

	if _, err := s.poller.PollAndNotify(r.Context()); err != nil {
		s.logger.Warn("poll after authorization failed", "err", err)
	}
	writeText(w, http.StatusOK, "HH Token obtained, responses fetched. Check logs.")
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	report, err := s.poller.PollAndNotify(r.Context())
	if err != nil {
		s.logger.Warn("manual poll failed", "cycle_id", report.CycleID, "err", err)
	}
	writeText(w, http.StatusOK, "Check logs for details.")
}

func (s *Server) handleReaction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var ev reactionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.logger.Warn("malformed webhook payload", "err", err)
		writeText(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if ev.Type != "reaction" || ev.Event != "new" {
		writeText(w, http.StatusBadRequest, "Unsupported webhook type or event")
		return
	}

	log := s.logger.With("message_id", ev.MessageID, "code", ev.Code, "user_id", ev.UserID)
	err = s.reactions.ApplyReaction(r.Context(), ev.MessageID, ev.Code)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Message content updated.")
	case errors.Is(err, status.ErrUnrecognizedContent):
		log.Warn("reaction on message with unknown source")
		writeText(w, http.StatusBadRequest, "Content pattern not recognized")
	case errors.Is(err, status.ErrUnknownReaction):
		log.Warn("unsupported reaction code")
		writeText(w, http.StatusBadRequest, "Unsupported reaction code")
	default:
		log.Error("failed to process reaction", "err", err)
		writeText(w, http.StatusInternalServerError, "Error processing reaction")
	}
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}
