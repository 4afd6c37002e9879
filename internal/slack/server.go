// Package slack exposes the planner over Slack's Events and slash-command
// APIs. Slash commands are acknowledged within Slack's 3-second window and the
// real answer is posted to the response_url from a goroutine.
package slack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// Responder turns one command text into a reply. The Telegram bot's message
// handler satisfies this when built without a push sender.
type Responder interface {
	HandleMessage(text string) string
}

// Server handles Slack HTTP callbacks.
type Server struct {
	signingSecret string
	responder     Responder
	http          *http.Client

	// now is swappable for signature-window tests
	now func() time.Time
}

func NewServer(signingSecret string, responder Responder) *Server {
	return &Server{
		signingSecret: signingSecret,
		responder:     responder,
		http:          &http.Client{Timeout: 15 * time.Second},
		now:           time.Now,
	}
}

// Routes registers the Slack endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/slack/events", s.handleEvents)
	mux.HandleFunc("/slack/command", s.handleCommand)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
}

// verifySignature checks X-Slack-Signature against the signing secret.
// Requests older than five minutes are rejected to block replays.
func (s *Server) verifySignature(r *http.Request, body []byte) bool {
	if s.signingSecret == "" {
		log.Println("⚠️ SLACK_SIGNING_SECRET unset, accepting unsigned request")
		return true
	}

	tsHeader := r.Header.Get("X-Slack-Request-Timestamp")
	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return false
	}
	if diff := s.now().Unix() - ts; diff > 300 || diff < -300 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", tsHeader, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(r.Header.Get("X-Slack-Signature")))
}

// handleEvents answers the url_verification challenge and acknowledges
// event callbacks. Mentions get a canned reply; planning runs via the
// slash command.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	if !s.verifySignature(r, body) {
		http.Error(w, "bad signature", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if payload.Type == "url_verification" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": payload.Challenge})
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleCommand processes the /goblin slash command.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	if !s.verifySignature(r, body) {
		http.Error(w, "bad signature", http.StatusUnauthorized)
		return
	}

	// Re-attach the body so ParseForm can read it.
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	text := r.PostForm.Get("text")
	responseURL := r.PostForm.Get("response_url")
	user := r.PostForm.Get("user_name")

	if text == "ping" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response_type": "ephemeral", "text": "🏓 pong"})
		return
	}

	log.Printf("Slack command from %s: %s", user, text)

	// Ack immediately; the planner can take longer than Slack's timeout.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"response_type": "ephemeral",
		"text":          "🧠 Goblin is thinking...",
	})

	go s.respondLater(responseURL, text)
}

func (s *Server) respondLater(responseURL, text string) {
	reply := s.responder.HandleMessage(text)
	if reply == "" || responseURL == "" {
		return
	}

	payload, _ := json.Marshal(map[string]string{
		"response_type": "in_channel",
		"text":          reply,
	})
	resp, err := s.http.Post(responseURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("❌ Slack response_url post failed: %v", err)
		return
	}
	resp.Body.Close()
}
