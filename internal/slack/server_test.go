package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

type echoResponder struct {
	mu    sync.Mutex
	calls []string
}

func (e *echoResponder) HandleMessage(text string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, text)
	return "plan for: " + text
}

func sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func signedRequest(t *testing.T, secret, path, contentType string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	ts := fmt.Sprintf("%d", time.Now().Unix())
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sign(secret, ts, body))
	return req
}

func TestEvents_URLVerification(t *testing.T) {
	s := NewServer("s3cret", &echoResponder{})

	body := []byte(`{"type":"url_verification","challenge":"c-123"}`)
	rec := httptest.NewRecorder()
	s.handleEvents(rec, signedRequest(t, "s3cret", "/slack/events", "application/json", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["challenge"] != "c-123" {
		t.Errorf("challenge not echoed: %v", resp)
	}
}

func TestEvents_BadSignatureRejected(t *testing.T) {
	s := NewServer("s3cret", &echoResponder{})

	body := []byte(`{"type":"event_callback"}`)
	req := signedRequest(t, "wrong-secret", "/slack/events", "application/json", body)
	rec := httptest.NewRecorder()
	s.handleEvents(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad signature, got %d", rec.Code)
	}
}

func TestEvents_StaleTimestampRejected(t *testing.T) {
	s := NewServer("s3cret", &echoResponder{})
	s.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	body := []byte(`{"type":"event_callback"}`)
	rec := httptest.NewRecorder()
	s.handleEvents(rec, signedRequest(t, "s3cret", "/slack/events", "application/json", body))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for stale timestamp, got %d", rec.Code)
	}
}

func TestCommand_AcksAndRespondsLater(t *testing.T) {
	done := make(chan string, 1)
	respSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		done <- payload["text"]
	}))
	defer respSrv.Close()

	responder := &echoResponder{}
	s := NewServer("s3cret", responder)

	form := url.Values{}
	form.Set("text", "plan quiet yield")
	form.Set("response_url", respSrv.URL)
	form.Set("user_name", "degen")
	body := []byte(form.Encode())

	rec := httptest.NewRecorder()
	s.handleCommand(rec, signedRequest(t, "s3cret", "/slack/command", "application/x-www-form-urlencoded", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected immediate 200 ack, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "thinking") {
		t.Errorf("ack should mention thinking, got %s", rec.Body.String())
	}

	select {
	case text := <-done:
		if text != "plan for: plan quiet yield" {
			t.Errorf("unexpected deferred reply %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deferred response never posted")
	}
}

func TestCommand_Ping(t *testing.T) {
	s := NewServer("s3cret", &echoResponder{})

	form := url.Values{}
	form.Set("text", "ping")
	body := []byte(form.Encode())

	rec := httptest.NewRecorder()
	s.handleCommand(rec, signedRequest(t, "s3cret", "/slack/command", "application/x-www-form-urlencoded", body))

	if !strings.Contains(rec.Body.String(), "pong") {
		t.Errorf("ping should pong, got %s", rec.Body.String())
	}
}
