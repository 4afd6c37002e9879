package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Client talks to the Telegram Bot API for a single authorized chat.
type Client struct {
	token      string
	authChatID int64
	baseURL    string
	http       *http.Client
}

func NewClient(token string, authChatID int64) *Client {
	return &Client{
		token:      token,
		authChatID: authChatID,
		baseURL:    "https://api.telegram.org",
		http:       &http.Client{Timeout: 70 * time.Second},
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// Notify sends a plain Markdown message to the configured chat.
func (c *Client) Notify(text string) {
	if c.token == "" || c.authChatID == 0 {
		log.Println("Warning: Telegram credentials missing, skipping notification")
		return
	}
	if text == "" {
		return
	}

	payload := map[string]any{
		"chat_id":    c.authChatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.methodURL("sendMessage"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("Telegram Alert Failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Telegram API Error: Status %s", resp.Status)
	}
}

// AnswerCallback acknowledges a button tap so the client stops its spinner.
func (c *Client) AnswerCallback(callbackID, text string) {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}

	body, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.methodURL("answerCallbackQuery"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("Telegram answerCallbackQuery failed: %v", err)
		return
	}
	resp.Body.Close()
}
