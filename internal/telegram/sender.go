package telegram

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

// Button represents an inline keyboard button.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// SendInteractive sends a message with inline buttons, one row per slice.
func (c *Client) SendInteractive(text string, rows ...[]Button) {
	if c.token == "" || c.authChatID == 0 {
		return
	}

	keyboardPayload := map[string]any{
		"inline_keyboard": rows,
	}
	keyboardJSON, _ := json.Marshal(keyboardPayload)

	data := map[string]any{
		"chat_id":      c.authChatID,
		"text":         text,
		"parse_mode":   "Markdown",
		"reply_markup": string(keyboardJSON),
	}

	jsonData, _ := json.Marshal(data)
	resp, err := c.http.Post(c.methodURL("sendMessage"), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		log.Printf("Telegram Error: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Telegram API Error: Status %s", resp.Status)
	}
}
