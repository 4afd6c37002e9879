package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Update represents a Telegram Update object (partial schema)
type Update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		Data string `json:"data"`
		From struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

type UpdateResponse struct {
	Ok          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
	ErrorCode   int      `json:"error_code"`
}

// Handler processes inbound chat traffic. HandleMessage receives commands and
// free text alike; HandleCallback receives inline button taps. Empty return
// values are not sent.
type Handler interface {
	HandleMessage(text string) string
	HandleCallback(data string) string
}

// StartListener begins long-polling for updates.
// It runs blocking, so it should be called in a goroutine.
func (c *Client) StartListener(handler Handler) {
	if c.token == "" || c.authChatID == 0 {
		log.Println("Telegram Listener: Credentials missing, disabled.")
		return
	}

	offset := 0
	log.Println("Telegram Listener: Started")

	for {
		url := c.methodURL(fmt.Sprintf("getUpdates?offset=%d&timeout=60", offset))
		resp, err := c.http.Get(url)
		if err != nil {
			log.Printf("Telegram Listener Error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var result UpdateResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			resp.Body.Close()
			log.Printf("Telegram Decode Error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}
		resp.Body.Close()

		if !result.Ok {
			log.Printf("Telegram API Error: %s (Code: %d)", result.Description, result.ErrorCode)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1

			if update.CallbackQuery != nil {
				cq := update.CallbackQuery
				if cq.Message.Chat.ID != c.authChatID {
					log.Printf("⚠️ UNAUTHORIZED CALLBACK ATTEMPT: User %s (ID: %d) data: %s",
						cq.From.Username, cq.From.ID, cq.Data)
					continue
				}
				log.Printf("Callback received: %s", cq.Data)
				c.AnswerCallback(cq.ID, "")
				if response := handler.HandleCallback(cq.Data); response != "" {
					c.Notify(response)
				}
				continue
			}

			if update.Message == nil {
				continue
			}

			// Access Control
			if update.Message.Chat.ID != c.authChatID {
				log.Printf("⚠️ UNAUTHORIZED ACCESS ATTEMPT: User %s (ID: %d) tried: %s",
					update.Message.From.Username, update.Message.Chat.ID, update.Message.Text)
				// We do NOT reply to unauthorized users to avoid leaking bot existence/logic
				continue
			}

			text := strings.TrimSpace(update.Message.Text)
			if text == "" {
				continue
			}
			log.Printf("Message received: %s", text)
			if response := handler.HandleMessage(text); response != "" {
				c.Notify(response)
			}
		}
	}
}
