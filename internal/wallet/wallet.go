package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"goblin_bot/internal/models"
	"goblin_bot/internal/planner"
)

// Client reads wallet state over Solana JSON-RPC.
type Client struct {
	rpcURL  string
	address string
	http    *http.Client
}

func NewClient(rpcURL, address string) *Client {
	return &Client{
		rpcURL:  rpcURL,
		address: address,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type balanceResponse struct {
	Result struct {
		Value int64 `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Snapshot fetches the current balance and returns it in both units.
func (c *Client) Snapshot(ctx context.Context) (models.WalletSnapshot, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getBalance",
		Params:  []any{c.address},
	})
	if err != nil {
		return models.WalletSnapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return models.WalletSnapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.WalletSnapshot{}, fmt.Errorf("rpc getBalance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.WalletSnapshot{}, fmt.Errorf("rpc error %d: %s", resp.StatusCode, string(body))
	}

	var parsed balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.WalletSnapshot{}, err
	}
	if parsed.Error != nil {
		return models.WalletSnapshot{}, fmt.Errorf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	return models.WalletSnapshot{
		Lamports:   parsed.Result.Value,
		SOLBalance: planner.FromLamports(parsed.Result.Value),
	}, nil
}

// Address returns the configured wallet address.
func (c *Client) Address() string {
	return c.address
}
