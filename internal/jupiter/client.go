package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/models"
)

const (
	defaultBaseURL  = "https://quote-api.jup.ag/v6"
	defaultPriceURL = "https://price.jup.ag/v6/price"
)

// Well-known mints the bot quotes against. Unknown symbols fall through to
// the caller as an error rather than a guess.
var mints = map[string]string{
	"SOL":     "So11111111111111111111111111111111111111112",
	"USDC":    "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT":    "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"JITOSOL": "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn",
	"MSOL":    "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",
	"BONK":    "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
}

var tokenDecimals = map[string]int32{
	"SOL":     9,
	"JITOSOL": 9,
	"MSOL":    9,
	"USDC":    6,
	"USDT":    6,
	"BONK":    5,
}

// Client talks to the Jupiter v6 quote and price APIs.
type Client struct {
	baseURL  string
	priceURL string
	apiKey   string
	http     *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:  defaultBaseURL,
		priceURL: defaultPriceURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type quoteResponse struct {
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	RoutePlan      []struct {
		SwapInfo struct {
			Label string `json:"label"`
		} `json:"swapInfo"`
	} `json:"routePlan"`
}

// Quote fetches a swap quote. Amount is in the input token's own units
// (SOL, not lamports); symbols are case-insensitive.
func (c *Client) Quote(ctx context.Context, inToken, outToken string, amount decimal.Decimal) (*models.SwapQuote, error) {
	inSym := strings.ToUpper(strings.TrimSpace(inToken))
	outSym := strings.ToUpper(strings.TrimSpace(outToken))

	inMint, ok := mints[inSym]
	if !ok {
		return nil, fmt.Errorf("unknown token %q", inToken)
	}
	outMint, ok := mints[outSym]
	if !ok {
		return nil, fmt.Errorf("unknown token %q", outToken)
	}

	inDec := tokenDecimals[inSym]
	rawAmount := amount.Shift(inDec).IntPart()
	if rawAmount <= 0 {
		return nil, fmt.Errorf("amount %s too small to quote", amount)
	}

	q := url.Values{}
	q.Set("inputMint", inMint)
	q.Set("outputMint", outMint)
	q.Set("amount", fmt.Sprintf("%d", rawAmount))
	q.Set("slippageBps", "50")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jupiter error %d: %s", resp.StatusCode, string(body))
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	outRaw, err := decimal.NewFromString(parsed.OutAmount)
	if err != nil {
		return nil, fmt.Errorf("bad outAmount %q: %w", parsed.OutAmount, err)
	}
	impact, err := decimal.NewFromString(parsed.PriceImpactPct)
	if err != nil {
		impact = decimal.Zero
	}

	route := make([]string, 0, len(parsed.RoutePlan))
	for _, hop := range parsed.RoutePlan {
		route = append(route, hop.SwapInfo.Label)
	}

	return &models.SwapQuote{
		InToken:        inSym,
		OutToken:       outSym,
		InAmount:       amount,
		OutAmount:      outRaw.Shift(-tokenDecimals[outSym]),
		PriceImpactPct: impact,
		Route:          route,
	}, nil
}

type priceResponse struct {
	Data map[string]struct {
		Price json.Number `json:"price"`
	} `json:"data"`
}

// Price fetches current USD prices for the given token symbols. Symbols the
// API does not know are simply absent from the result, not an error.
func (c *Client) Price(ctx context.Context, tokens []string) (map[string]decimal.Decimal, error) {
	syms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if s := strings.ToUpper(strings.TrimSpace(t)); s != "" {
			syms = append(syms, s)
		}
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("no tokens to price")
	}

	q := url.Values{}
	q.Set("ids", strings.Join(syms, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.priceURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jupiter error %d: %s", resp.StatusCode, string(body))
	}

	var parsed priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(syms))
	for _, sym := range syms {
		info, ok := parsed.Data[sym]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(info.Price.String())
		if err != nil {
			continue
		}
		prices[sym] = price
	}
	return prices, nil
}
