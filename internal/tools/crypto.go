package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CryptoPriceTool reports the USD market price of a crypto token via
// CoinGecko. An unknown token name is retried through the search
// endpoint before giving up.
type CryptoPriceTool struct {
	BaseURL string
	client  *http.Client
}

func NewCryptoPriceTool() *CryptoPriceTool {
	return &CryptoPriceTool{
		BaseURL: defaultCoinGeckoURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *CryptoPriceTool) Name() string {
	return "crypto_price"
}

func (c *CryptoPriceTool) Description() string {
	return "Get the current USD market price of a crypto token by name (e.g. bitcoin, ethereum)."
}

func (c *CryptoPriceTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"token": map[string]any{
				"type":        "string",
				"description": "The token name or CoinGecko id",
			},
		},
		"required": []string{"token"},
	}
}

func (c *CryptoPriceTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.Token == "" {
		return "", fmt.Errorf("invalid input: token is required")
	}

	token := strings.ToLower(args.Token)

	price, ok, err := c.simplePrice(ctx, token)
	if err != nil {
		return "", err
	}
	if ok {
		return fmt.Sprintf("%s: $%v USD", args.Token, price), nil
	}

	// Exact id unknown: resolve through search and retry.
	coinID, err := c.searchCoin(ctx, args.Token)
	if err != nil {
		return "", err
	}
	if coinID == "" {
		return "", fmt.Errorf("token %q not found", args.Token)
	}

	price, ok, err = c.simplePrice(ctx, coinID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no price available for %q", coinID)
	}

	return fmt.Sprintf("%s: $%v USD (found as %s)", args.Token, price, coinID), nil
}

func (c *CryptoPriceTool) simplePrice(ctx context.Context, coinID string) (float64, bool, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.BaseURL, url.QueryEscape(coinID))

	var data map[string]map[string]float64
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return 0, false, err
	}

	entry, ok := data[coinID]
	if !ok {
		return 0, false, nil
	}
	price, ok := entry["usd"]
	return price, ok, nil
}

func (c *CryptoPriceTool) searchCoin(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s", c.BaseURL, url.QueryEscape(query))

	var data struct {
		Coins []struct {
			ID string `json:"id"`
		} `json:"coins"`
	}
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return "", err
	}

	if len(data.Coins) == 0 {
		return "", nil
	}
	return data.Coins[0].ID, nil
}

func (c *CryptoPriceTool) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch crypto price: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch crypto price: status code %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
