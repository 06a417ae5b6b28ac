package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wondesk/internal/game"
	"wondesk/internal/market"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type assetsPayload struct {
	Assets []market.Quote `json:"assets"`
}

type searchPayload struct {
	Results []market.Quote `json:"results"`
}

type chartPayload struct {
	Range  market.TimeFrame    `json:"range"`
	Points []market.ChartPoint `json:"points"`
}

type historyPayload struct {
	Candles []market.Candle `json:"candles"`
}

type newsPayload struct {
	Items []market.NewsItem `json:"items"`
}

type clickPayload struct {
	Earned int64          `json:"earned"`
	State  game.StateView `json:"state"`
}

func (c *Client) Assets(ctx context.Context, assetType string) ([]market.Quote, error) {
	path := "/v1/assets"
	if assetType != "" {
		path += "?type=" + url.QueryEscape(assetType)
	}
	var out assetsPayload
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out.Assets, err
}

func (c *Client) Asset(ctx context.Context, id string) (market.Quote, error) {
	var out market.Quote
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets/"+url.PathEscape(id), nil, &out, "")
	return out, err
}

func (c *Client) Chart(ctx context.Context, id, timeFrame string) (chartPayload, error) {
	path := "/v1/assets/" + url.PathEscape(id) + "/chart"
	if timeFrame != "" {
		path += "?range=" + url.QueryEscape(timeFrame)
	}
	var out chartPayload
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out, err
}

func (c *Client) History(ctx context.Context, id string) ([]market.Candle, error) {
	var out historyPayload
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets/"+url.PathEscape(id)+"/history", nil, &out, "")
	return out.Candles, err
}

func (c *Client) News(ctx context.Context, id string) ([]market.NewsItem, error) {
	var out newsPayload
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets/"+url.PathEscape(id)+"/news", nil, &out, "")
	return out.Items, err
}

func (c *Client) Search(ctx context.Context, query string) ([]market.Quote, error) {
	var out searchPayload
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/search?q="+url.QueryEscape(query), nil, &out, "")
	return out.Results, err
}

func (c *Client) GameState(ctx context.Context) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/game", nil, &out, "")
	return out, err
}

func (c *Client) Click(ctx context.Context, count int64) (int64, game.StateView, error) {
	var out clickPayload
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/game/click", map[string]any{
		"count": count,
	}, &out, "")
	return out.Earned, out.State, err
}

func (c *Client) PlaceOrder(ctx context.Context, assetID, side string, quantityUnits int64, idem string) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/game/orders", map[string]any{
		"asset_id":       assetID,
		"side":           side,
		"quantity_units": quantityUnits,
	}, &out, idem)
	return out, err
}

func (c *Client) BuyUpgrade(ctx context.Context, upgradeID int64, idem string) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/game/upgrades/%d/buy", upgradeID), map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) SetRunning(ctx context.Context, running bool) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/game/running", map[string]any{
		"running": running,
	}, &out, "")
	return out, err
}

func (c *Client) Reset(ctx context.Context) (game.StateView, error) {
	var out game.StateView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/game/reset", nil, &out, "")
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
