package api

import (
	"bytes"
	"encoding/json"
	"io"
	mathrand "math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"wondesk/internal/config"
	"wondesk/internal/game"
	"wondesk/internal/market"
)

func newTestServer(t *testing.T) (*httptest.Server, *game.Engine) {
	t.Helper()
	catalog := market.NewCatalog()
	board := market.NewBoard(catalog, mathrand.New(mathrand.NewSource(1)))
	engine := game.NewEngine(board, mathrand.New(mathrand.NewSource(2)), nil)
	s := New(config.APIConfig{}, nil, catalog, board, engine, nil, mathrand.New(mathrand.NewSource(3)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, engine
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s status=%d want=%d body=%s", url, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func postJSON(t *testing.T, url string, body any, idem string, wantStatus int, out any) {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s status=%d want=%d body=%s", url, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	var out map[string]bool
	getJSON(t, ts.URL+"/healthz", http.StatusOK, &out)
	if !out["ok"] {
		t.Fatalf("healthz not ok: %v", out)
	}
}

func TestAssetsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var all struct {
		Assets []market.Quote `json:"assets"`
	}
	getJSON(t, ts.URL+"/v1/assets", http.StatusOK, &all)
	if len(all.Assets) != market.NewCatalog().Len() {
		t.Fatalf("assets got=%d want=%d", len(all.Assets), market.NewCatalog().Len())
	}

	var stocks struct {
		Assets []market.Quote `json:"assets"`
	}
	getJSON(t, ts.URL+"/v1/assets?type=stock", http.StatusOK, &stocks)
	for _, q := range stocks.Assets {
		if q.Type != market.AssetStock {
			t.Fatalf("filter leaked %s asset %s", q.Type, q.ID)
		}
	}

	getJSON(t, ts.URL+"/v1/assets?type=bond", http.StatusBadRequest, nil)
}

func TestAssetDetailEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var quote market.Quote
	getJSON(t, ts.URL+"/v1/assets/samsung", http.StatusOK, &quote)
	if quote.ID != "samsung" || quote.PriceMicros <= 0 {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	getJSON(t, ts.URL+"/v1/assets/enron", http.StatusNotFound, nil)
}

func TestChartEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var out struct {
		Range  market.TimeFrame    `json:"range"`
		Points []market.ChartPoint `json:"points"`
	}
	getJSON(t, ts.URL+"/v1/assets/bitcoin/chart?range=1W", http.StatusOK, &out)
	if out.Range != market.Frame1W || len(out.Points) == 0 {
		t.Fatalf("unexpected chart: range=%s points=%d", out.Range, len(out.Points))
	}

	getJSON(t, ts.URL+"/v1/assets/bitcoin/chart?range=2W", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/v1/assets/enron/chart", http.StatusNotFound, nil)
}

func TestHistoryAndNewsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	var history struct {
		Candles []market.Candle `json:"candles"`
	}
	getJSON(t, ts.URL+"/v1/assets/samsung/history", http.StatusOK, &history)
	if len(history.Candles) != 31 {
		t.Fatalf("candles got=%d want=31", len(history.Candles))
	}

	var news struct {
		Items []market.NewsItem `json:"items"`
	}
	getJSON(t, ts.URL+"/v1/assets/samsung/news", http.StatusOK, &news)
	if len(news.Items) != 3 {
		t.Fatalf("news items got=%d want=3", len(news.Items))
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var out struct {
		Results []market.Quote `json:"results"`
	}
	getJSON(t, ts.URL+"/v1/search?q=samsung", http.StatusOK, &out)
	if len(out.Results) == 0 {
		t.Fatalf("search found nothing")
	}
}

func TestClickEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var out struct {
		Earned int64          `json:"earned"`
		State  game.StateView `json:"state"`
	}
	postJSON(t, ts.URL+"/v1/game/click", map[string]any{"count": 3}, "", http.StatusOK, &out)
	if out.Earned != 3 {
		t.Fatalf("earned got=%d want=3", out.Earned)
	}
	if out.State.Clicker.Coins != 3 {
		t.Fatalf("coins got=%d want=3", out.State.Clicker.Coins)
	}
	wantCash := game.StarterCashMicros + 3*market.MicrosPerWon
	if out.State.Portfolio.CashMicros != wantCash {
		t.Fatalf("cash got=%d want=%d", out.State.Portfolio.CashMicros, wantCash)
	}

	postJSON(t, ts.URL+"/v1/game/click", map[string]any{"count": 1001}, "", http.StatusBadRequest, nil)
}

func TestOrderEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var state game.StateView
	postJSON(t, ts.URL+"/v1/game/orders", map[string]any{
		"asset_id":       "samsung",
		"side":           "buy",
		"quantity_units": 10 * game.UnitScale,
	}, "", http.StatusOK, &state)
	if len(state.Portfolio.Holdings) != 1 {
		t.Fatalf("holdings got=%d want=1", len(state.Portfolio.Holdings))
	}

	postJSON(t, ts.URL+"/v1/game/orders", map[string]any{
		"asset_id":       "samsung",
		"side":           "sell",
		"quantity_units": 10 * game.UnitScale,
	}, "", http.StatusOK, &state)
	if len(state.Portfolio.Holdings) != 0 {
		t.Fatalf("holdings got=%d want=0", len(state.Portfolio.Holdings))
	}

	// Domain errors map to status codes.
	postJSON(t, ts.URL+"/v1/game/orders", map[string]any{
		"asset_id":       "bitcoin",
		"side":           "buy",
		"quantity_units": game.UnitScale,
	}, "", http.StatusBadRequest, nil)
	postJSON(t, ts.URL+"/v1/game/orders", map[string]any{
		"asset_id":       "enron",
		"side":           "buy",
		"quantity_units": game.UnitScale,
	}, "", http.StatusNotFound, nil)
	postJSON(t, ts.URL+"/v1/game/orders", map[string]any{
		"asset_id":       "samsung",
		"side":           "short",
		"quantity_units": game.UnitScale,
	}, "", http.StatusBadRequest, nil)
}

func TestOrderIdempotencyKeyRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	body := map[string]any{
		"asset_id":       "samsung",
		"side":           "buy",
		"quantity_units": game.UnitScale,
	}
	postJSON(t, ts.URL+"/v1/game/orders", body, "key-1", http.StatusOK, nil)
	postJSON(t, ts.URL+"/v1/game/orders", body, "key-1", http.StatusConflict, nil)
	postJSON(t, ts.URL+"/v1/game/orders", body, "key-2", http.StatusOK, nil)
}

func TestUpgradeEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	postJSON(t, ts.URL+"/v1/game/click", map[string]any{"count": 50}, "", http.StatusOK, nil)

	var state game.StateView
	postJSON(t, ts.URL+"/v1/game/upgrades/2/buy", nil, "", http.StatusOK, &state)
	if state.Clicker.AutoClickRate != 1 {
		t.Fatalf("auto rate got=%d want=1", state.Clicker.AutoClickRate)
	}
	if state.Clicker.Coins != 0 {
		t.Fatalf("coins got=%d want=0", state.Clicker.Coins)
	}

	postJSON(t, ts.URL+"/v1/game/upgrades/99/buy", nil, "", http.StatusNotFound, nil)
	postJSON(t, ts.URL+"/v1/game/upgrades/abc/buy", nil, "", http.StatusBadRequest, nil)
}

func TestRunningAndResetEndpoints(t *testing.T) {
	ts, engine := newTestServer(t)

	var state game.StateView
	postJSON(t, ts.URL+"/v1/game/running", map[string]any{"running": true}, "", http.StatusOK, &state)
	if !state.Portfolio.Running {
		t.Fatalf("expected running=true")
	}

	engine.Click()
	postJSON(t, ts.URL+"/v1/game/reset", nil, "", http.StatusOK, &state)
	if state.Portfolio.Running || state.Clicker.Coins != 0 {
		t.Fatalf("reset did not restore defaults: %+v", state.Portfolio)
	}
	if state.Portfolio.CashMicros != game.StarterCashMicros {
		t.Fatalf("cash got=%d want=%d", state.Portfolio.CashMicros, game.StarterCashMicros)
	}

	var view game.StateView
	getJSON(t, ts.URL+"/v1/game", http.StatusOK, &view)
	if view.TotalValueMicros != game.StarterCashMicros {
		t.Fatalf("total got=%d want=%d", view.TotalValueMicros, game.StarterCashMicros)
	}
}
