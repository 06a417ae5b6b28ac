package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	mathrand "math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"wondesk/internal/config"
	"wondesk/internal/game"
	"wondesk/internal/market"
	"wondesk/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRecentKeys = 512

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	catalog *market.Catalog
	board   *market.Board
	game    *game.Engine
	store   store.Store
	mux     *chi.Mux

	mu       sync.Mutex
	rng      *mathrand.Rand
	seenKeys map[string]struct{}
	keyOrder []string
}

func New(cfg config.APIConfig, logger *slog.Logger, catalog *market.Catalog, board *market.Board, engine *game.Engine, snapStore store.Store, rng *mathrand.Rand) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		catalog:  catalog,
		board:    board,
		game:     engine,
		store:    snapStore,
		mux:      chi.NewRouter(),
		rng:      rng,
		seenKeys: make(map[string]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/assets", s.handleAssets)
		r.Get("/assets/{id}", s.handleAssetDetail)
		r.Get("/assets/{id}/chart", s.handleChart)
		r.Get("/assets/{id}/history", s.handleHistory)
		r.Get("/assets/{id}/news", s.handleNews)
		r.Get("/search", s.handleSearch)

		r.Get("/game", s.handleGameState)
		r.Post("/game/click", s.handleClick)
		r.Post("/game/orders", s.handleOrder)
		r.Post("/game/upgrades/{id}/buy", s.handleBuyUpgrade)
		r.Post("/game/running", s.handleRunning)
		r.Post("/game/reset", s.handleReset)

		r.Get("/stream", s.handleStream)
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	quotes := s.board.Snapshot()
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		want := market.AssetType(t)
		if want != market.AssetStock && want != market.AssetCrypto {
			writeError(w, http.StatusBadRequest, "type must be stock or crypto")
			return
		}
		filtered := quotes[:0]
		for _, q := range quotes {
			if q.Type == want {
				filtered = append(filtered, q)
			}
		}
		quotes = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": quotes})
}

func (s *Server) handleAssetDetail(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.board.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown asset")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown asset")
		return
	}
	frame, err := market.ParseTimeFrame(strings.TrimSpace(r.URL.Query().Get("range")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	points := market.ChartSeries(s.rng, asset, frame, time.Now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"range": frame, "points": points})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown asset")
		return
	}
	s.mu.Lock()
	candles := market.History(s.rng, asset, time.Now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"candles": candles})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown asset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": market.NewsForAsset(asset, time.Now())})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := s.catalog.Search(r.URL.Query().Get("q"))
	out := make([]market.Quote, 0, len(matches))
	for _, a := range matches {
		if q, ok := s.board.Get(a.ID); ok {
			out = append(out, q)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleGameState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Count int64 `json:"count"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Count <= 0 {
		in.Count = 1
	}
	if in.Count > 1000 {
		writeError(w, http.StatusBadRequest, "count too large")
		return
	}
	var earned int64
	for i := int64(0); i < in.Count; i++ {
		earned += s.game.Click()
	}
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"earned": earned, "state": s.game.State()})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AssetID       string `json:"asset_id"`
		Side          string `json:"side"`
		QuantityUnits int64  `json:"quantity_units"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.claimKey(idempotencyKey(r)) {
		writeError(w, http.StatusConflict, "duplicate idempotency key")
		return
	}

	var err error
	switch strings.ToLower(strings.TrimSpace(in.Side)) {
	case "buy":
		err = s.game.Buy(in.AssetID, in.QuantityUnits)
	case "sell":
		err = s.game.Sell(in.AssetID, in.QuantityUnits)
	default:
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	upgradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upgrade id")
		return
	}
	if !s.claimKey(idempotencyKey(r)) {
		writeError(w, http.StatusConflict, "duplicate idempotency key")
		return
	}
	if err := s.game.BuyUpgrade(upgradeID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Running bool `json:"running"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.game.SetRunning(in.Running)
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.game.Reset()
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.game.State())
}

// persist is the save-on-change side of the snapshot contract. Failures
// are logged, never surfaced: the periodic saver will retry.
func (s *Server) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.game.Snapshot()); err != nil {
		s.log.Warn("snapshot save failed", "err", err)
	}
}

// claimKey remembers recent idempotency keys so a retried mutation is
// rejected instead of applied twice. The window is bounded FIFO.
func (s *Server) claimKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seenKeys[key]; dup {
		return false
	}
	s.seenKeys[key] = struct{}{}
	s.keyOrder = append(s.keyOrder, key)
	if len(s.keyOrder) > maxRecentKeys {
		oldest := s.keyOrder[0]
		s.keyOrder = s.keyOrder[1:]
		delete(s.seenKeys, oldest)
	}
	return true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidQuantity), errors.Is(err, game.ErrWholeSharesOnly):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrInsufficientHoldings):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrUnknownAsset), errors.Is(err, game.ErrUnknownUpgrade):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
