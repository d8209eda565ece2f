package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vegas-casino-service/internal/flag"
	"vegas-casino-service/internal/game"
	"vegas-casino-service/internal/game/blackjack"
	"vegas-casino-service/internal/game/dice"
	"vegas-casino-service/internal/metrics"
	"vegas-casino-service/internal/model"
	"vegas-casino-service/internal/session"
)

// scriptedDraw deals cards of the given ranks in order, cycling when
// exhausted.
func scriptedDraw(ranks ...int) func() model.Card {
	i := 0
	return func() model.Card {
		r := ranks[i%len(ranks)]
		i++
		return model.Card{Rank: r, Suit: model.SuitSpades}
	}
}

type serverOptions struct {
	flags    flag.Provider
	ranks    []int
	checkers map[string]HealthChecker
}

func newTestServer(t *testing.T, opts serverOptions) *Server {
	t.Helper()

	ranks := opts.ranks
	if len(ranks) == 0 {
		ranks = []int{10, 9, 5, 10}
	}

	table := blackjack.New(blackjack.Config{
		Store:       session.NewMemoryStore(0),
		Flags:       opts.flags,
		Draw:        scriptedDraw(ranks...),
		DeleteDelay: time.Hour,
	})

	registry := game.NewRegistry()
	require.NoError(t, registry.Register(dice.New(&dice.Config{
		Roll: func() int { return 5 }, // total 10: even-money win
	})))

	reg := prometheus.NewRegistry()
	return New(Config{
		Addr:     ":0",
		Table:    table,
		Games:    registry,
		Metrics:  metrics.New("casino_test", reg),
		Gatherer: reg,
		Checkers: opts.checkers,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestDealEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/deal",
		map[string]any{"username": "alice", "betAmount": 100})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playing", body["gameStatus"])
	assert.Equal(t, float64(100), body["betAmount"])
	assert.Equal(t, float64(19), body["playerScore"])
	assert.Equal(t, float64(5), body["dealerScore"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestDealEndpoint_AnonymousFallback(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/deal",
		map[string]any{"betAmount": 50})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playing", body["gameStatus"])

	// The anonymous session is live: hit works without a username too.
	rec, _ = doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/hit", map[string]any{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHitEndpoint_NoRound(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/hit",
		map[string]any{"username": "nobody"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidArgument", body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestStandEndpoint_NoRoundIsSoftSuccess(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/stand",
		map[string]any{"username": "nobody"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_state", body["gameStatus"])
	assert.Equal(t, "no_active_game", body["result"])
	assert.Equal(t, float64(0), body["payout"])
}

func TestStandEndpoint_FullRound(t *testing.T) {
	// Player 19, dealer 10+6 then 2 for 18.
	srv := newTestServer(t, serverOptions{ranks: []int{10, 9, 10, 6, 2}})

	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/deal",
		map[string]any{"username": "alice", "betAmount": 100})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/stand",
		map[string]any{"username": "alice"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "finished", body["gameStatus"])
	assert.Equal(t, "win", body["result"])
	assert.Equal(t, float64(200), body["payout"])
	assert.NotEmpty(t, body["dealerFinalHand"])
}

func TestDoubleEndpoint_Disabled(t *testing.T) {
	srv := newTestServer(t, serverOptions{
		flags: flag.Static{blackjack.FlagDoubleDown: false},
	})

	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/deal",
		map[string]any{"username": "alice", "betAmount": 100})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/blackjack/double",
		map[string]any{"username": "alice"})

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PermissionDenied", body["code"])
}

func TestPlayEndpoint_Dice(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/dice/play",
		map[string]any{"username": "alice", "betAmount": 100})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dice", body["game"])
	assert.Equal(t, "win", body["result"])
	assert.Equal(t, float64(200), body["payout"])
	assert.Equal(t, true, body["win"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestPlayEndpoint_VerbAliases(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/dice/roll",
		map[string]any{"username": "alice", "betAmount": 100})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dice", body["game"])
}

func TestPlayEndpoint_UnknownGame(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/poker/play",
		map[string]any{"username": "alice", "betAmount": 100})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["code"])
}

func TestPlayEndpoint_InvalidBet(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/dice/play",
		map[string]any{"username": "alice", "betAmount": 0})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidArgument", body["code"])
}

func TestGamesEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	rec, body := doJSON(t, srv.Handler(), http.MethodGet, "/api/games", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	games, ok := body["games"].([]any)
	require.True(t, ok)
	require.Len(t, games, 1)

	info := games[0].(map[string]any)
	assert.Equal(t, "dice", info["command"])
	assert.NotEmpty(t, info["description"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{
		checkers: map[string]HealthChecker{
			"store": func(ctx context.Context) error { return nil },
		},
	})

	rec, body := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	srv := newTestServer(t, serverOptions{
		checkers: map[string]HealthChecker{
			"store": func(ctx context.Context) error { return errors.New("connection refused") },
		},
	})

	rec, body := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	// Generate some activity first.
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/api/dice/play",
		map[string]any{"username": "alice", "betAmount": 100})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	srv.Handler().ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "casino_test_game_plays_total")
}
