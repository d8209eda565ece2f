package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vegas-casino-service/internal/game/blackjack"
	"vegas-casino-service/internal/model"
	"vegas-casino-service/internal/scoring"
)

// anonymousUser is the fallback identity when a request carries no
// username. All anonymous callers share one session.
const anonymousUser = "Anonymous"

// blackjackRequest is the body for all four blackjack actions. BetAmount
// is only read by deal.
type blackjackRequest struct {
	Username  string `json:"username"`
	BetAmount int64  `json:"betAmount"`
}

// playRequest is the body for the stateless games. BetType and Number
// are only read by roulette.
type playRequest struct {
	Username  string `json:"username"`
	BetAmount int64  `json:"betAmount"`
	BetType   string `json:"betType"`
	Number    *int   `json:"number"`
}

// playResponse is the envelope for a stateless game outcome.
type playResponse struct {
	Game      string         `json:"game"`
	Result    string         `json:"result"`
	Win       bool           `json:"win"`
	BetAmount int64          `json:"betAmount"`
	Payout    int64          `json:"payout"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	// An empty body means all-defaults, same as an empty object.
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	var req blackjackRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = anonymousUser
	}

	start := time.Now()
	res, err := s.table.Deal(r.Context(), username, req.BetAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	s.observeBlackjack(res.BetAmount, res.Result, res.Status, start)

	writeJSON(w, struct {
		*blackjack.DealResult
		Timestamp string `json:"timestamp"`
	}{res, nowStamp()})
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	var req blackjackRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = anonymousUser
	}

	start := time.Now()
	res, err := s.table.Hit(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	s.observeBlackjack(0, res.Result, res.Status, start)

	writeJSON(w, struct {
		*blackjack.HitResult
		Timestamp string `json:"timestamp"`
	}{res, nowStamp()})
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	var req blackjackRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = anonymousUser
	}

	start := time.Now()
	res, err := s.table.Stand(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	s.observeBlackjack(0, res.Result, res.Status, start)

	writeJSON(w, struct {
		*blackjack.StandResult
		Timestamp string `json:"timestamp"`
	}{res, nowStamp()})
}

func (s *Server) handleDouble(w http.ResponseWriter, r *http.Request) {
	var req blackjackRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = anonymousUser
	}

	start := time.Now()
	res, err := s.table.Double(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	s.observeBlackjack(res.AdditionalBet, res.Result, res.Status, start)

	writeJSON(w, struct {
		*blackjack.DoubleResult
		Timestamp string `json:"timestamp"`
	}{res, nowStamp()})
}

// observeBlackjack records metrics for a completed blackjack action.
// Only finished rounds count toward wins and losses.
func (s *Server) observeBlackjack(bet int64, result model.RoundResult, status model.RoundStatus, start time.Time) {
	if status != model.StatusFinished {
		return
	}
	win := result == model.ResultWin || result == model.ResultBlackjack
	s.metrics.ObservePlay(blackjack.GameName, bet, win, time.Since(start))
}

// handlePlay dispatches to a stateless game by its route segment.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	command := r.PathValue("game")
	g, ok := s.games.Get(command)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error: fmt.Sprintf("unknown game %q", command),
			Code:  "NotFound",
		})
		return
	}

	var req playRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	username := req.Username
	if username == "" {
		username = anonymousUser
	}

	params := map[string]any{}
	if req.BetType != "" {
		params["betType"] = req.BetType
	}
	if req.Number != nil {
		params["number"] = *req.Number
	}

	start := time.Now()
	res, err := g.Play(r.Context(), username, req.BetAmount, params)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	s.metrics.ObservePlay(command, req.BetAmount, res.Win, time.Since(start))
	scoring.Dispatch(s.sink, model.GameRecord{
		ID:        uuid.NewString(),
		Username:  username,
		Game:      command,
		Action:    "play",
		BetAmount: req.BetAmount,
		Payout:    res.Payout,
		Win:       res.Win,
		Result:    res.Result,
		GameData:  res.Details,
	})

	writeJSON(w, playResponse{
		Game:      command,
		Result:    res.Result,
		Win:       res.Win,
		BetAmount: req.BetAmount,
		Payout:    res.Payout,
		Details:   res.Details,
		Timestamp: nowStamp(),
	})
}

// handleGames lists the registered stateless games.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	type gameInfo struct {
		Command     string `json:"command"`
		Name        string `json:"name"`
		Description string `json:"description"`
		MaxBet      int64  `json:"maxBet"`
	}

	infos := make([]gameInfo, 0, s.games.Count())
	for _, cmd := range s.games.Commands() {
		g, ok := s.games.Get(cmd)
		if !ok {
			continue
		}
		infos = append(infos, gameInfo{
			Command:     g.Command(),
			Name:        g.Name(),
			Description: g.Description(),
			MaxBet:      g.MaxBet(),
		})
	}
	writeJSON(w, map[string]any{"games": infos})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checkers))
	for name, check := range s.checkers {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}
