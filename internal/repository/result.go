package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vegas-casino-service/internal/model"
)

// ResultRepository stores resolved game outcomes for scoring and
// analytics. The table is append-only; duplicate records from races are
// acceptable.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository instance.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a game result row.
func (r *ResultRepository) Create(ctx context.Context, rec *model.GameRecord) (*model.GameResult, error) {
	var gameData []byte
	if rec.GameData != nil {
		var err error
		gameData, err = json.Marshal(rec.GameData)
		if err != nil {
			return nil, fmt.Errorf("failed to encode game data: %w", err)
		}
	}

	const query = `
		INSERT INTO game_results (id, username, game, action, bet_amount, payout, win, result, game_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, username, game, action, bet_amount, payout, win, result, game_data, created_at
	`

	var result model.GameResult
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.Username, rec.Game, rec.Action,
		rec.BetAmount, rec.Payout, rec.Win, rec.Result, gameData,
	).Scan(
		&result.ID,
		&result.Username,
		&result.Game,
		&result.Action,
		&result.BetAmount,
		&result.Payout,
		&result.Win,
		&result.Result,
		&result.GameData,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game result: %w", err)
	}

	return &result, nil
}

// GetByUsername retrieves the most recent results for a player.
func (r *ResultRepository) GetByUsername(ctx context.Context, username string, limit int) ([]*model.GameResult, error) {
	const query = `
		SELECT id, username, game, action, bet_amount, payout, win, result, game_data, created_at
		FROM game_results
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get game results: %w", err)
	}
	defer rows.Close()

	var results []*model.GameResult
	for rows.Next() {
		var result model.GameResult
		err := rows.Scan(
			&result.ID,
			&result.Username,
			&result.Game,
			&result.Action,
			&result.BetAmount,
			&result.Payout,
			&result.Win,
			&result.Result,
			&result.GameData,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game results: %w", err)
	}

	return results, nil
}

// NetPayout sums payout minus bet across all of a player's recorded games.
func (r *ResultRepository) NetPayout(ctx context.Context, username string) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(payout - bet_amount), 0)
		FROM game_results
		WHERE username = $1
	`

	var net int64
	if err := r.pool.QueryRow(ctx, query, username).Scan(&net); err != nil {
		return 0, fmt.Errorf("failed to sum net payout: %w", err)
	}
	return net, nil
}
