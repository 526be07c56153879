package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunRow is one simulated game.
type RunRow struct {
	ID            int64
	Seed          int64
	Mode          string
	StartingRound int
	StartingMoney int
	LaneCount     int
	FinalRound    *int
	FinalMoney    *int
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// RoundRow is one completed round of a run.
type RoundRow struct {
	Round         int
	TotalEnemies  int
	HealthMult    float64
	SpeedMult     float64
	DamageMult    float64
	IntervalMult  float64
	SpawnsPerTick int
	Spawned       int
	Killed        int
	Escaped       int
	Money         int
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// CreateRun inserts a run and returns its id.
func (r *RunRepo) CreateRun(ctx context.Context, run RunRow) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO runs (seed, mode, starting_round, starting_money, lane_count)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		run.Seed, run.Mode, run.StartingRound, run.StartingMoney, run.LaneCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// RecordRound stores a completed round. Re-recording the same round
// overwrites the earlier row.
func (r *RunRepo) RecordRound(ctx context.Context, runID int64, row RoundRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO rounds (run_id, round, total_enemies, health_mult, speed_mult, damage_mult,
		                     interval_mult, spawns_per_tick, spawned, killed, escaped, money)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (run_id, round) DO UPDATE SET
		     spawned = EXCLUDED.spawned, killed = EXCLUDED.killed,
		     escaped = EXCLUDED.escaped, money = EXCLUDED.money, completed_at = now()`,
		runID, row.Round, row.TotalEnemies, row.HealthMult, row.SpeedMult, row.DamageMult,
		row.IntervalMult, row.SpawnsPerTick, row.Spawned, row.Killed, row.Escaped, row.Money,
	)
	if err != nil {
		return fmt.Errorf("record round %d: %w", row.Round, err)
	}
	return nil
}

// FinishRun closes a run with its final round and money.
func (r *RunRepo) FinishRun(ctx context.Context, runID int64, finalRound, finalMoney int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE runs SET final_round = $2, final_money = $3, finished_at = now() WHERE id = $1`,
		runID, finalRound, finalMoney,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Load returns a run by id, or nil if it does not exist.
func (r *RunRepo) Load(ctx context.Context, id int64) (*RunRow, error) {
	row := &RunRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, seed, mode, starting_round, starting_money, lane_count,
		        final_round, final_money, started_at, finished_at
		 FROM runs WHERE id = $1`, id,
	).Scan(
		&row.ID, &row.Seed, &row.Mode, &row.StartingRound, &row.StartingMoney, &row.LaneCount,
		&row.FinalRound, &row.FinalMoney, &row.StartedAt, &row.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Recent returns the latest runs, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, seed, mode, starting_round, starting_money, lane_count,
		        final_round, final_money, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(
			&row.ID, &row.Seed, &row.Mode, &row.StartingRound, &row.StartingMoney, &row.LaneCount,
			&row.FinalRound, &row.FinalMoney, &row.StartedAt, &row.FinishedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
