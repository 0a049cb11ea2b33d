// Package postgres persists completed power runs. The schema is two tables:
// one row per run, one row per curve point, keyed by run id.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/domain/power"
	"powersim/ports"
)

// curveRepository implements the CurveRepository interface
type curveRepository struct {
	db *sqlx.DB
}

// NewCurveRepository creates a new curve repository
func NewCurveRepository(db *sqlx.DB) ports.CurveRepository {
	return &curveRepository{db: db}
}

// EnsureSchema creates the power run tables if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS power_runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			design TEXT NOT NULL,
			test TEXT NOT NULL,
			alpha DOUBLE PRECISION NOT NULL,
			seed BIGINT NOT NULL,
			replications INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS power_curve_points (
			run_id TEXT NOT NULL REFERENCES power_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			subjects INTEGER NOT NULL,
			trials INTEGER NOT NULL,
			power DOUBLE PRECISION,
			valid_replications INTEGER NOT NULL,
			excluded INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure power schema: %w", err)
		}
	}
	return nil
}

// Save inserts a run and its curve points in one transaction
func (r *curveRepository) Save(ctx context.Context, run power.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO power_runs (id, name, design, test, alpha, seed, replications, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Name, run.Design, run.Test, run.Curve.Alpha, run.Seed, run.Replications, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert power run: %w", err)
	}

	for i, p := range run.Curve.Points {
		var powerValue sql.NullFloat64
		if p.Defined() {
			powerValue = sql.NullFloat64{Float64: p.Power, Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO power_curve_points (run_id, position, subjects, trials, power, valid_replications, excluded)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID, i, p.Size.Subjects, p.Size.Trials, powerValue, p.Replications, p.Excluded,
		)
		if err != nil {
			return fmt.Errorf("failed to insert curve point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit power run: %w", err)
	}
	return nil
}

// Get retrieves one run with its full curve
func (r *curveRepository) Get(ctx context.Context, id core.RunID) (power.Run, error) {
	var row struct {
		ID           string       `db:"id"`
		Name         string       `db:"name"`
		Design       string       `db:"design"`
		Test         string       `db:"test"`
		Alpha        float64      `db:"alpha"`
		Seed         int64        `db:"seed"`
		Replications int          `db:"replications"`
		CreatedAt    sql.NullTime `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, name, design, test, alpha, seed, replications, created_at FROM power_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return power.Run{}, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return power.Run{}, fmt.Errorf("failed to load power run: %w", err)
	}

	run := power.Run{
		ID:           core.RunID(row.ID),
		Name:         row.Name,
		Design:       row.Design,
		Test:         row.Test,
		Seed:         row.Seed,
		Replications: row.Replications,
		Curve:        power.Curve{Alpha: row.Alpha},
	}
	if row.CreatedAt.Valid {
		run.CreatedAt = row.CreatedAt.Time
	}

	points, err := r.loadPoints(ctx, id)
	if err != nil {
		return power.Run{}, err
	}
	run.Curve.Points = points
	return run, nil
}

// List returns all runs, curves included, newest first
func (r *curveRepository) List(ctx context.Context) ([]power.Run, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM power_runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list power runs: %w", err)
	}

	runs := make([]power.Run, 0, len(ids))
	for _, id := range ids {
		run, err := r.Get(ctx, core.RunID(id))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *curveRepository) loadPoints(ctx context.Context, id core.RunID) ([]power.CurvePoint, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT subjects, trials, power, valid_replications, excluded
		 FROM power_curve_points WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load curve points: %w", err)
	}
	defer rows.Close()

	var points []power.CurvePoint
	for rows.Next() {
		var subjects, trials, valid, excluded int
		var powerValue sql.NullFloat64
		if err := rows.Scan(&subjects, &trials, &powerValue, &valid, &excluded); err != nil {
			return nil, fmt.Errorf("failed to scan curve point: %w", err)
		}
		pt := power.CurvePoint{
			Size:         design.Size{Subjects: subjects, Trials: trials},
			Replications: valid,
			Excluded:     excluded,
		}
		if powerValue.Valid {
			pt.Power = powerValue.Float64
		} else {
			pt.Power = math.NaN()
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}
