package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// TxBeginner starts a transaction. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RuleSetRepository provides data access for the versioned farming-condition
// rule sets. Rule replacement runs the deactivate-all and insert steps in a
// single transaction so there is no window where zero or two rule sets are
// active.
type RuleSetRepository struct {
	db DBTX
	tx TxBeginner
}

// NewRuleSetRepository creates a new RuleSetRepository. The tx beginner may
// be nil in tests that never call the transactional methods.
func NewRuleSetRepository(db DBTX, tx TxBeginner) *RuleSetRepository {
	return &RuleSetRepository{db: db, tx: tx}
}

const ruleSetColumns = `r.id, r.temperature_rules, r.humidity_rules,
	r.wind_rules, r.precipitation_rules, r.active, r.created_by, r.last_updated`

func scanRuleSet(row pgx.Row) (*types.RuleSet, error) {
	var rs types.RuleSet
	err := row.Scan(
		&rs.ID,
		&rs.Temperature,
		&rs.Humidity,
		&rs.Wind,
		&rs.Precipitation,
		&rs.Active,
		&rs.CreatedBy,
		&rs.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

// GetActive returns the currently active rule set. Returns
// not_found_rule_set when no row is active; the caller (the rule store
// service) materializes the default in that case.
func (r *RuleSetRepository) GetActive(ctx context.Context) (*types.RuleSet, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ruleSetColumns+`
		 FROM rule_sets r
		 WHERE r.active
		 ORDER BY r.last_updated DESC
		 LIMIT 1`,
	)
	rs, err := scanRuleSet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundRuleSet, "no active rule set", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve active rule set", err)
	}
	return rs, nil
}

// Insert persists a rule set row as-is. Used for default materialization.
func (r *RuleSetRepository) Insert(ctx context.Context, rs *types.RuleSet) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rule_sets (id, temperature_rules, humidity_rules,
		 wind_rules, precipitation_rules, active, created_by, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rs.ID,
		rs.Temperature,
		rs.Humidity,
		rs.Wind,
		rs.Precipitation,
		rs.Active,
		rs.CreatedBy,
		rs.LastUpdated,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert rule set", err)
	}
	return nil
}

// ReplaceActive atomically deactivates every existing rule set and inserts
// rs as the new active one. History rows are retained; only the newest
// write is live.
func (r *RuleSetRepository) ReplaceActive(ctx context.Context, rs *types.RuleSet) error {
	tx, err := r.tx.Begin(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE rule_sets SET active = false WHERE active`); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to deactivate rule sets", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO rule_sets (id, temperature_rules, humidity_rules,
		 wind_rules, precipitation_rules, active, created_by, last_updated)
		 VALUES ($1, $2, $3, $4, $5, true, $6, $7)`,
		rs.ID,
		rs.Temperature,
		rs.Humidity,
		rs.Wind,
		rs.Precipitation,
		rs.CreatedBy,
		rs.LastUpdated,
	); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert rule set", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to commit rule replacement", err)
	}
	rs.Active = true
	return nil
}

// DeleteAll removes every rule set row, history included. Used by the
// reset-to-default operation; there is no undo.
func (r *RuleSetRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM rule_sets`); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete rule sets", err)
	}
	return nil
}
