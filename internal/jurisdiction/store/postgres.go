package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/platform/sentinel"
	"depositguard/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists jurisdictions and rule sets. Citations and penalties
// live in JSONB columns so a rule set row is a self-contained snapshot.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveJurisdiction(ctx context.Context, j *models.Jurisdiction) error {
	var city sql.NullString
	if j.City != nil {
		city = sql.NullString{String: *j.City, Valid: true}
	}
	query := `
		INSERT INTO jurisdictions (id, state, state_code, city, city_key, coverage, last_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (state_code, city_key) DO UPDATE SET
			state = EXCLUDED.state,
			city = EXCLUDED.city,
			coverage = EXCLUDED.coverage,
			last_verified = EXCLUDED.last_verified
		RETURNING id
	`
	var stored uuid.UUID
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(j.ID), j.State, j.StateCode, city, cityKey(j.City), string(j.Coverage), j.LastVerified,
	).Scan(&stored)
	if err != nil {
		return fmt.Errorf("save jurisdiction: %w", err)
	}
	j.ID = id.JurisdictionID(stored)
	return nil
}

func cityKey(city *string) string {
	if city == nil {
		return ""
	}
	return models.CityKey(*city)
}

const jurisdictionColumns = `id, state, state_code, city, coverage, last_verified`

func (s *PostgresStore) FindJurisdiction(ctx context.Context, stateCode string, city *string) (*models.Jurisdiction, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+jurisdictionColumns+` FROM jurisdictions WHERE state_code = $1 AND city_key = $2`,
		stateCode, cityKey(city))
	return scanJurisdiction(row)
}

func (s *PostgresStore) FindJurisdictionByID(ctx context.Context, jid id.JurisdictionID) (*models.Jurisdiction, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+jurisdictionColumns+` FROM jurisdictions WHERE id = $1`, uuid.UUID(jid))
	return scanJurisdiction(row)
}

func scanJurisdiction(row *sql.Row) (*models.Jurisdiction, error) {
	var (
		j        models.Jurisdiction
		rawID    uuid.UUID
		city     sql.NullString
		coverage string
	)
	if err := row.Scan(&rawID, &j.State, &j.StateCode, &city, &coverage, &j.LastVerified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find jurisdiction: %w", err)
	}
	j.ID = id.JurisdictionID(rawID)
	j.Coverage = models.CoverageLevel(coverage)
	if city.Valid {
		j.City = &city.String
	}
	return &j, nil
}

type ruleSetDocument struct {
	Interest    models.InterestRule    `json:"interest"`
	Itemization models.ItemizationRule `json:"itemization"`
	Citations   []models.Citation      `json:"citations"`
	Penalties   []models.Penalty       `json:"penalties"`
}

func (s *PostgresStore) InsertRuleSet(ctx context.Context, rs *models.RuleSet) error {
	doc, err := json.Marshal(ruleSetDocument{
		Interest:    rs.Interest,
		Itemization: rs.Itemization,
		Citations:   rs.Citations,
		Penalties:   rs.Penalties,
	})
	if err != nil {
		return fmt.Errorf("encode rule set: %w", err)
	}
	query := `
		INSERT INTO rule_sets (id, jurisdiction_id, version, effective_date, return_deadline_days,
			max_deposit_months, allowed_delivery_methods, rules, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(rs.ID), uuid.UUID(rs.JurisdictionID), rs.Version, rs.EffectiveDate,
		rs.ReturnDeadlineDays, rs.MaxDepositMonths.String(), pq.Array(rs.AllowedDeliveryMethods),
		string(doc), rs.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert rule set: %w", err)
	}
	return nil
}

// UpdateRuleSet rewrites an unlocked rule set. The locked_at predicate makes
// the immutability guard atomic with the write.
func (s *PostgresStore) UpdateRuleSet(ctx context.Context, rs *models.RuleSet) error {
	doc, err := json.Marshal(ruleSetDocument{
		Interest:    rs.Interest,
		Itemization: rs.Itemization,
		Citations:   rs.Citations,
		Penalties:   rs.Penalties,
	})
	if err != nil {
		return fmt.Errorf("encode rule set: %w", err)
	}
	exec := tx.ExecutorFrom(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE rule_sets SET effective_date = $2, return_deadline_days = $3, max_deposit_months = $4,
			allowed_delivery_methods = $5, rules = $6
		WHERE id = $1 AND locked_at IS NULL
	`, uuid.UUID(rs.ID), rs.EffectiveDate, rs.ReturnDeadlineDays, rs.MaxDepositMonths.String(),
		pq.Array(rs.AllowedDeliveryMethods), string(doc))
	if err != nil {
		return fmt.Errorf("update rule set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rule set: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rule_sets WHERE id = $1)`, uuid.UUID(rs.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("update rule set: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrImmutable
}

const ruleSetColumns = `id, jurisdiction_id, version, effective_date, return_deadline_days,
	max_deposit_months, allowed_delivery_methods, rules, created_at, locked_at`

func (s *PostgresStore) FindRuleSet(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+ruleSetColumns+` FROM rule_sets WHERE id = $1`, uuid.UUID(rid))
	rs, err := scanRuleSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find rule set: %w", err)
	}
	return rs, nil
}

func (s *PostgresStore) ListRuleSets(ctx context.Context, jid id.JurisdictionID) ([]models.RuleSet, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+ruleSetColumns+` FROM rule_sets WHERE jurisdiction_id = $1`, uuid.UUID(jid))
	if err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}
	defer rows.Close()

	var out []models.RuleSet
	for rows.Next() {
		rs, err := scanRuleSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule set: %w", err)
		}
		out = append(out, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}
	return out, nil
}

// LockRuleSet stamps locked_at once; COALESCE keeps the first timestamp.
func (s *PostgresStore) LockRuleSet(ctx context.Context, rid id.RuleSetID, at time.Time) error {
	res, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE rule_sets SET locked_at = COALESCE(locked_at, $2) WHERE id = $1`, uuid.UUID(rid), at)
	if err != nil {
		return fmt.Errorf("lock rule set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock rule set: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRuleSet(row scanner) (*models.RuleSet, error) {
	var (
		rs        models.RuleSet
		rawID     uuid.UUID
		rawJurID  uuid.UUID
		maxMonths string
		methods   pq.StringArray
		doc       []byte
		lockedAt  sql.NullTime
	)
	if err := row.Scan(&rawID, &rawJurID, &rs.Version, &rs.EffectiveDate, &rs.ReturnDeadlineDays,
		&maxMonths, &methods, &doc, &rs.CreatedAt, &lockedAt); err != nil {
		return nil, err
	}
	var body ruleSetDocument
	if err := json.Unmarshal(doc, &body); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	rs.ID = id.RuleSetID(rawID)
	rs.JurisdictionID = id.JurisdictionID(rawJurID)
	if err := rs.MaxDepositMonths.Scan(maxMonths); err != nil {
		return nil, fmt.Errorf("decode max deposit months: %w", err)
	}
	rs.AllowedDeliveryMethods = []string(methods)
	rs.Interest = body.Interest
	rs.Itemization = body.Itemization
	rs.Citations = body.Citations
	rs.Penalties = body.Penalties
	if lockedAt.Valid {
		t := lockedAt.Time
		rs.LockedAt = &t
	}
	return &rs, nil
}
