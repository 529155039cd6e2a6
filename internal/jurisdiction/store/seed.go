package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/money"
	"depositguard/pkg/platform/sentinel"
)

//go:embed seeds/jurisdictions.yaml
var defaultSeed []byte

// seedNamespace makes seeded IDs stable across runs so re-seeding a database
// updates rows instead of duplicating them.
var seedNamespace = uuid.MustParse("6f1b2d64-3f3c-4f77-9a4e-8f0c1f9b6a10")

// Writer is the subset of a store the seeder needs.
type Writer interface {
	SaveJurisdiction(ctx context.Context, j *models.Jurisdiction) error
	InsertRuleSet(ctx context.Context, rs *models.RuleSet) error
	UpdateRuleSet(ctx context.Context, rs *models.RuleSet) error
}

type seedFile struct {
	Jurisdictions []seedJurisdiction `yaml:"jurisdictions"`
}

type seedJurisdiction struct {
	State        string        `yaml:"state"`
	StateCode    string        `yaml:"state_code"`
	City         *string       `yaml:"city"`
	Coverage     string        `yaml:"coverage"`
	LastVerified string        `yaml:"last_verified"`
	RuleSets     []seedRuleSet `yaml:"rule_sets"`
}

type seedRuleSet struct {
	Version                string            `yaml:"version"`
	EffectiveDate          string            `yaml:"effective_date"`
	ReturnDeadlineDays     int               `yaml:"return_deadline_days"`
	MaxDepositMonths       string            `yaml:"max_deposit_months"`
	Interest               seedInterest      `yaml:"interest"`
	Itemization            seedItemization   `yaml:"itemization"`
	AllowedDeliveryMethods []string          `yaml:"allowed_delivery_methods"`
	Citations              []models.Citation `yaml:"citations"`
	Penalties              []models.Penalty  `yaml:"penalties"`
}

type seedInterest struct {
	Required        bool   `yaml:"required"`
	Rate            string `yaml:"rate"`
	Source          string `yaml:"source"`
	Method          string `yaml:"method"`
	MinHoldingDays  int    `yaml:"min_holding_days"`
	AdminFeePercent string `yaml:"admin_fee_percent"`
}

type seedItemization struct {
	Required         bool   `yaml:"required"`
	ReceiptThreshold string `yaml:"receipt_threshold"`
}

// SeedReport counts what a seed run changed.
type SeedReport struct {
	Jurisdictions int
	Inserted      int
	Updated       int
	// Skipped lists rule sets left untouched because a case has locked them.
	Skipped []string
}

// ParseSeed decodes seed YAML into jurisdictions and their rule sets.
func ParseSeed(raw []byte, now time.Time) ([]models.Jurisdiction, []models.RuleSet, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("decode seed: %w", err)
	}
	var (
		jurisdictions []models.Jurisdiction
		ruleSets      []models.RuleSet
	)
	for _, sj := range file.Jurisdictions {
		code, ok := models.NormalizeState(sj.StateCode)
		if !ok {
			return nil, nil, fmt.Errorf("seed: unknown state code %q", sj.StateCode)
		}
		key := code
		if sj.City != nil {
			key += "|" + models.CityKey(*sj.City)
		}
		j := models.Jurisdiction{
			ID:        id.JurisdictionID(uuid.NewSHA1(seedNamespace, []byte(key))),
			State:     sj.State,
			StateCode: code,
			City:      sj.City,
			Coverage:  models.CoverageLevel(sj.Coverage),
		}
		if sj.LastVerified != "" {
			verified, err := time.Parse(time.DateOnly, sj.LastVerified)
			if err != nil {
				return nil, nil, fmt.Errorf("seed %s: last_verified: %w", key, err)
			}
			j.LastVerified = verified
		}
		jurisdictions = append(jurisdictions, j)

		for _, sr := range sj.RuleSets {
			rs, err := sr.toModel(j.ID, key, now)
			if err != nil {
				return nil, nil, err
			}
			ruleSets = append(ruleSets, rs)
		}
	}
	return jurisdictions, ruleSets, nil
}

func (sr seedRuleSet) toModel(jid id.JurisdictionID, key string, now time.Time) (models.RuleSet, error) {
	effective, err := time.Parse(time.DateOnly, sr.EffectiveDate)
	if err != nil {
		return models.RuleSet{}, fmt.Errorf("seed %s@%s: effective_date: %w", key, sr.Version, err)
	}
	rs := models.RuleSet{
		ID:                     id.RuleSetID(uuid.NewSHA1(seedNamespace, []byte(key+"@"+sr.Version))),
		JurisdictionID:         jid,
		Version:                sr.Version,
		EffectiveDate:          effective,
		ReturnDeadlineDays:     sr.ReturnDeadlineDays,
		AllowedDeliveryMethods: sr.AllowedDeliveryMethods,
		Citations:              sr.Citations,
		Penalties:              sr.Penalties,
		CreatedAt:              now,
		Interest: models.InterestRule{
			Required:       sr.Interest.Required,
			Source:         sr.Interest.Source,
			Method:         models.InterestMethod(sr.Interest.Method),
			MinHoldingDays: sr.Interest.MinHoldingDays,
		},
		Itemization: models.ItemizationRule{Required: sr.Itemization.Required},
	}
	if rs.Interest.Rate, err = optionalDecimal(sr.Interest.Rate); err != nil {
		return rs, fmt.Errorf("seed %s@%s: interest rate: %w", key, sr.Version, err)
	}
	if rs.Interest.AdminFeePercent, err = optionalDecimal(sr.Interest.AdminFeePercent); err != nil {
		return rs, fmt.Errorf("seed %s@%s: admin fee: %w", key, sr.Version, err)
	}
	if rs.MaxDepositMonths, err = optionalDecimal(sr.MaxDepositMonths); err != nil {
		return rs, fmt.Errorf("seed %s@%s: max deposit months: %w", key, sr.Version, err)
	}
	if sr.Itemization.ReceiptThreshold != "" {
		threshold, err := money.Parse(sr.Itemization.ReceiptThreshold)
		if err != nil {
			return rs, fmt.Errorf("seed %s@%s: receipt threshold: %w", key, sr.Version, err)
		}
		rs.Itemization.ReceiptThreshold = &threshold
	}
	rs.Normalize()
	return rs, nil
}

func optionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// Seed loads the embedded seed file into w.
func Seed(ctx context.Context, w Writer, now time.Time) (*SeedReport, error) {
	return SeedFrom(ctx, w, defaultSeed, now)
}

// SeedFrom writes every jurisdiction and rule set in raw. Existing unlocked
// rule sets are rewritten in place; locked ones are skipped and reported.
func SeedFrom(ctx context.Context, w Writer, raw []byte, now time.Time) (*SeedReport, error) {
	jurisdictions, ruleSets, err := ParseSeed(raw, now)
	if err != nil {
		return nil, err
	}
	report := &SeedReport{}
	for i := range jurisdictions {
		if err := w.SaveJurisdiction(ctx, &jurisdictions[i]); err != nil {
			return nil, fmt.Errorf("seed jurisdiction %s: %w", jurisdictions[i].StateCode, err)
		}
		report.Jurisdictions++
	}
	for i := range ruleSets {
		rs := &ruleSets[i]
		err := w.InsertRuleSet(ctx, rs)
		switch {
		case err == nil:
			report.Inserted++
			continue
		case !errors.Is(err, sentinel.ErrAlreadyExists):
			return nil, fmt.Errorf("seed rule set %s: %w", rs.Version, err)
		}
		err = w.UpdateRuleSet(ctx, rs)
		switch {
		case err == nil:
			report.Updated++
		case errors.Is(err, sentinel.ErrImmutable):
			report.Skipped = append(report.Skipped, rs.ID.String())
		default:
			return nil, fmt.Errorf("seed rule set %s: %w", rs.Version, err)
		}
	}
	return report, nil
}
