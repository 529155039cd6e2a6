package store

import (
	"context"
	"sync"
	"time"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/platform/sentinel"
)

type jurisdictionKey struct {
	stateCode string
	city      string
}

// InMemory stores jurisdictions and rule sets in process memory.
type InMemory struct {
	mu            sync.RWMutex
	jurisdictions map[id.JurisdictionID]models.Jurisdiction
	byLocation    map[jurisdictionKey]id.JurisdictionID
	ruleSets      map[id.RuleSetID]models.RuleSet
}

func NewInMemory() *InMemory {
	return &InMemory{
		jurisdictions: make(map[id.JurisdictionID]models.Jurisdiction),
		byLocation:    make(map[jurisdictionKey]id.JurisdictionID),
		ruleSets:      make(map[id.RuleSetID]models.RuleSet),
	}
}

func locationKey(stateCode string, city *string) jurisdictionKey {
	k := jurisdictionKey{stateCode: stateCode}
	if city != nil {
		k.city = models.CityKey(*city)
	}
	return k
}

// SaveJurisdiction inserts or replaces a jurisdiction keyed by (state code, city).
func (s *InMemory) SaveJurisdiction(_ context.Context, j *models.Jurisdiction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := locationKey(j.StateCode, j.City)
	if existing, ok := s.byLocation[key]; ok && existing != j.ID {
		j.ID = existing
	}
	s.jurisdictions[j.ID] = *j
	s.byLocation[key] = j.ID
	return nil
}

// FindJurisdiction returns the record for (stateCode, city). A nil city
// selects the state-level record.
func (s *InMemory) FindJurisdiction(_ context.Context, stateCode string, city *string) (*models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jid, ok := s.byLocation[locationKey(stateCode, city)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	j := s.jurisdictions[jid]
	return &j, nil
}

func (s *InMemory) FindJurisdictionByID(_ context.Context, jid id.JurisdictionID) (*models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jurisdictions[jid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &j, nil
}

// InsertRuleSet adds a new rule set. Version labels are unique per jurisdiction.
func (s *InMemory) InsertRuleSet(_ context.Context, rs *models.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ruleSets[rs.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	for _, existing := range s.ruleSets {
		if existing.JurisdictionID == rs.JurisdictionID && existing.Version == rs.Version {
			return sentinel.ErrAlreadyExists
		}
	}
	s.ruleSets[rs.ID] = rs.Clone()
	return nil
}

// UpdateRuleSet rewrites an unreferenced rule set. Locked rule sets are
// immutable and return sentinel.ErrImmutable.
func (s *InMemory) UpdateRuleSet(_ context.Context, rs *models.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.ruleSets[rs.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.IsLocked() {
		return sentinel.ErrImmutable
	}
	updated := rs.Clone()
	updated.LockedAt = nil
	updated.CreatedAt = existing.CreatedAt
	s.ruleSets[rs.ID] = updated
	return nil
}

func (s *InMemory) FindRuleSet(_ context.Context, rid id.RuleSetID) (*models.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.ruleSets[rid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := rs.Clone()
	return &out, nil
}

// ListRuleSets returns every rule set of a jurisdiction in no particular order.
func (s *InMemory) ListRuleSets(_ context.Context, jid id.JurisdictionID) ([]models.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RuleSet
	for _, rs := range s.ruleSets {
		if rs.JurisdictionID == jid {
			out = append(out, rs.Clone())
		}
	}
	return out, nil
}

// LockRuleSet stamps LockedAt once; later calls keep the first timestamp.
func (s *InMemory) LockRuleSet(_ context.Context, rid id.RuleSetID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.ruleSets[rid]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rs.LockedAt == nil {
		rs.LockedAt = &at
		s.ruleSets[rid] = rs
	}
	return nil
}
