package store

import (
	"context"
	"maps"
	"sync"

	"depositguard/internal/audit"
	id "depositguard/pkg/domain"
)

// InMemory keeps audit events per case. Events can only be appended.
type InMemory struct {
	mu     sync.RWMutex
	seq    int64
	events map[id.CaseID][]audit.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.CaseID][]audit.Event)}
}

func (s *InMemory) Append(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	event.Seq = s.seq
	stored := *event
	stored.Metadata = maps.Clone(event.Metadata)
	s.events[event.CaseID] = append(s.events[event.CaseID], stored)
	return nil
}

func (s *InMemory) ListByCase(_ context.Context, caseID id.CaseID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.events[caseID]
	out := make([]audit.Event, len(src))
	for i, e := range src {
		out[i] = e
		out[i].Metadata = maps.Clone(e.Metadata)
	}
	return out, nil
}
