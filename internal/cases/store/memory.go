package store

import (
	"context"
	"slices"
	"sync"

	"depositguard/internal/cases/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/platform/sentinel"
)

type documentKey struct {
	caseID  id.CaseID
	docType models.DocumentType
	version int64
}

// InMemory keeps case aggregates in process memory. Every read and write
// deep-copies so callers can mutate what they get back.
type InMemory struct {
	mu        sync.RWMutex
	cases     map[id.CaseID]*models.Case
	documents map[documentKey]models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{
		cases:     make(map[id.CaseID]*models.Case),
		documents: make(map[documentKey]models.Document),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	stored := c.Clone()
	stored.Documents = nil
	s.cases[c.ID] = stored
	return nil
}

func (s *InMemory) Get(_ context.Context, cid id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[cid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withDocuments(c), nil
}

func (s *InMemory) ListByOwner(_ context.Context, owner id.UserID) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Case
	for _, c := range s.cases {
		if c.OwnerID == owner {
			out = append(out, s.withDocuments(c))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Save replaces the aggregate when the stored version still equals c.Version
// and bumps c.Version on success. Documents are written through
// InsertDocument only.
func (s *InMemory) Save(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.cases[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != c.Version {
		return sentinel.ErrStaleVersion
	}
	c.Version++
	stored := c.Clone()
	stored.Documents = nil
	s.cases[c.ID] = stored
	return nil
}

func (s *InMemory) FindDocument(_ context.Context, cid id.CaseID, docType models.DocumentType, version int64) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentKey{caseID: cid, docType: docType, version: version}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

func (s *InMemory) InsertDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[doc.CaseID]; !ok {
		return sentinel.ErrNotFound
	}
	key := documentKey{caseID: doc.CaseID, docType: doc.DocType, version: doc.SourceVersion}
	if _, ok := s.documents[key]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.documents[key] = *doc
	return nil
}

func (s *InMemory) withDocuments(c *models.Case) *models.Case {
	out := c.Clone()
	out.Documents = nil
	for k, doc := range s.documents {
		if k.caseID == c.ID {
			out.Documents = append(out.Documents, doc)
		}
	}
	slices.SortFunc(out.Documents, func(a, b models.Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.SourceVersion - b.SourceVersion)
	})
	return out
}

func sortNewestFirst(cs []*models.Case) {
	slices.SortFunc(cs, func(a, b *models.Case) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
