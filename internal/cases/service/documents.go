package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"depositguard/internal/audit"
	"depositguard/internal/cases/models"
	"depositguard/internal/compliance"
	"depositguard/internal/documents"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/platform/sentinel"
	"depositguard/pkg/requestcontext"
)

// GeneratedDocument is the result of a generation request. Reused is true
// when a document for the same case version already existed.
type GeneratedDocument struct {
	Document models.Document `json:"document"`
	Reused   bool            `json:"reused"`
}

// GenerateDocument renders docType for the case's current version and links
// it to the case. It is idempotent per (case, type, version): the object path
// is deterministic, and an existing document for the key is returned as-is.
// Generating does not change the case version. Nothing is linked unless the
// storage write succeeded.
func (s *Service) GenerateDocument(ctx context.Context, cid id.CaseID, expected int64, docType models.DocumentType) (out *GeneratedDocument, err error) {
	ctx, finish := s.start(ctx, "generate_document", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(c, expected); err != nil {
		return nil, err
	}
	if err := c.EnsureEditable(); err != nil {
		return nil, err
	}

	existing, err := s.store.FindDocument(ctx, cid, docType, c.Version)
	switch {
	case err == nil:
		s.metrics.IncrementDocument(string(docType), true)
		return &GeneratedDocument{Document: *existing, Reused: true}, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, translate(err, "document not found")
	}

	if len(c.Tenants) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "add at least one tenant before generating documents")
	}
	rs, err := s.rules.Get(ctx, c.RuleSetID)
	if err != nil {
		return nil, err
	}
	j, err := s.rules.Jurisdiction(ctx, c.JurisdictionID)
	if err != nil {
		s.logger.WarnContext(ctx, "jurisdiction lookup failed; rendering without it",
			"case_id", cid.String(), "error", err)
		j = nil
	}

	now := requestcontext.Now(ctx).UTC()
	total := c.TotalDeductions()
	rendered, err := s.renderer.Render(ctx, documents.Snapshot{
		Case:            c,
		Jurisdiction:    j,
		RuleSet:         rs,
		TotalDeductions: total,
		Refund:          compliance.Refund(c.DepositAmount, c.DepositInterest, total),
		GeneratedAt:     now,
	}, docType)
	if err != nil {
		s.logger.ErrorContext(ctx, "document rendering failed", "case_id", cid.String(), "doc_type", string(docType), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "document rendering failed")
	}

	ref, err := s.objects.Put(ctx, models.DocumentPath(cid, docType, c.Version), rendered.Body, rendered.ContentType)
	if err != nil {
		s.logger.ErrorContext(ctx, "document storage failed", "case_id", cid.String(), "doc_type", string(docType), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "document storage failed")
	}

	doc := models.Document{
		ID:            id.DocumentID(uuid.New()),
		CaseID:        cid,
		DocType:       docType,
		SourceVersion: c.Version,
		StorageRef:    ref,
		ContentType:   rendered.ContentType,
		SizeBytes:     int64(len(rendered.Body)),
		CreatedAt:     now,
	}
	reused := false
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		err := s.store.InsertDocument(ctx, &doc)
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			winner, ferr := s.store.FindDocument(ctx, cid, docType, c.Version)
			if ferr != nil {
				return translate(ferr, "document not found")
			}
			doc = *winner
			reused = true
			return nil
		}
		if err != nil {
			return translate(err, "case not found")
		}
		return s.record(ctx, cid, now, audit.Event{
			Action:      audit.ActionDocumentGenerated,
			Description: "Generated " + humanDocType(docType),
			Metadata: map[string]string{
				"document_id":    doc.ID.String(),
				"doc_type":       string(docType),
				"source_version": strconv.FormatInt(c.Version, 10),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementDocument(string(docType), reused)
	s.logger.InfoContext(ctx, "document generated",
		"case_id", cid.String(),
		"doc_type", string(docType),
		"source_version", c.Version,
		"reused", reused,
	)
	return &GeneratedDocument{Document: doc, Reused: reused}, nil
}

func humanDocType(t models.DocumentType) string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
}

// DocumentLink is a time-limited download URL.
type DocumentLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentURL signs a download link for a generated document.
func (s *Service) DocumentURL(ctx context.Context, cid id.CaseID, did id.DocumentID) (link *DocumentLink, err error) {
	ctx, finish := s.start(ctx, "document_url", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	for _, d := range c.Documents {
		if d.ID != did {
			continue
		}
		u, err := s.objects.SignedURL(ctx, d.StorageRef, s.urlTTL)
		if err != nil {
			return nil, translate(err, "document not found")
		}
		return &DocumentLink{URL: u, ExpiresAt: requestcontext.Now(ctx).UTC().Add(s.urlTTL)}, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
}
