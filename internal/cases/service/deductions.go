package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"depositguard/internal/assist"
	"depositguard/internal/audit"
	"depositguard/internal/cases/models"
	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
)

// DeductionInput is the full editable state of a deduction. Updates replace
// every field.
type DeductionInput struct {
	Description   string
	Category      string
	Amount        money.Amount
	Notes         string
	AttachmentIDs []id.AttachmentID
	RiskOverride  *compliance.Level
	ItemAgeMonths *int
	DamageType    string
}

func (in *DeductionInput) normalize(c *models.Case) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "deduction description is required")
	}
	category, err := models.NormalizeCategory(in.Category)
	if err != nil {
		return err
	}
	in.Category = category
	if !in.Amount.GreaterThan(money.Zero) {
		return dErrors.New(dErrors.CodeValidation, "deduction amount must be positive")
	}
	in.Amount = in.Amount.Round()
	if in.DamageType, err = models.NormalizeDamageType(in.DamageType); err != nil {
		return err
	}
	if in.ItemAgeMonths != nil && *in.ItemAgeMonths < 0 {
		return dErrors.New(dErrors.CodeValidation, "item age cannot be negative")
	}
	if in.RiskOverride != nil && !in.RiskOverride.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown risk level %q", *in.RiskOverride)
	}
	if missing := c.MissingAttachments(in.AttachmentIDs); len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeValidation, "attachment %s is not on this case", missing[0])
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return nil
}

func (s *Service) AddDeduction(ctx context.Context, cid id.CaseID, expected int64, in DeductionInput) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "add_deduction", cid)
	defer func() { finish(err) }()

	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		if err := in.normalize(c); err != nil {
			return nil, err
		}
		d := models.Deduction{
			ID:            id.DeductionID(uuid.New()),
			Description:   in.Description,
			Category:      in.Category,
			Amount:        in.Amount,
			Notes:         in.Notes,
			AttachmentIDs: append([]id.AttachmentID{}, in.AttachmentIDs...),
			RiskOverride:  in.RiskOverride,
			ItemAgeMonths: in.ItemAgeMonths,
			DamageType:    in.DamageType,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		c.Deductions = append(c.Deductions, d)
		c.MarkContentChanged()
		return []audit.Event{{
			Action:      audit.ActionDeductionAdded,
			Description: fmt.Sprintf("Deduction added: %s ($%s)", d.Description, d.Amount),
			Metadata:    deductionMetadata(d),
		}}, nil
	})
}

// UpdateDeduction replaces a deduction's fields. Editing the description by
// hand clears the AI-generated flag; the preserved original stays.
func (s *Service) UpdateDeduction(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64, in DeductionInput) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "update_deduction", cid)
	defer func() { finish(err) }()

	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		d, ok := c.FindDeduction(did)
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "deduction not found")
		}
		if err := in.normalize(c); err != nil {
			return nil, err
		}
		previousAmount := d.Amount
		if in.Description != d.Description {
			d.AIGenerated = false
		}
		d.Description = in.Description
		d.Category = in.Category
		d.Amount = in.Amount
		d.Notes = in.Notes
		d.AttachmentIDs = append([]id.AttachmentID{}, in.AttachmentIDs...)
		d.RiskOverride = in.RiskOverride
		d.ItemAgeMonths = in.ItemAgeMonths
		d.DamageType = in.DamageType
		d.UpdatedAt = now
		c.MarkContentChanged()

		meta := deductionMetadata(*d)
		meta["previous_amount"] = previousAmount.String()
		return []audit.Event{{
			Action:      audit.ActionDeductionUpdated,
			Description: fmt.Sprintf("Deduction updated: %s ($%s)", d.Description, d.Amount),
			Metadata:    meta,
		}}, nil
	})
}

func (s *Service) DeleteDeduction(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "delete_deduction", cid)
	defer func() { finish(err) }()

	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, _ time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		d, ok := c.RemoveDeduction(did)
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "deduction not found")
		}
		c.MarkContentChanged()
		return []audit.Event{{
			Action:      audit.ActionDeductionDeleted,
			Description: fmt.Sprintf("Deduction removed: %s ($%s)", d.Description, d.Amount),
			Metadata:    deductionMetadata(d),
		}}, nil
	})
}

func deductionMetadata(d models.Deduction) map[string]string {
	return map[string]string{
		"deduction_id": d.ID.String(),
		"category":     d.Category,
		"amount":       d.Amount.String(),
	}
}

// SuggestDeductionWording asks the AI helper for a clearer description. It
// changes nothing; the caller accepts a suggestion explicitly.
func (s *Service) SuggestDeductionWording(ctx context.Context, cid id.CaseID, did id.DeductionID) (sug *assist.Suggestion, err error) {
	ctx, finish := s.start(ctx, "suggest_deduction_wording", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	d, ok := c.FindDeduction(did)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "deduction not found")
	}
	sug, err = s.improver.Improve(ctx, assist.DeductionContext{
		Description:   d.Description,
		Category:      d.Category,
		Amount:        d.Amount,
		DamageType:    d.DamageType,
		ItemAgeMonths: d.ItemAgeMonths,
		StateCode:     c.PropertyAddress.State,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "wording suggestion unavailable", "case_id", cid.String(), "error", err)
		return nil, translate(err, "deduction not found")
	}
	return sug, nil
}

// AcceptDeductionWording applies a suggested description the user approved.
func (s *Service) AcceptDeductionWording(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64, description string) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "accept_deduction_wording", cid)
	defer func() { finish(err) }()

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		d, ok := c.FindDeduction(did)
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "deduction not found")
		}
		previous := d.Description
		d.AcceptRevision(description)
		d.UpdatedAt = now
		c.MarkContentChanged()
		return []audit.Event{{
			Action:      audit.ActionDeductionWordingAccepted,
			Description: "Suggested wording accepted for deduction",
			Metadata: map[string]string{
				"deduction_id": d.ID.String(),
				"previous":     previous,
				"new":          description,
			},
		}}, nil
	})
}

func (s *Service) UpdateChecklistItem(ctx context.Context, cid id.CaseID, iid id.ChecklistItemID, expected int64, completed bool) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "update_checklist_item", cid)
	defer func() { finish(err) }()

	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		item, ok := c.FindChecklistItem(iid)
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "checklist item not found")
		}
		item.Completed = completed
		item.CompletedAt = nil
		state := "incomplete"
		if completed {
			at := now
			item.CompletedAt = &at
			state = "complete"
		}
		return []audit.Event{{
			Action:      audit.ActionChecklistItemUpdated,
			Description: fmt.Sprintf("Checklist item marked %s: %s", state, item.Label),
			Metadata:    map[string]string{"item_id": item.ID.String(), "completed": fmt.Sprint(completed)},
		}}, nil
	})
}

type AttachmentInput struct {
	FileName    string
	ContentType string
	Body        []byte
}

const maxAttachmentBytes = 10 << 20

// AddAttachment stores the file first and links it to the case only after
// the write succeeded.
func (s *Service) AddAttachment(ctx context.Context, cid id.CaseID, expected int64, in AttachmentInput) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "add_attachment", cid)
	defer func() { finish(err) }()

	name := path.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == "/" {
		return nil, dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if len(in.Body) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "attachment is empty")
	}
	if len(in.Body) > maxAttachmentBytes {
		return nil, dErrors.Newf(dErrors.CodeValidation, "attachment exceeds %d bytes", maxAttachmentBytes)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

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

	aid := id.AttachmentID(uuid.New())
	ref, err := s.objects.Put(ctx, models.AttachmentPath(cid, aid, name), in.Body, contentType)
	if err != nil {
		s.logger.ErrorContext(ctx, "attachment storage failed", "case_id", cid.String(), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "attachment storage failed")
	}

	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		c.Attachments = append(c.Attachments, models.Attachment{
			ID:          aid,
			FileName:    name,
			ContentType: contentType,
			StorageRef:  ref,
			SizeBytes:   int64(len(in.Body)),
			CreatedAt:   now,
		})
		return []audit.Event{{
			Action:      audit.ActionAttachmentAdded,
			Description: "Attachment added: " + name,
			Metadata:    map[string]string{"attachment_id": aid.String(), "size_bytes": fmt.Sprint(len(in.Body))},
		}}, nil
	})
}
