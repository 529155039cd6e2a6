package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"depositguard/internal/cases/models"
	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	"depositguard/pkg/money"
	"depositguard/pkg/platform/sentinel"
	"depositguard/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists the case aggregate across cases, deductions,
// checklist_items, attachments and documents. Addresses, tenants and the
// delivery record are JSONB on the cases row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// caseDocuments holds the JSONB columns as strings; lib/pq would send []byte
// as bytea.
type caseDocuments struct {
	propertyAddress   string
	tenants           string
	forwardingAddress sql.NullString
	delivery          string
}

func encodeCase(c *models.Case) (caseDocuments, error) {
	var out caseDocuments
	raw, err := json.Marshal(c.PropertyAddress)
	if err != nil {
		return out, fmt.Errorf("encode property address: %w", err)
	}
	out.propertyAddress = string(raw)
	if raw, err = json.Marshal(c.Tenants); err != nil {
		return out, fmt.Errorf("encode tenants: %w", err)
	}
	out.tenants = string(raw)
	if c.ForwardingAddress != nil {
		if raw, err = json.Marshal(c.ForwardingAddress); err != nil {
			return out, fmt.Errorf("encode forwarding address: %w", err)
		}
		out.forwardingAddress = sql.NullString{String: string(raw), Valid: true}
	}
	if raw, err = json.Marshal(c.Delivery); err != nil {
		return out, fmt.Errorf("encode delivery: %w", err)
	}
	out.delivery = string(raw)
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	docs, err := encodeCase(c)
	if err != nil {
		return err
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		_, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
			INSERT INTO cases (id, owner_id, property_id, property_address, tenants, lease_start, lease_end,
				move_out_date, deposit_amount, deposit_interest, jurisdiction_id, rule_set_id, due_date, status,
				forwarding_address, delivery, closed_at, closed_reason, version, content_version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		`,
			uuid.UUID(c.ID), uuid.UUID(c.OwnerID), uuid.UUID(c.PropertyID), docs.propertyAddress, docs.tenants,
			c.LeaseStart, c.LeaseEnd, c.MoveOutDate, c.DepositAmount.String(), c.DepositInterest.String(),
			uuid.UUID(c.JurisdictionID), uuid.UUID(c.RuleSetID), c.DueDate, string(c.Status),
			docs.forwardingAddress, docs.delivery, c.ClosedAt, c.ClosedReason, c.Version, c.ContentVersion, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return sentinel.ErrAlreadyExists
			}
			return fmt.Errorf("insert case: %w", err)
		}
		return s.writeChildren(ctx, c)
	})
}

// Save writes the aggregate when the stored version still equals c.Version
// and bumps c.Version on success. The version predicate and the child rewrite
// share one transaction.
func (s *PostgresStore) Save(ctx context.Context, c *models.Case) error {
	docs, err := encodeCase(c)
	if err != nil {
		return err
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		exec := tx.ExecutorFrom(ctx, s.db)
		res, err := exec.ExecContext(ctx, `
			UPDATE cases SET move_out_date = $3, deposit_interest = $4, due_date = $5, status = $6,
				forwarding_address = $7, delivery = $8, closed_at = $9, closed_reason = $10,
				updated_at = $11, content_version = $12, version = version + 1
			WHERE id = $1 AND version = $2
		`,
			uuid.UUID(c.ID), c.Version, c.MoveOutDate, c.DepositInterest.String(), c.DueDate, string(c.Status),
			docs.forwardingAddress, docs.delivery, c.ClosedAt, c.ClosedReason, c.UpdatedAt, c.ContentVersion,
		)
		if err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		if n == 0 {
			var exists bool
			if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, uuid.UUID(c.ID)).Scan(&exists); err != nil {
				return fmt.Errorf("update case: %w", err)
			}
			if !exists {
				return sentinel.ErrNotFound
			}
			return sentinel.ErrStaleVersion
		}
		if _, err := exec.ExecContext(ctx, `DELETE FROM deductions WHERE case_id = $1`, uuid.UUID(c.ID)); err != nil {
			return fmt.Errorf("clear deductions: %w", err)
		}
		if _, err := exec.ExecContext(ctx, `DELETE FROM checklist_items WHERE case_id = $1`, uuid.UUID(c.ID)); err != nil {
			return fmt.Errorf("clear checklist: %w", err)
		}
		if err := s.writeChildren(ctx, c); err != nil {
			return err
		}
		c.Version++
		return nil
	})
}

// writeChildren inserts deductions and checklist items and adds attachments
// not yet stored. Attachments are never removed.
func (s *PostgresStore) writeChildren(ctx context.Context, c *models.Case) error {
	exec := tx.ExecutorFrom(ctx, s.db)
	for i, d := range c.Deductions {
		var override sql.NullString
		if d.RiskOverride != nil {
			override = sql.NullString{String: string(*d.RiskOverride), Valid: true}
		}
		var age sql.NullInt64
		if d.ItemAgeMonths != nil {
			age = sql.NullInt64{Int64: int64(*d.ItemAgeMonths), Valid: true}
		}
		var original sql.NullString
		if d.OriginalDescription != nil {
			original = sql.NullString{String: *d.OriginalDescription, Valid: true}
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO deductions (id, case_id, position, description, category, amount, notes, attachment_ids,
				risk_override, item_age_months, damage_type, ai_generated, original_description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`,
			uuid.UUID(d.ID), uuid.UUID(c.ID), i, d.Description, d.Category, d.Amount.String(), d.Notes,
			pq.Array(attachmentStrings(d.AttachmentIDs)), override, age, d.DamageType, d.AIGenerated, original,
			d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert deduction: %w", err)
		}
	}
	for _, item := range c.Checklist {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO checklist_items (id, case_id, label, completed, blocks_export, sort_order, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.UUID(item.ID), uuid.UUID(c.ID), item.Label, item.Completed, item.BlocksExport, item.SortOrder, item.CompletedAt)
		if err != nil {
			return fmt.Errorf("insert checklist item: %w", err)
		}
	}
	for _, a := range c.Attachments {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO attachments (id, case_id, file_name, content_type, storage_ref, size_bytes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, uuid.UUID(a.ID), uuid.UUID(c.ID), a.FileName, a.ContentType, a.StorageRef, a.SizeBytes, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
	}
	return nil
}

func attachmentStrings(ids []id.AttachmentID) []string {
	out := make([]string, len(ids))
	for i, aid := range ids {
		out[i] = aid.String()
	}
	return out
}

const caseColumns = `id, owner_id, property_id, property_address, tenants, lease_start, lease_end,
	move_out_date, deposit_amount, deposit_interest, jurisdiction_id, rule_set_id, due_date, status,
	forwarding_address, delivery, closed_at, closed_reason, version, content_version, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, cid id.CaseID) (*models.Case, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, uuid.UUID(cid))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	if err := s.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Case, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE owner_id = $1 ORDER BY created_at DESC`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	var out []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list cases: %w", err)
	}
	_ = rows.Close()
	for _, c := range out {
		if err := s.loadChildren(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*models.Case, error) {
	var (
		c                                       models.Case
		rawID, rawOwner, rawProperty            uuid.UUID
		rawJurisdiction, rawRuleSet             uuid.UUID
		propertyAddress, tenants, delivery      []byte
		forwardingAddress                       []byte
		deposit, interest, status, closedReason string
		closedAt                                sql.NullTime
	)
	if err := row.Scan(&rawID, &rawOwner, &rawProperty, &propertyAddress, &tenants, &c.LeaseStart, &c.LeaseEnd,
		&c.MoveOutDate, &deposit, &interest, &rawJurisdiction, &rawRuleSet, &c.DueDate, &status,
		&forwardingAddress, &delivery, &closedAt, &closedReason, &c.Version, &c.ContentVersion, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CaseID(rawID)
	c.OwnerID = id.UserID(rawOwner)
	c.PropertyID = id.PropertyID(rawProperty)
	c.JurisdictionID = id.JurisdictionID(rawJurisdiction)
	c.RuleSetID = id.RuleSetID(rawRuleSet)
	c.Status = models.Status(status)
	c.ClosedReason = closedReason
	if closedAt.Valid {
		t := closedAt.Time
		c.ClosedAt = &t
	}
	var err error
	if c.DepositAmount, err = money.Parse(deposit); err != nil {
		return nil, fmt.Errorf("decode deposit: %w", err)
	}
	if c.DepositInterest, err = money.Parse(interest); err != nil {
		return nil, fmt.Errorf("decode interest: %w", err)
	}
	if err := json.Unmarshal(propertyAddress, &c.PropertyAddress); err != nil {
		return nil, fmt.Errorf("decode property address: %w", err)
	}
	if err := json.Unmarshal(tenants, &c.Tenants); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	if len(forwardingAddress) > 0 {
		var addr models.Address
		if err := json.Unmarshal(forwardingAddress, &addr); err != nil {
			return nil, fmt.Errorf("decode forwarding address: %w", err)
		}
		c.ForwardingAddress = &addr
	}
	if len(delivery) > 0 {
		if err := json.Unmarshal(delivery, &c.Delivery); err != nil {
			return nil, fmt.Errorf("decode delivery: %w", err)
		}
	}
	return &c, nil
}

func (s *PostgresStore) loadChildren(ctx context.Context, c *models.Case) error {
	var err error
	if c.Deductions, err = s.loadDeductions(ctx, c.ID); err != nil {
		return err
	}
	if c.Checklist, err = s.loadChecklist(ctx, c.ID); err != nil {
		return err
	}
	if c.Attachments, err = s.loadAttachments(ctx, c.ID); err != nil {
		return err
	}
	if c.Documents, err = s.loadDocuments(ctx, c.ID); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) loadDeductions(ctx context.Context, cid id.CaseID) ([]models.Deduction, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, description, category, amount, notes, attachment_ids, risk_override, item_age_months,
			damage_type, ai_generated, original_description, created_at, updated_at
		FROM deductions WHERE case_id = $1 ORDER BY position
	`, uuid.UUID(cid))
	if err != nil {
		return nil, fmt.Errorf("load deductions: %w", err)
	}
	defer rows.Close()

	out := []models.Deduction{}
	for rows.Next() {
		var (
			d           models.Deduction
			rawID       uuid.UUID
			amount      string
			attachments pq.StringArray
			override    sql.NullString
			age         sql.NullInt64
			original    sql.NullString
		)
		if err := rows.Scan(&rawID, &d.Description, &d.Category, &amount, &d.Notes, &attachments, &override,
			&age, &d.DamageType, &d.AIGenerated, &original, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		d.ID = id.DeductionID(rawID)
		if d.Amount, err = money.Parse(amount); err != nil {
			return nil, fmt.Errorf("decode deduction amount: %w", err)
		}
		d.AttachmentIDs = make([]id.AttachmentID, 0, len(attachments))
		for _, raw := range attachments {
			aid, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("decode attachment id: %w", err)
			}
			d.AttachmentIDs = append(d.AttachmentIDs, id.AttachmentID(aid))
		}
		if override.Valid {
			l := compliance.Level(override.String)
			d.RiskOverride = &l
		}
		if age.Valid {
			n := int(age.Int64)
			d.ItemAgeMonths = &n
		}
		if original.Valid {
			o := original.String
			d.OriginalDescription = &o
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load deductions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) loadChecklist(ctx context.Context, cid id.CaseID) ([]models.ChecklistItem, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, label, completed, blocks_export, sort_order, completed_at
		FROM checklist_items WHERE case_id = $1 ORDER BY sort_order
	`, uuid.UUID(cid))
	if err != nil {
		return nil, fmt.Errorf("load checklist: %w", err)
	}
	defer rows.Close()

	out := []models.ChecklistItem{}
	for rows.Next() {
		var (
			item        models.ChecklistItem
			rawID       uuid.UUID
			completedAt sql.NullTime
		)
		if err := rows.Scan(&rawID, &item.Label, &item.Completed, &item.BlocksExport, &item.SortOrder, &completedAt); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		item.ID = id.ChecklistItemID(rawID)
		if completedAt.Valid {
			t := completedAt.Time
			item.CompletedAt = &t
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load checklist: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) loadAttachments(ctx context.Context, cid id.CaseID) ([]models.Attachment, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, file_name, content_type, storage_ref, size_bytes, created_at
		FROM attachments WHERE case_id = $1 ORDER BY created_at, id
	`, uuid.UUID(cid))
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()

	out := []models.Attachment{}
	for rows.Next() {
		var (
			a     models.Attachment
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &a.FileName, &a.ContentType, &a.StorageRef, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.ID = id.AttachmentID(rawID)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	return out, nil
}

const documentColumns = `id, case_id, doc_type, source_version, storage_ref, content_type, size_bytes, created_at`

func (s *PostgresStore) loadDocuments(ctx context.Context, cid id.CaseID) ([]models.Document, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE case_id = $1 ORDER BY created_at, source_version`, uuid.UUID(cid))
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	return out, nil
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		doc           models.Document
		rawID, rawCID uuid.UUID
		docType       string
	)
	if err := row.Scan(&rawID, &rawCID, &docType, &doc.SourceVersion, &doc.StorageRef, &doc.ContentType,
		&doc.SizeBytes, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(rawID)
	doc.CaseID = id.CaseID(rawCID)
	doc.DocType = models.DocumentType(docType)
	return &doc, nil
}

func (s *PostgresStore) FindDocument(ctx context.Context, cid id.CaseID, docType models.DocumentType, version int64) (*models.Document, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE case_id = $1 AND doc_type = $2 AND source_version = $3`,
		uuid.UUID(cid), string(docType), version)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

// InsertDocument links a stored object to the case. The unique key on
// (case_id, doc_type, source_version) turns a concurrent duplicate into
// ErrAlreadyExists.
func (s *PostgresStore) InsertDocument(ctx context.Context, doc *models.Document) error {
	_, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(doc.ID), uuid.UUID(doc.CaseID), string(doc.DocType), doc.SourceVersion, doc.StorageRef,
		doc.ContentType, doc.SizeBytes, doc.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}
