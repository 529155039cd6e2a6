package models

import (
	"fmt"
	"strings"
	"time"

	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
)

type DocumentType string

const (
	DocNoticeLetter      DocumentType = "NOTICE_LETTER"
	DocItemizedStatement DocumentType = "ITEMIZED_STATEMENT"
	DocDisputePacket     DocumentType = "DISPUTE_PACKET"
)

func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case DocNoticeLetter, DocItemizedStatement, DocDisputePacket:
		return t, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown document type %q", raw)
}

// Document is a rendered artifact stored in object storage. (CaseID, DocType,
// SourceVersion) is unique: generation for the same case version is
// idempotent.
type Document struct {
	ID            id.DocumentID `json:"id"`
	CaseID        id.CaseID     `json:"case_id"`
	DocType       DocumentType  `json:"doc_type"`
	SourceVersion int64         `json:"source_version"`
	StorageRef    string        `json:"storage_ref"`
	ContentType   string        `json:"content_type"`
	SizeBytes     int64         `json:"size_bytes"`
	CreatedAt     time.Time     `json:"created_at"`
}

// DocumentPath is the deterministic object path for a generated document, so
// a retried write lands on the same key.
func DocumentPath(caseID id.CaseID, docType DocumentType, version int64) string {
	return fmt.Sprintf("cases/%s/%s/v%d", caseID, strings.ToLower(string(docType)), version)
}

// Attachment is an uploaded file (photo, receipt, mailing proof).
type Attachment struct {
	ID          id.AttachmentID `json:"id"`
	FileName    string          `json:"file_name"`
	ContentType string          `json:"content_type"`
	StorageRef  string          `json:"storage_ref"`
	SizeBytes   int64           `json:"size_bytes"`
	CreatedAt   time.Time       `json:"created_at"`
}

func AttachmentPath(caseID id.CaseID, aid id.AttachmentID, fileName string) string {
	return fmt.Sprintf("cases/%s/attachments/%s/%s", caseID, aid, fileName)
}
