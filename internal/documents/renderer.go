// Package documents renders the artifacts a case produces and stores them.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"

	"depositguard/internal/cases/models"
	jmodels "depositguard/internal/jurisdiction/models"
	"depositguard/pkg/money"
)

const ContentTypeText = "text/plain; charset=utf-8"

// Snapshot is everything a document may show, frozen at generation time.
type Snapshot struct {
	Case            *models.Case
	Jurisdiction    *jmodels.Jurisdiction
	RuleSet         *jmodels.RuleSet
	TotalDeductions money.Amount
	Refund          money.Amount
	GeneratedAt     time.Time
}

type Rendered struct {
	Body        []byte
	ContentType string
}

// TextRenderer produces plain-text documents. Layout is deliberately
// minimal; a richer renderer can replace it behind the same method.
type TextRenderer struct {
	notice    *template.Template
	itemized  *template.Template
	evidence  *template.Template
	separator string
}

func NewTextRenderer() *TextRenderer {
	funcs := template.FuncMap{
		"date":    func(t time.Time) string { return t.Format("January 2, 2006") },
		"money":   func(a money.Amount) string { return "$" + a.String() },
		"tenants": tenantNames,
		"add":     func(a, b int) int { return a + b },
	}
	return &TextRenderer{
		notice:    template.Must(template.New("notice").Funcs(funcs).Parse(noticeTemplate)),
		itemized:  template.Must(template.New("itemized").Funcs(funcs).Parse(itemizedTemplate)),
		evidence:  template.Must(template.New("evidence").Funcs(funcs).Parse(evidenceTemplate)),
		separator: "\n" + strings.Repeat("=", 72) + "\n\n",
	}
}

// Render requires at least one tenant and a rule set on the snapshot.
func (r *TextRenderer) Render(ctx context.Context, snap Snapshot, docType models.DocumentType) (*Rendered, error) {
	if snap.Case == nil || len(snap.Case.Tenants) == 0 {
		return nil, fmt.Errorf("render %s: case has no tenants", docType)
	}
	if snap.RuleSet == nil {
		return nil, fmt.Errorf("render %s: no rule set", docType)
	}
	var (
		body []byte
		err  error
	)
	switch docType {
	case models.DocNoticeLetter:
		body, err = r.execute(r.notice, snap)
	case models.DocItemizedStatement:
		body, err = r.execute(r.itemized, snap)
	case models.DocDisputePacket:
		body, err = r.packet(ctx, snap)
	default:
		return nil, fmt.Errorf("render: unsupported document type %q", docType)
	}
	if err != nil {
		return nil, err
	}
	return &Rendered{Body: body, ContentType: ContentTypeText}, nil
}

// packet renders its sections in parallel and joins them in a fixed order.
func (r *TextRenderer) packet(ctx context.Context, snap Snapshot) ([]byte, error) {
	sections := []*template.Template{r.notice, r.itemized, r.evidence}
	parts := make([][]byte, len(sections))
	g, ctx := errgroup.WithContext(ctx)
	for i, tmpl := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.execute(tmpl, snap)
			if err != nil {
				return err
			}
			parts[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bytes.Join(parts, []byte(r.separator)), nil
}

func (r *TextRenderer) execute(tmpl *template.Template, snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newView(snap)); err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

type deductionLine struct {
	models.Deduction
	ReceiptRequired bool
	Evidence        []string
}

type view struct {
	Snapshot
	Location  string
	Property  string
	MailTo    string
	Lines     []deductionLine
	Citations []jmodels.Citation
}

func newView(snap Snapshot) view {
	c := snap.Case
	v := view{
		Snapshot:  snap,
		Property:  formatAddress(c.PropertyAddress),
		MailTo:    "(no forwarding address on file)",
		Citations: snap.RuleSet.Citations,
	}
	if snap.Jurisdiction != nil {
		v.Location = snap.Jurisdiction.State
		if snap.Jurisdiction.City != nil {
			v.Location = *snap.Jurisdiction.City + ", " + snap.Jurisdiction.State
		}
	}
	switch {
	case c.Delivery.Address != nil:
		v.MailTo = formatAddress(*c.Delivery.Address)
	case c.ForwardingAddress != nil:
		v.MailTo = formatAddress(*c.ForwardingAddress)
	}
	names := make(map[string]string, len(c.Attachments))
	for _, a := range c.Attachments {
		names[a.ID.String()] = a.FileName
	}
	threshold := snap.RuleSet.Itemization.ReceiptThreshold
	for _, d := range c.Deductions {
		line := deductionLine{Deduction: d}
		if threshold != nil && d.Amount.GreaterThan(*threshold) {
			line.ReceiptRequired = true
		}
		for _, aid := range d.AttachmentIDs {
			if name, ok := names[aid.String()]; ok {
				line.Evidence = append(line.Evidence, name)
			}
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}

func formatAddress(a models.Address) string {
	lines := []string{a.Line1}
	if a.Line2 != "" {
		lines = append(lines, a.Line2)
	}
	lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s, %s %s", a.City, a.State, a.PostalCode)))
	return strings.Join(lines, "\n")
}

func tenantNames(ts []models.Tenant) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

const noticeTemplate = `{{date .GeneratedAt}}

To: {{tenants .Case.Tenants}}
{{.MailTo}}

Re: Security deposit for
{{.Property}}

This letter accounts for the security deposit held for your tenancy from
{{date .Case.LeaseStart}} to {{date .Case.LeaseEnd}}. You moved out on {{date .Case.MoveOutDate}}.

  Security deposit        {{money .Case.DepositAmount}}
  Interest accrued        {{money .Case.DepositInterest}}
  Total deductions        {{money .TotalDeductions}}
  Amount returned to you  {{money .Refund}}
{{if .Lines}}
The deductions are listed in the enclosed itemized statement.
{{else}}
No deductions were taken from the deposit.
{{end}}
This accounting is provided within {{.RuleSet.ReturnDeadlineDays}} days of move-out{{if .Location}} under the rules for {{.Location}}{{end}}.
{{range .Citations}}  {{.Title}}{{if .Code}} ({{.Code}}){{end}}
{{end}}`

const itemizedTemplate = `ITEMIZED STATEMENT OF DEDUCTIONS

Property: {{.Property}}
Prepared: {{date .GeneratedAt}}
{{if .Lines}}
{{range $i, $l := .Lines}}{{add $i 1}}. {{$l.Description}}
   Category: {{$l.Category}}{{if $l.DamageType}}  Damage: {{$l.DamageType}}{{end}}
   Amount: {{money $l.Amount}}{{if $l.ReceiptRequired}}  (receipt enclosed){{end}}
{{if $l.Notes}}   Notes: {{$l.Notes}}
{{end}}{{end}}{{else}}
No deductions.
{{end}}
Total deductions: {{money .TotalDeductions}}
Amount returned:  {{money .Refund}}
`

const evidenceTemplate = `EVIDENCE INDEX
{{range $i, $l := .Lines}}
{{add $i 1}}. {{$l.Description}}
{{if $l.Evidence}}{{range $l.Evidence}}   - {{.}}
{{end}}{{else}}   - no supporting files
{{end}}{{end}}`
