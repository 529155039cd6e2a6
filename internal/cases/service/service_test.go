package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"depositguard/internal/assist"
	"depositguard/internal/audit"
	auditstore "depositguard/internal/audit/store"
	"depositguard/internal/cases/metrics"
	"depositguard/internal/cases/models"
	casestore "depositguard/internal/cases/store"
	"depositguard/internal/compliance"
	"depositguard/internal/documents"
	"depositguard/internal/documents/objectstore"
	jservice "depositguard/internal/jurisdiction/service"
	jstore "depositguard/internal/jurisdiction/store"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
	"depositguard/pkg/platform/sentinel"
	"depositguard/pkg/requestcontext"
)

type fakeImprover struct {
	suggestion *assist.Suggestion
	err        error
	calls      int
}

func (f *fakeImprover) Improve(context.Context, assist.DeductionContext) (*assist.Suggestion, error) {
	f.calls++
	return f.suggestion, f.err
}

type failingObjects struct{}

func (failingObjects) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("timeout")
}

func (failingObjects) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", sentinel.ErrUnavailable
}

type ServiceSuite struct {
	suite.Suite
	now       time.Time
	owner     id.UserID
	ctx       context.Context
	rules     *jservice.Service
	ruleStore *jstore.InMemory
	cases     *casestore.InMemory
	auditLog  *audit.Recorder
	objects   *objectstore.Memory
	improver  *fakeImprover
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	s.owner = id.UserID(uuid.New())
	s.ctx = requestcontext.WithTime(requestcontext.WithUserID(context.Background(), s.owner), s.now)

	s.ruleStore = jstore.NewInMemory()
	_, err := jstore.Seed(context.Background(), s.ruleStore, s.now)
	s.Require().NoError(err)
	s.rules = jservice.New(s.ruleStore, jservice.WithClock(func() time.Time { return s.now }))

	s.cases = casestore.NewInMemory()
	s.auditLog = audit.NewRecorder(auditstore.NewInMemory(), nil)
	s.objects = objectstore.NewMemory()
	s.improver = &fakeImprover{}
	s.service = s.newService(s.objects)
}

func (s *ServiceSuite) newService(objects ObjectStore) *Service {
	return New(s.cases, s.rules, s.auditLog, documents.NewTextRenderer(), objects,
		WithImprover(s.improver),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
}

func (s *ServiceSuite) sfInput() CreateCaseInput {
	return CreateCaseInput{
		PropertyAddress: models.Address{Line1: "100 Market St", City: "san  francisco", State: "California", PostalCode: "94105"},
		Tenants:         []models.Tenant{{Name: "Ana Ruiz", Email: "ana@example.com"}},
		LeaseStart:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		LeaseEnd:        time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		MoveOutDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DepositAmount:   money.MustParse("3200"),
		ForwardingAddress: &models.Address{
			Line1: "9 Oak Ave", City: "Oakland", State: "CA", PostalCode: "94601",
		},
	}
}

func (s *ServiceSuite) createSF() *models.CaseView {
	view, err := s.service.CreateCase(s.ctx, s.sfInput())
	s.Require().NoError(err)
	return view
}

func (s *ServiceSuite) addDeduction(view *models.CaseView, desc, category, amount string) *models.CaseView {
	out, err := s.service.AddDeduction(s.ctx, view.ID, view.Version, DeductionInput{
		Description: desc,
		Category:    category,
		Amount:      money.MustParse(amount),
	})
	s.Require().NoError(err)
	return out
}

func (s *ServiceSuite) actions(cid id.CaseID) []audit.Action {
	events, err := s.service.ListAuditEvents(s.ctx, cid)
	s.Require().NoError(err)
	out := make([]audit.Action, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}

// makeReady completes the blocking checklist and generates both required
// documents.
func (s *ServiceSuite) makeReady(view *models.CaseView) *models.CaseView {
	var err error
	for _, item := range view.Checklist {
		if !item.BlocksExport {
			continue
		}
		view, err = s.service.UpdateChecklistItem(s.ctx, view.ID, item.ID, view.Version, true)
		s.Require().NoError(err)
	}
	for _, t := range []models.DocumentType{models.DocNoticeLetter, models.DocItemizedStatement} {
		_, err := s.service.GenerateDocument(s.ctx, view.ID, view.Version, t)
		s.Require().NoError(err)
	}
	view, err = s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	return view
}

// =============================================================================
// Case creation
// =============================================================================

func (s *ServiceSuite) TestCreateCase_SanFrancisco() {
	view := s.createSF()
	view = s.addDeduction(view, "Carpet replacement in the living room", "repair", "400")
	view = s.addDeduction(view, "Deep clean of kitchen and bathrooms", "CLEANING", "125")

	s.Equal(models.StatusActive, view.Status)
	s.Equal("2026-01-22", view.DueDate.Format(time.DateOnly))
	s.Equal(17, view.DaysRemaining)
	s.Equal("160.00", view.DepositInterest.String())
	s.Equal("525.00", view.TotalDeductions.String())
	s.Equal("2835.00", view.RefundAmount.String())
	s.Equal(int64(3), view.Version)
	s.Len(view.Checklist, len(models.DefaultChecklist()))

	rs, err := s.rules.Get(s.ctx, view.RuleSetID)
	s.Require().NoError(err)
	s.True(rs.IsLocked(), "creating a case locks its rule set")

	s.Equal([]audit.Action{audit.ActionCaseCreated, audit.ActionDeductionAdded, audit.ActionDeductionAdded}, s.actions(view.ID))
}

func (s *ServiceSuite) TestCreateCase_UnknownCityUsesStateRules() {
	in := s.sfInput()
	in.PropertyAddress.City = "Fresno"
	view, err := s.service.CreateCase(s.ctx, in)
	s.Require().NoError(err)

	s.Equal("0.00", view.DepositInterest.String(), "state rules require no interest")
	events, err := s.service.ListAuditEvents(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("STATE_ONLY", events[0].Metadata["coverage"])
}

func (s *ServiceSuite) TestCreateCase_Validation() {
	cases := map[string]func(*CreateCaseInput){
		"zero deposit":        func(in *CreateCaseInput) { in.DepositAmount = money.Zero },
		"missing move-out":    func(in *CreateCaseInput) { in.MoveOutDate = time.Time{} },
		"lease ends early":    func(in *CreateCaseInput) { in.LeaseEnd = in.LeaseStart.AddDate(0, 0, -1) },
		"move-out too early":  func(in *CreateCaseInput) { in.MoveOutDate = in.LeaseStart.AddDate(0, -1, 0) },
		"unnamed tenant":      func(in *CreateCaseInput) { in.Tenants = []models.Tenant{{Name: " "}} },
		"unknown state":       func(in *CreateCaseInput) { in.PropertyAddress.State = "Atlantis" },
		"incomplete property": func(in *CreateCaseInput) { in.PropertyAddress.Line1 = "" },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			in := s.sfInput()
			mutate(&in)
			_, err := s.service.CreateCase(s.ctx, in)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestCreateCase_RequiresUser() {
	_, err := s.service.CreateCase(requestcontext.WithTime(context.Background(), s.now), s.sfInput())
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// =============================================================================
// Concurrency and ownership
// =============================================================================

func (s *ServiceSuite) TestStaleVersionIsConflict() {
	view := s.createSF()
	first := s.addDeduction(view, "Replace broken blinds in bedroom", "REPAIR", "80")

	_, err := s.service.AddDeduction(s.ctx, view.ID, view.Version, DeductionInput{
		Description: "Second editor's change", Category: "OTHER", Amount: money.MustParse("10"),
	})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	current, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(first.Version, current.Version)
	s.Len(current.Deductions, 1)
}

func (s *ServiceSuite) TestOtherUsersCasesAreNotFound() {
	view := s.createSF()
	other := requestcontext.WithUserID(s.ctx, id.UserID(uuid.New()))

	_, err := s.service.GetCase(other, view.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	list, err := s.service.ListCases(other)
	s.Require().NoError(err)
	s.Empty(list)

	mine, err := s.service.ListCases(s.ctx)
	s.Require().NoError(err)
	s.Len(mine, 1)
}

// =============================================================================
// Edits
// =============================================================================

func (s *ServiceSuite) TestUpdateMoveOutDate() {
	view := s.createSF()
	view, err := s.service.UpdateMoveOutDate(s.ctx, view.ID, view.Version, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal("2026-01-24", view.DueDate.Format(time.DateOnly))
	s.Equal("160.88", view.DepositInterest.String())

	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusPendingSend})
	s.Require().NoError(err)
	_, err = s.service.UpdateMoveOutDate(s.ctx, view.ID, view.Version, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "due date is frozen after ACTIVE")
}

func (s *ServiceSuite) TestUpdateAndDeleteDeduction() {
	view := s.createSF()
	view = s.addDeduction(view, "Patch and paint hallway wall", "PAINTING", "250")
	did := view.Deductions[0].ID

	view, err := s.service.UpdateDeduction(s.ctx, view.ID, did, view.Version, DeductionInput{
		Description: "Patch and paint hallway wall after furniture damage",
		Category:    "PAINTING",
		Amount:      money.MustParse("300"),
		DamageType:  "beyond_normal_wear",
	})
	s.Require().NoError(err)
	s.Equal("300.00", view.Deductions[0].Amount.String())
	s.Equal("BEYOND_NORMAL_WEAR", view.Deductions[0].DamageType)

	_, err = s.service.UpdateDeduction(s.ctx, view.ID, id.DeductionID(uuid.New()), view.Version, DeductionInput{
		Description: "x", Category: "OTHER", Amount: money.MustParse("1"),
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.UpdateDeduction(s.ctx, view.ID, did, view.Version, DeductionInput{
		Description: "Wall", Category: "OTHER", Amount: money.MustParse("1"),
		AttachmentIDs: []id.AttachmentID{id.AttachmentID(uuid.New())},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "attachments must belong to the case")

	view, err = s.service.DeleteDeduction(s.ctx, view.ID, did, view.Version)
	s.Require().NoError(err)
	s.Empty(view.Deductions)
	s.Equal([]audit.Action{
		audit.ActionCaseCreated, audit.ActionDeductionAdded, audit.ActionDeductionUpdated, audit.ActionDeductionDeleted,
	}, s.actions(view.ID))
}

func (s *ServiceSuite) TestWordingSuggestionIsNeverAppliedAutomatically() {
	view := s.createSF()
	view = s.addDeduction(view, "carpet dirty", "CLEANING", "125")
	did := view.Deductions[0].ID
	s.improver.suggestion = &assist.Suggestion{Description: "Professional cleaning of pet stains on the bedroom carpet"}

	sug, err := s.service.SuggestDeductionWording(s.ctx, view.ID, did)
	s.Require().NoError(err)
	s.Equal("Professional cleaning of pet stains on the bedroom carpet", sug.Description)

	unchanged, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("carpet dirty", unchanged.Deductions[0].Description)
	s.Equal(view.Version, unchanged.Version)

	view, err = s.service.AcceptDeductionWording(s.ctx, view.ID, did, view.Version, sug.Description)
	s.Require().NoError(err)
	d := view.Deductions[0]
	s.True(d.AIGenerated)
	s.Require().NotNil(d.OriginalDescription)
	s.Equal("carpet dirty", *d.OriginalDescription)
	s.Contains(s.actions(view.ID), audit.ActionDeductionWordingAccepted)
}

func (s *ServiceSuite) TestWordingSuggestionUnavailable() {
	view := s.createSF()
	view = s.addDeduction(view, "carpet dirty", "CLEANING", "125")
	s.improver.err = sentinel.ErrUnavailable

	_, err := s.service.SuggestDeductionWording(s.ctx, view.ID, view.Deductions[0].ID)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
}

func (s *ServiceSuite) TestAddAttachmentAndLinkAsEvidence() {
	view := s.createSF()
	view, err := s.service.AddAttachment(s.ctx, view.ID, view.Version, AttachmentInput{
		FileName: "../../kitchen.jpg", ContentType: "image/jpeg", Body: []byte{0xff, 0xd8},
	})
	s.Require().NoError(err)
	s.Require().Len(view.Attachments, 1)
	att := view.Attachments[0]
	s.Equal("kitchen.jpg", att.FileName)
	_, _, ok := s.objects.Get(att.StorageRef)
	s.True(ok)

	view, err = s.service.AddDeduction(s.ctx, view.ID, view.Version, DeductionInput{
		Description: "Deep clean of kitchen grease build-up", Category: "CLEANING",
		Amount: money.MustParse("90"), AttachmentIDs: []id.AttachmentID{att.ID},
	})
	s.Require().NoError(err)
	s.True(view.Deductions[0].HasEvidence)
}

func (s *ServiceSuite) TestAttachmentStorageFailureLeavesCaseUnchanged() {
	view := s.createSF()
	svc := s.newService(objectstore.NewBreaker(failingObjects{}))
	_, err := svc.AddAttachment(s.ctx, view.ID, view.Version, AttachmentInput{FileName: "a.jpg", Body: []byte("x")})
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))

	current, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Empty(current.Attachments)
	s.Equal(view.Version, current.Version)
}

// =============================================================================
// Documents
// =============================================================================

func (s *ServiceSuite) TestGenerateDocumentIsIdempotentPerVersion() {
	view := s.createSF()

	first, err := s.service.GenerateDocument(s.ctx, view.ID, view.Version, models.DocNoticeLetter)
	s.Require().NoError(err)
	s.False(first.Reused)
	s.Equal(view.Version, first.Document.SourceVersion)
	s.Equal(models.DocumentPath(view.ID, models.DocNoticeLetter, view.Version), first.Document.StorageRef)

	second, err := s.service.GenerateDocument(s.ctx, view.ID, view.Version, models.DocNoticeLetter)
	s.Require().NoError(err)
	s.True(second.Reused)
	s.Equal(first.Document.ID, second.Document.ID)

	current, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(view.Version, current.Version, "generation does not bump the version")
	s.Len(current.Documents, 1)

	link, err := s.service.DocumentURL(s.ctx, view.ID, first.Document.ID)
	s.Require().NoError(err)
	s.Contains(link.URL, first.Document.StorageRef)

	var generated int
	for _, a := range s.actions(view.ID) {
		if a == audit.ActionDocumentGenerated {
			generated++
		}
	}
	s.Equal(1, generated)
}

func (s *ServiceSuite) TestGenerateDocumentStorageFailure() {
	view := s.createSF()
	svc := s.newService(failingObjects{})

	_, err := svc.GenerateDocument(s.ctx, view.ID, view.Version, models.DocNoticeLetter)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))

	current, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Empty(current.Documents, "nothing is linked when the write fails")

	retry, err := s.service.GenerateDocument(s.ctx, view.ID, view.Version, models.DocNoticeLetter)
	s.Require().NoError(err)
	s.False(retry.Reused)
}

func (s *ServiceSuite) TestGenerateDocumentRequiresTenant() {
	in := s.sfInput()
	in.Tenants = nil
	view, err := s.service.CreateCase(s.ctx, in)
	s.Require().NoError(err)

	_, err = s.service.GenerateDocument(s.ctx, view.ID, view.Version, models.DocItemizedStatement)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ServiceSuite) sendRequest() models.TransitionRequest {
	sent := s.now.Add(-2 * time.Hour)
	return models.TransitionRequest{To: models.StatusSent, Method: "first_class_mail", SentDate: &sent}
}

func (s *ServiceSuite) TestSendRequiresReadiness() {
	view := s.createSF()
	view, err := s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusPendingSend})
	s.Require().NoError(err)

	_, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, s.sendRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	current, err := s.service.GetCase(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingSend, current.Status)
	s.Equal(view.Version, current.Version)
}

func (s *ServiceSuite) TestSendRejectsDocumentsOlderThanDeductions() {
	view := s.createSF()
	view = s.makeReady(view)
	view = s.addDeduction(view, "Wall repair after the final walkthrough", "REPAIR", "900")

	readiness, err := s.service.ComputeReadiness(s.ctx, view.ID)
	s.Require().NoError(err)
	s.False(readiness.Ready)
	s.Require().Len(readiness.Blockers, 2)
	s.Contains(readiness.Blockers[0].Label, "out of date")

	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusPendingSend})
	s.Require().NoError(err)

	_, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, s.sendRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	for _, t := range []models.DocumentType{models.DocNoticeLetter, models.DocItemizedStatement} {
		_, err = s.service.GenerateDocument(s.ctx, view.ID, view.Version, t)
		s.Require().NoError(err)
	}
	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, s.sendRequest())
	s.Require().NoError(err)
	s.Equal(models.StatusSent, view.Status)
}

func (s *ServiceSuite) TestChecklistChangesKeepDocumentsCurrent() {
	view := s.createSF()
	view = s.makeReady(view)

	var advisory *models.ChecklistItem
	for i := range view.Checklist {
		if !view.Checklist[i].BlocksExport {
			advisory = &view.Checklist[i]
			break
		}
	}
	s.Require().NotNil(advisory)
	_, err := s.service.UpdateChecklistItem(s.ctx, view.ID, advisory.ID, view.Version, true)
	s.Require().NoError(err)

	readiness, err := s.service.ComputeReadiness(s.ctx, view.ID)
	s.Require().NoError(err)
	s.True(readiness.Ready)
}

func (s *ServiceSuite) TestFullLifecycle() {
	view := s.createSF()
	view = s.makeReady(view)

	readiness, err := s.service.ComputeReadiness(s.ctx, view.ID)
	s.Require().NoError(err)
	s.True(readiness.Ready)
	s.Equal(100, readiness.Score)

	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusPendingSend})
	s.Require().NoError(err)

	bad := s.sendRequest()
	bad.Method = "CARRIER_PIGEON"
	_, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, bad)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, s.sendRequest())
	s.Require().NoError(err)
	s.Equal(models.StatusSent, view.Status)
	s.Equal("FIRST_CLASS_MAIL", view.Delivery.Method)
	s.Equal("Oakland", view.Delivery.Address.City)

	_, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusActive})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	view, err = s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusClosed, Reason: "Deposit returned"})
	s.Require().NoError(err)
	s.NotNil(view.ClosedAt)

	events, err := s.service.ListAuditEvents(s.ctx, view.ID)
	s.Require().NoError(err)
	var statusEvents []audit.Event
	for _, e := range events {
		switch e.Action {
		case audit.StatusAction("PENDING_SEND"), audit.StatusAction("SENT"), audit.StatusAction("CLOSED"):
			statusEvents = append(statusEvents, e)
		}
	}
	s.Require().Len(statusEvents, 3, "exactly one event per transition")
	s.Equal("PENDING_SEND", statusEvents[1].Metadata["from"])
	s.Equal("SENT", statusEvents[1].Metadata["to"])
	s.Require().NotNil(statusEvents[1].ActorID)
	s.Equal(s.owner, *statusEvents[1].ActorID)
}

func (s *ServiceSuite) TestClosedCaseIsFrozen() {
	view := s.createSF()
	view = s.addDeduction(view, "Replace lost key set", "KEYS", "40")
	view, err := s.service.TransitionStatus(s.ctx, view.ID, view.Version, models.TransitionRequest{To: models.StatusClosed, Reason: "Tenant disputed in court"})
	s.Require().NoError(err)

	_, err = s.service.AddDeduction(s.ctx, view.ID, view.Version, DeductionInput{Description: "More", Category: "OTHER", Amount: money.MustParse("5")})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.DeleteDeduction(s.ctx, view.ID, view.Deductions[0].ID, view.Version)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.UpdateChecklistItem(s.ctx, view.ID, view.Checklist[0].ID, view.Version, true)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.GenerateDocument(s.ctx, view.ID, view.Version, models.DocNoticeLetter)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *ServiceSuite) TestComputeExposure() {
	view := s.createSF()
	view, err := s.service.AddDeduction(s.ctx, view.ID, view.Version, DeductionInput{
		Description: "Worn carpet", Category: "CLEANING", Amount: money.MustParse("600"), DamageType: "NORMAL_WEAR",
	})
	s.Require().NoError(err)

	exposure, err := s.service.ComputeExposure(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("6400.00", exposure.MaxExposure.String())
	s.Equal(compliance.LevelHigh, exposure.Likelihood)
	s.Len(exposure.Unquantified, 1)
}
