package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/venhawk/venhawk-intake/internal/backend"
	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/validation"
	"github.com/venhawk/venhawk-intake/internal/logger"
	"github.com/venhawk/venhawk-intake/internal/metrics"
)

// Step is a state of the wizard.
type Step string

const (
	StepProjectDetails Step = "project_details"
	StepTimelineBudget Step = "timeline_budget"
	StepReviewSubmit   Step = "review_submit"
	StepSubmitted      Step = "submitted"
)

// Route is the front-end path that renders the step.
func (s Step) Route() string {
	switch s {
	case StepTimelineBudget:
		return "/budget-timeline"
	case StepReviewSubmit:
		return "/summary"
	case StepSubmitted:
		return "/vendors"
	default:
		return "/"
	}
}

func (s Step) screen() (validation.Screen, bool) {
	switch s {
	case StepProjectDetails:
		return validation.ScreenProjectDetails, true
	case StepTimelineBudget:
		return validation.ScreenTimelineBudget, true
	}
	return 0, false
}

// ScreenError is returned when advancing from a screen with failing rules.
type ScreenError struct {
	Result validation.Result
}

func (e *ScreenError) Error() string {
	return fmt.Sprintf("%s: %d field(s)", domain.ErrScreenInvalid, len(e.Result.Errors))
}

func (e *ScreenError) Unwrap() error { return domain.ErrScreenInvalid }

// DraftSaver persists a snapshot of a draft for its owner.
type DraftSaver interface {
	SaveDraft(ctx context.Context, owner string, d domain.Draft) error
}

// State is a read-only view of a wizard.
type State struct {
	Step       Step                `json:"step"`
	Route      string              `json:"route"`
	Draft      domain.Draft        `json:"draft"`
	Uploading  []InFlight          `json:"uploading"`
	Deleting   []string            `json:"deleting"`
	CanAdvance bool                `json:"canAdvance"`
	Errors     map[string]string   `json:"errors"`
	LastError  *domain.IntakeError `json:"lastError,omitempty"`
	Submitting bool                `json:"submitting"`
}

type WizardDeps struct {
	Files   FileService
	Creator ProjectCreator
	Catalog *domain.Catalog
	Limits  UploadLimits
	Log     logger.Logger
}

// Wizard sequences the three screens of one user's intake and owns that
// user's draft.
type Wizard struct {
	id      string
	store   *DraftStore
	uploads *UploadManager
	creator ProjectCreator
	catalog *domain.Catalog
	log     logger.Logger

	mu         sync.Mutex
	step       Step
	submitting bool
	lastError  *domain.IntakeError
	lastActive time.Time
}

func NewWizard(id string, deps WizardDeps) *Wizard {
	if deps.Catalog == nil {
		deps.Catalog = domain.DefaultCatalog()
	}
	if deps.Log == nil {
		deps.Log = logger.NewNoOpLogger()
	}
	log := deps.Log.WithFields(map[string]interface{}{"wizard_id": id})
	store := NewDraftStore()

	w := &Wizard{
		id:         id,
		store:      store,
		uploads:    NewUploadManager(store, deps.Files, deps.Limits, log),
		creator:    deps.Creator,
		catalog:    deps.Catalog,
		log:        log,
		step:       StepProjectDetails,
		lastActive: time.Now(),
	}
	w.preselect()
	return w
}

func (w *Wizard) ID() string { return w.id }

// State returns the current view including the current screen's errors.
func (w *Wizard) State() State {
	w.mu.Lock()
	step, submitting, lastErr := w.step, w.submitting, w.lastError
	w.mu.Unlock()
	return w.view(step, submitting, lastErr)
}

func (w *Wizard) view(step Step, submitting bool, lastErr *domain.IntakeError) State {
	d := w.store.Snapshot()
	st := State{
		Step:       step,
		Route:      step.Route(),
		Draft:      d,
		Uploading:  w.uploads.InFlight(),
		Deleting:   w.uploads.Deleting(),
		Errors:     map[string]string{},
		LastError:  lastErr,
		Submitting: submitting,
	}
	if screen, ok := step.screen(); ok {
		res := validation.Validate(screen, d)
		st.Errors = res.Messages()
		st.CanAdvance = res.Valid()
	}
	return st
}

// UpdateDetails merges the project-details fields of p.
func (w *Wizard) UpdateDetails(p Patch) (State, error) {
	if err := w.checkOptions(p); err != nil {
		return w.State(), err
	}
	if err := w.beginEdit(StepProjectDetails); err != nil {
		return w.State(), err
	}
	w.store.Merge(p.details())
	return w.State(), nil
}

// checkOptions rejects an industry or category the catalogue does not offer.
// Empty values clear the field and are left to screen validation.
func (w *Wizard) checkOptions(p Patch) error {
	if v := p.ClientIndustry; v != nil && *v != "" && !w.catalog.HasIndustry(*v) {
		return &domain.IntakeError{
			Code:    domain.ErrCodeInvalidFormat,
			Field:   "clientIndustry",
			Message: fmt.Sprintf("Unknown client industry %q", *v),
		}
	}
	if v := p.ProjectCategory; v != nil && *v != "" && !w.catalog.HasCategory(*v) {
		return &domain.IntakeError{
			Code:    domain.ErrCodeInvalidFormat,
			Field:   "projectCategory",
			Message: fmt.Sprintf("Unknown project category %q", *v),
		}
	}
	return nil
}

// UpdateTimeline merges the timeline and budget fields of p. Budget amounts
// are stored formatted with thousands separators.
func (w *Wizard) UpdateTimeline(p Patch) (State, error) {
	if p.BudgetType != nil && *p.BudgetType != domain.BudgetSingle && *p.BudgetType != domain.BudgetRange {
		return w.State(), &domain.IntakeError{
			Code:    domain.ErrCodeInvalidFormat,
			Field:   "budgetType",
			Message: fmt.Sprintf("Budget type must be %q or %q", domain.BudgetSingle, domain.BudgetRange),
		}
	}
	if err := w.beginEdit(StepTimelineBudget); err != nil {
		return w.State(), err
	}
	w.store.Merge(p.timeline())
	return w.State(), nil
}

// Next advances when the current screen is valid.
func (w *Wizard) Next() (State, error) {
	w.mu.Lock()
	w.touch()
	if w.submitting {
		w.mu.Unlock()
		return w.State(), domain.ErrSubmitInProgress
	}
	screen, ok := w.step.screen()
	if !ok {
		w.mu.Unlock()
		return w.State(), domain.ErrWrongStep
	}
	if res := validation.Validate(screen, w.store.Snapshot()); !res.Valid() {
		w.mu.Unlock()
		return w.State(), &ScreenError{Result: res}
	}
	if w.step == StepProjectDetails {
		w.step = StepTimelineBudget
	} else {
		w.step = StepReviewSubmit
	}
	w.lastError = nil
	w.mu.Unlock()
	return w.State(), nil
}

// Back returns from the timeline screen to the details screen.
func (w *Wizard) Back() (State, error) {
	return w.goTo(StepTimelineBudget, StepProjectDetails)
}

// Edit returns from the review screen to the details screen.
func (w *Wizard) Edit() (State, error) {
	return w.goTo(StepReviewSubmit, StepProjectDetails)
}

func (w *Wizard) goTo(from, to Step) (State, error) {
	w.mu.Lock()
	w.touch()
	var err error
	switch {
	case w.submitting:
		err = domain.ErrSubmitInProgress
	case w.step != from:
		err = domain.ErrWrongStep
	default:
		w.step = to
		w.lastError = nil
	}
	w.mu.Unlock()
	return w.State(), err
}

// UploadFiles uploads a batch from the details screen.
func (w *Wizard) UploadFiles(ctx context.Context, uploads []Upload) (BatchResult, error) {
	if err := w.beginEdit(StepProjectDetails); err != nil {
		return BatchResult{}, err
	}
	return w.uploads.UploadBatch(ctx, uploads), nil
}

// DeleteFile removes an attachment by URL from the details screen.
func (w *Wizard) DeleteFile(ctx context.Context, fileURL string) error {
	if err := w.beginEdit(StepProjectDetails); err != nil {
		return err
	}
	return w.uploads.Delete(ctx, fileURL)
}

// Submit sends the draft to the backend. On success the draft is reset and
// seeded with the matched vendors; on failure it is kept for a retry and
// the error is attached to the review screen.
func (w *Wizard) Submit(ctx context.Context) (State, error) {
	w.mu.Lock()
	w.touch()
	if w.submitting {
		w.mu.Unlock()
		return w.State(), domain.ErrSubmitInProgress
	}
	if w.step != StepReviewSubmit {
		w.mu.Unlock()
		return w.State(), domain.ErrWrongStep
	}
	draft := w.store.Snapshot()
	if res := validation.ValidateAll(draft); !res.Valid() {
		w.mu.Unlock()
		return w.State(), &ScreenError{Result: res}
	}
	w.submitting = true
	w.lastError = nil
	w.mu.Unlock()

	log := logger.FromContext(ctx, w.log)
	result, err := w.creator.CreateProject(ctx, BuildPayload(draft))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.WithError(err).Warn("project submission failed", nil)
		w.lastError = domain.NewSubmissionError(backend.ServerMessage(err), err)
		return w.stateLocked(), w.lastError
	}

	metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("project submitted", map[string]interface{}{
		"project_id": result.ID,
		"vendors":    len(result.MatchedVendors),
	})

	vendors := result.MatchedVendors
	if vendors == nil {
		vendors = []domain.Vendor{}
	}
	w.store.Reset()
	w.store.Update(func(d domain.Draft) domain.Draft {
		d.MatchedVendors = vendors
		return d
	})
	w.step = StepSubmitted
	return w.stateLocked(), nil
}

// Results returns the vendors of this session's submission.
func (w *Wizard) Results() ([]domain.Vendor, error) {
	w.mu.Lock()
	w.touch()
	w.mu.Unlock()

	d := w.store.Snapshot()
	if !d.Submitted() {
		return nil, domain.ErrNoSubmission
	}
	return d.MatchedVendors, nil
}

// Restart discards the draft and starts over on the details screen.
func (w *Wizard) Restart() (State, error) {
	w.mu.Lock()
	w.touch()
	if w.submitting {
		w.mu.Unlock()
		return w.State(), domain.ErrSubmitInProgress
	}
	w.restartLocked()
	w.mu.Unlock()
	return w.State(), nil
}

// SaveDraft stores a snapshot of the draft. Nothing reads it back.
func (w *Wizard) SaveDraft(ctx context.Context, saver DraftSaver) error {
	w.mu.Lock()
	w.touch()
	w.mu.Unlock()
	if err := saver.SaveDraft(ctx, w.id, w.store.Snapshot()); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// IdleSince reports when the wizard was last used.
func (w *Wizard) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Busy reports whether a network call is still pending for this wizard.
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	submitting := w.submitting
	w.mu.Unlock()
	return submitting || w.uploads.Busy()
}

// beginEdit checks that a mutation is allowed on step. A wizard that has
// already submitted starts over first.
func (w *Wizard) beginEdit(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	if w.submitting {
		return domain.ErrSubmitInProgress
	}
	if w.step == StepSubmitted {
		w.restartLocked()
	}
	if w.step != step {
		return domain.ErrWrongStep
	}
	w.lastError = nil
	return nil
}

func (w *Wizard) restartLocked() {
	w.store.Reset()
	w.step = StepProjectDetails
	w.lastError = nil
	w.preselect()
}

// preselect fills in the industry when only one is offered.
func (w *Wizard) preselect() {
	industry, ok := w.catalog.DefaultIndustry()
	if !ok {
		return
	}
	w.store.Update(func(d domain.Draft) domain.Draft {
		if strings.TrimSpace(d.ClientIndustry) == "" {
			d.ClientIndustry = industry
		}
		return d
	})
}

func (w *Wizard) touch() {
	w.lastActive = time.Now()
}

func (w *Wizard) markActive(at time.Time) {
	w.mu.Lock()
	if at.After(w.lastActive) {
		w.lastActive = at
	}
	w.mu.Unlock()
}

// stateLocked is State for callers that already hold w.mu.
func (w *Wizard) stateLocked() State {
	return w.view(w.step, w.submitting, w.lastError)
}

func (p Patch) details() Patch {
	return Patch{
		ClientIndustry:        p.ClientIndustry,
		ProjectTitle:          p.ProjectTitle,
		ProjectCategory:       p.ProjectCategory,
		ProjectCategoryOther:  p.ProjectCategoryOther,
		ProjectObjective:      p.ProjectObjective,
		BusinessRequirements:  p.BusinessRequirements,
		TechnicalRequirements: p.TechnicalRequirements,
	}
}

func (p Patch) timeline() Patch {
	return Patch{
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		FlexibleDates: p.FlexibleDates,
		BudgetType:    p.BudgetType,
		TotalBudget:   formatted(p.TotalBudget),
		MinBudget:     formatted(p.MinBudget),
		MaxBudget:     formatted(p.MaxBudget),
	}
}

func formatted(v *string) *string {
	if v == nil {
		return nil
	}
	f := validation.FormatCurrency(*v)
	return &f
}
