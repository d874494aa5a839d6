package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
	"github.com/venhawk/venhawk-intake/internal/intake/validation"
)

// Runner walks a user through a wizard on the terminal.
type Runner struct {
	driver  PromptDriver
	wizard  *service.Wizard
	catalog *domain.Catalog
	saver   service.DraftSaver
	open    func(path string) (service.Upload, error)
	limits  service.UploadLimits
}

type Option func(*Runner)

func WithCatalog(c *domain.Catalog) Option {
	return func(r *Runner) { r.catalog = c }
}

// WithDraftSaver enables the "Save draft" action on the review screen.
func WithDraftSaver(s service.DraftSaver) Option {
	return func(r *Runner) { r.saver = s }
}

// WithUploadLimits sets the limits shown when asking for attachments. They
// should match the wizard's. Zero fields keep the defaults.
func WithUploadLimits(l service.UploadLimits) Option {
	return func(r *Runner) {
		if l.MaxFiles > 0 {
			r.limits.MaxFiles = l.MaxFiles
		}
		if l.MaxFileSize > 0 {
			r.limits.MaxFileSize = l.MaxFileSize
		}
	}
}

// WithFileOpener replaces how attachment paths are turned into uploads.
func WithFileOpener(fn func(path string) (service.Upload, error)) Option {
	return func(r *Runner) { r.open = fn }
}

func NewRunner(driver PromptDriver, wizard *service.Wizard, opts ...Option) *Runner {
	r := &Runner{
		driver:  driver,
		wizard:  wizard,
		catalog: domain.DefaultCatalog(),
		open:    localFile,
		limits:  service.DefaultUploadLimits(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run prompts screen by screen until a submission succeeds and returns the
// matched vendors.
func (r *Runner) Run(ctx context.Context) ([]domain.Vendor, error) {
	for {
		st := r.wizard.State()
		var err error
		switch st.Step {
		case service.StepProjectDetails:
			err = r.details(ctx, st.Draft)
		case service.StepTimelineBudget:
			err = r.timeline(ctx, st.Draft)
		case service.StepReviewSubmit:
			err = r.review(ctx, st)
		case service.StepSubmitted:
			return r.results(ctx)
		default:
			return nil, fmt.Errorf("unknown wizard step %q", st.Step)
		}
		if err != nil {
			return nil, err
		}
	}
}

func (r *Runner) details(ctx context.Context, d domain.Draft) error {
	if err := r.driver.Info(ctx, "\nStep 1 of 3: Project details"); err != nil {
		return err
	}

	industry, err := r.pick(ctx, "Client industry", r.catalog.Industries, d.ClientIndustry)
	if err != nil {
		return err
	}
	title, err := r.driver.Input(ctx, InputConfig{Message: "Project title", Default: d.ProjectTitle})
	if err != nil {
		return err
	}
	category, err := r.pick(ctx, "Project category", r.catalog.Categories, d.ProjectCategory)
	if err != nil {
		return err
	}
	other := d.ProjectCategoryOther
	if category == domain.CategoryOther {
		if other, err = r.driver.Input(ctx, InputConfig{Message: "Please specify your project category", Default: other}); err != nil {
			return err
		}
	}
	objective, err := r.driver.TextArea(ctx, TextAreaConfig{Message: "Project objective", Default: d.ProjectObjective})
	if err != nil {
		return err
	}
	business, err := r.driver.TextArea(ctx, TextAreaConfig{Message: "Business requirements", Default: d.BusinessRequirements})
	if err != nil {
		return err
	}
	technical, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: "Technical requirements (optional)",
		Default: d.TechnicalRequirements,
	})
	if err != nil {
		return err
	}

	if _, err := r.wizard.UpdateDetails(service.Patch{
		ClientIndustry:        &industry,
		ProjectTitle:          &title,
		ProjectCategory:       &category,
		ProjectCategoryOther:  &other,
		ProjectObjective:      &objective,
		BusinessRequirements:  &business,
		TechnicalRequirements: &technical,
	}); err != nil {
		return err
	}

	if err := r.attachments(ctx); err != nil {
		return err
	}
	return r.advance(ctx)
}

const (
	actionContinue = "Continue"
	actionAttach   = "Attach files"
	actionRemove   = "Remove a file"
	actionBack     = "Back"
	actionSubmit   = "Submit project"
	actionEdit     = "Edit details"
	actionSave     = "Save draft"
	actionQuit     = "Quit"
)

func (r *Runner) attachments(ctx context.Context) error {
	for {
		files := r.wizard.State().Draft.FileUploads
		for _, f := range files {
			if err := r.driver.Info(ctx, fmt.Sprintf("  attached: %s (%s)", f.FileName, formatSize(f.FileSize))); err != nil {
				return err
			}
		}

		actions := []string{actionContinue, actionAttach}
		if len(files) > 0 {
			actions = append(actions, actionRemove)
		}
		choice, err := r.choose(ctx, "Attachments", actions)
		if err != nil {
			return err
		}

		switch choice {
		case actionContinue:
			return nil
		case actionAttach:
			if err := r.attach(ctx); err != nil {
				return err
			}
		case actionRemove:
			if err := r.remove(ctx, files); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) attach(ctx context.Context) error {
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: "File paths (comma separated)",
		Help:    fmt.Sprintf("Up to %d files, %s each", r.limits.MaxFiles, formatSize(r.limits.MaxFileSize)),
	})
	if err != nil {
		return err
	}

	var uploads []service.Upload
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := r.open(p)
		if err != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("  cannot read %s: %v", p, err)); err != nil {
				return err
			}
			continue
		}
		uploads = append(uploads, u)
	}
	if len(uploads) == 0 {
		return nil
	}

	res, err := r.wizard.UploadFiles(ctx, uploads)
	if err != nil {
		return err
	}
	if res.Message != "" {
		if err := r.driver.Info(ctx, "  "+res.Message); err != nil {
			return err
		}
	}
	for _, f := range res.Failures {
		if err := r.driver.Info(ctx, "  "+f.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) remove(ctx context.Context, files []domain.FileRef) error {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.FileName
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Remove which file?", Options: names})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(files) {
		return nil
	}

	err = r.wizard.DeleteFile(ctx, files[idx].FileURL)
	var intakeErr *domain.IntakeError
	if errors.As(err, &intakeErr) {
		return r.driver.Info(ctx, "  "+intakeErr.Message)
	}
	return err
}

func (r *Runner) timeline(ctx context.Context, d domain.Draft) error {
	if err := r.driver.Info(ctx, "\nStep 2 of 3: Timeline & budget"); err != nil {
		return err
	}

	start, err := r.driver.Input(ctx, InputConfig{
		Message:   "Start date (YYYY-MM-DD)",
		Default:   d.StartDate,
		Validator: dateValidator(true),
	})
	if err != nil {
		return err
	}
	end, err := r.driver.Input(ctx, InputConfig{
		Message:   "End date (optional)",
		Default:   d.EndDate,
		Validator: dateValidator(false),
	})
	if err != nil {
		return err
	}
	flexible, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Are the dates flexible?", Default: d.FlexibleDates})
	if err != nil {
		return err
	}

	budgetTypes := []string{"Single total budget", "Budget range"}
	def := 0
	if d.BudgetType == domain.BudgetRange {
		def = 1
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Budget", Options: budgetTypes, DefaultIndex: def})
	if err != nil {
		return err
	}

	p := service.Patch{StartDate: &start, EndDate: &end, FlexibleDates: &flexible}
	if idx == 1 {
		bt := domain.BudgetRange
		p.BudgetType = &bt
		minB, err := r.driver.Input(ctx, InputConfig{Message: "Minimum budget (USD)", Default: d.MinBudget})
		if err != nil {
			return err
		}
		maxB, err := r.driver.Input(ctx, InputConfig{Message: "Maximum budget (USD)", Default: d.MaxBudget})
		if err != nil {
			return err
		}
		p.MinBudget, p.MaxBudget = &minB, &maxB
	} else {
		bt := domain.BudgetSingle
		p.BudgetType = &bt
		total, err := r.driver.Input(ctx, InputConfig{Message: "Total budget (USD)", Default: d.TotalBudget})
		if err != nil {
			return err
		}
		p.TotalBudget = &total
	}

	if _, err := r.wizard.UpdateTimeline(p); err != nil {
		return err
	}

	choice, err := r.choose(ctx, "Next", []string{actionContinue, actionBack})
	if err != nil {
		return err
	}
	if choice == actionBack {
		_, err := r.wizard.Back()
		return err
	}
	return r.advance(ctx)
}

// advance moves to the next screen, printing field errors when the screen
// is incomplete.
func (r *Runner) advance(ctx context.Context) error {
	_, err := r.wizard.Next()
	var screenErr *service.ScreenError
	if !errors.As(err, &screenErr) {
		return err
	}
	for _, fe := range screenErr.Result.Errors {
		if err := r.driver.Info(ctx, "  ! "+fe.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) review(ctx context.Context, st service.State) error {
	if err := r.driver.Info(ctx, "\nStep 3 of 3: Review\n"+Summary(r.catalog, st.Draft)); err != nil {
		return err
	}
	if st.LastError != nil {
		if err := r.driver.Info(ctx, "  ! "+st.LastError.Message); err != nil {
			return err
		}
	}

	actions := []string{actionSubmit, actionEdit}
	if r.saver != nil {
		actions = append(actions, actionSave)
	}
	actions = append(actions, actionQuit)

	choice, err := r.choose(ctx, "What next?", actions)
	if err != nil {
		return err
	}

	switch choice {
	case actionSubmit:
		if err := r.driver.Info(ctx, "Submitting..."); err != nil {
			return err
		}
		_, err := r.wizard.Submit(ctx)
		var intakeErr *domain.IntakeError
		if errors.As(err, &intakeErr) {
			return nil
		}
		return err
	case actionEdit:
		_, err := r.wizard.Edit()
		return err
	case actionSave:
		if err := r.wizard.SaveDraft(ctx, r.saver); err != nil {
			return r.driver.Info(ctx, "  ! "+err.Error())
		}
		return r.driver.Info(ctx, "Draft saved.")
	default:
		return ErrQuit
	}
}

func (r *Runner) results(ctx context.Context) ([]domain.Vendor, error) {
	vendors, err := r.wizard.Results()
	if err != nil {
		return nil, err
	}
	if err := r.driver.Info(ctx, fmt.Sprintf("\nProject submitted. %d matched vendor(s):", len(vendors))); err != nil {
		return nil, err
	}
	for _, v := range vendors {
		line := "  - " + v.Name
		if v.MatchingScore > 0 {
			line += fmt.Sprintf(" (%.0f%% match)", v.MatchingScore)
		}
		if v.Location != "" {
			line += ", " + v.Location
		}
		if err := r.driver.Info(ctx, line); err != nil {
			return nil, err
		}
	}
	return vendors, nil
}

func (r *Runner) pick(ctx context.Context, msg string, opts []domain.Option, current string) (string, error) {
	labels := make([]string, len(opts))
	def := 0
	for i, o := range opts {
		labels[i] = o.Label
		if o.Value == current {
			def = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: msg, Options: labels, DefaultIndex: def, PageSize: 10})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(opts) {
		return current, nil
	}
	return opts[idx].Value, nil
}

func (r *Runner) choose(ctx context.Context, msg string, actions []string) (string, error) {
	idx, err := r.driver.Select(ctx, SelectConfig{Message: msg, Options: actions})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return actions[0], nil
	}
	return actions[idx], nil
}

func dateValidator(required bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if required {
				return errors.New("date is required")
			}
			return nil
		}
		if _, ok := validation.ParseDate(s); !ok {
			return errors.New("not a valid date")
		}
		return nil
	}
}

// localFile stats path and opens it lazily.
func localFile(path string) (service.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return service.Upload{}, err
	}
	if info.IsDir() {
		return service.Upload{}, fmt.Errorf("%s is a directory", path)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return service.Upload{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
