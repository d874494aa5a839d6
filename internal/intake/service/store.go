package service

import (
	"sync"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

// DraftStore holds one wizard's draft. All mutations are functions of the
// previous value applied under the lock, so concurrent completions cannot
// lose each other's writes.
type DraftStore struct {
	mu    sync.Mutex
	draft domain.Draft
	epoch uint64
}

func NewDraftStore() *DraftStore {
	return &DraftStore{draft: domain.NewDraft()}
}

// Snapshot returns a copy of the current draft.
func (s *DraftStore) Snapshot() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Epoch identifies the current draft lifetime; it changes on every Reset.
func (s *DraftStore) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Update replaces the draft with fn(previous) and returns the new value.
func (s *DraftStore) Update(fn func(domain.Draft) domain.Draft) domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = fn(s.draft.Clone()).Clone()
	return s.draft.Clone()
}

// UpdateIf applies fn only when the draft has not been reset since epoch.
func (s *DraftStore) UpdateIf(epoch uint64, fn func(domain.Draft) domain.Draft) (domain.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return s.draft.Clone(), false
	}
	s.draft = fn(s.draft.Clone()).Clone()
	return s.draft.Clone(), true
}

// Merge applies a partial update.
func (s *DraftStore) Merge(p Patch) domain.Draft {
	return s.Update(p.Apply)
}

// Reset restores the initial empty draft and starts a new epoch.
func (s *DraftStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = domain.NewDraft()
	s.epoch++
}

// Patch is a partial draft; nil fields are left untouched. The file list
// and matched vendors are owned by the upload manager and the submission
// flow and cannot be patched.
type Patch struct {
	ClientIndustry        *string `json:"clientIndustry,omitempty"`
	ProjectTitle          *string `json:"projectTitle,omitempty"`
	ProjectCategory       *string `json:"projectCategory,omitempty"`
	ProjectCategoryOther  *string `json:"projectCategoryOther,omitempty"`
	ProjectObjective      *string `json:"projectObjective,omitempty"`
	BusinessRequirements  *string `json:"businessRequirements,omitempty"`
	TechnicalRequirements *string `json:"technicalRequirements,omitempty"`

	StartDate     *string            `json:"startDate,omitempty"`
	EndDate       *string            `json:"endDate,omitempty"`
	FlexibleDates *bool              `json:"flexibleDates,omitempty"`
	BudgetType    *domain.BudgetType `json:"budgetType,omitempty"`
	TotalBudget   *string            `json:"totalBudget,omitempty"`
	MinBudget     *string            `json:"minBudget,omitempty"`
	MaxBudget     *string            `json:"maxBudget,omitempty"`
}

// Apply shallow-merges p into d.
func (p Patch) Apply(d domain.Draft) domain.Draft {
	setString(&d.ClientIndustry, p.ClientIndustry)
	setString(&d.ProjectTitle, p.ProjectTitle)
	setString(&d.ProjectCategory, p.ProjectCategory)
	setString(&d.ProjectCategoryOther, p.ProjectCategoryOther)
	setString(&d.ProjectObjective, p.ProjectObjective)
	setString(&d.BusinessRequirements, p.BusinessRequirements)
	setString(&d.TechnicalRequirements, p.TechnicalRequirements)
	setString(&d.StartDate, p.StartDate)
	setString(&d.EndDate, p.EndDate)
	setString(&d.TotalBudget, p.TotalBudget)
	setString(&d.MinBudget, p.MinBudget)
	setString(&d.MaxBudget, p.MaxBudget)
	if p.FlexibleDates != nil {
		d.FlexibleDates = *p.FlexibleDates
	}
	if p.BudgetType != nil {
		d.BudgetType = *p.BudgetType
	}
	return d
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
