package service

import (
	"context"
	"strings"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/validation"
)

// ProjectCreator creates projects on the matching backend.
type ProjectCreator interface {
	CreateProject(ctx context.Context, payload domain.ProjectPayload) (*domain.ProjectResult, error)
}

// BuildPayload maps a draft to the create-project body.
//
// Dates are normalised to YYYY-MM-DD and dropped when unparseable. Only the
// budget group selected by BudgetType is sent, without separators. Empty
// optional texts and a category-other text for any other category are
// left out.
func BuildPayload(d domain.Draft) domain.ProjectPayload {
	p := domain.ProjectPayload{
		ClientIndustry:       d.ClientIndustry,
		ProjectTitle:         d.ProjectTitle,
		ProjectCategory:      d.ProjectCategory,
		ProjectObjective:     d.ProjectObjective,
		BusinessRequirements: d.BusinessRequirements,
		FileURLs:             make([]string, 0, len(d.FileUploads)),
		FlexibleDates:        d.FlexibleDates,
		Status:               domain.ProjectStatusSubmitted,
	}

	if d.ProjectCategory == domain.CategoryOther && strings.TrimSpace(d.ProjectCategoryOther) != "" {
		p.ProjectCategoryOther = d.ProjectCategoryOther
	}
	if strings.TrimSpace(d.TechnicalRequirements) != "" {
		p.TechnicalRequirements = d.TechnicalRequirements
	}

	for _, f := range d.FileUploads {
		p.FileURLs = append(p.FileURLs, f.FileURL)
	}

	p.StartDate = normalizedDate(d.StartDate)
	p.EndDate = normalizedDate(d.EndDate)

	if d.BudgetType == domain.BudgetRange {
		p.BudgetType = domain.BudgetRange
		p.MinBudget = validation.Digits(d.MinBudget)
		p.MaxBudget = validation.Digits(d.MaxBudget)
	} else {
		p.BudgetType = domain.BudgetSingle
		p.TotalBudget = validation.Digits(d.TotalBudget)
	}
	return p
}

func normalizedDate(s string) *string {
	v, ok := validation.NormalizeDate(s)
	if !ok {
		return nil
	}
	return &v
}
