package http

import (
	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
	"github.com/venhawk/venhawk-intake/internal/intake/validation"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

type Handler struct {
	sessions       *service.SessionRegistry
	catalog        *domain.Catalog
	saver          service.DraftSaver
	maxUploadBytes int64
	log            logger.Logger
}

type Deps struct {
	Sessions *service.SessionRegistry
	Catalog  *domain.Catalog
	// Saver may be nil, in which case saving drafts is unavailable.
	Saver  service.DraftSaver
	Limits service.UploadLimits
	Log    logger.Logger
}

func New(dep Deps) *Handler {
	if dep.Catalog == nil {
		dep.Catalog = domain.DefaultCatalog()
	}
	if dep.Log == nil {
		dep.Log = logger.NewNoOpLogger()
	}
	limits := dep.Limits
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = domain.DefaultMaxFileSize
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = domain.DefaultMaxFiles
	}
	return &Handler{
		sessions:       dep.Sessions,
		catalog:        dep.Catalog,
		saver:          dep.Saver,
		maxUploadBytes: int64(limits.MaxFiles)*(limits.MaxFileSize+1) + multipartOverhead,
		log:            dep.Log,
	}
}

// multipartOverhead covers boundaries and part headers of a full batch.
const multipartOverhead = 1 << 20

// DetailsRequest is the body of PATCH /wizard/details.
type DetailsRequest struct {
	ClientIndustry        *string `json:"clientIndustry"`
	ProjectTitle          *string `json:"projectTitle"`
	ProjectCategory       *string `json:"projectCategory"`
	ProjectCategoryOther  *string `json:"projectCategoryOther"`
	ProjectObjective      *string `json:"projectObjective"`
	BusinessRequirements  *string `json:"businessRequirements"`
	TechnicalRequirements *string `json:"technicalRequirements"`
}

func (r DetailsRequest) patch() service.Patch {
	return service.Patch{
		ClientIndustry:        sanitizePtr(r.ClientIndustry),
		ProjectTitle:          sanitizePtr(r.ProjectTitle),
		ProjectCategory:       sanitizePtr(r.ProjectCategory),
		ProjectCategoryOther:  sanitizePtr(r.ProjectCategoryOther),
		ProjectObjective:      sanitizePtr(r.ProjectObjective),
		BusinessRequirements:  sanitizePtr(r.BusinessRequirements),
		TechnicalRequirements: sanitizePtr(r.TechnicalRequirements),
	}
}

// TimelineRequest is the body of PATCH /wizard/timeline.
type TimelineRequest struct {
	StartDate     *string            `json:"startDate"`
	EndDate       *string            `json:"endDate"`
	FlexibleDates *bool              `json:"flexibleDates"`
	BudgetType    *domain.BudgetType `json:"budgetType"`
	TotalBudget   *string            `json:"totalBudget"`
	MinBudget     *string            `json:"minBudget"`
	MaxBudget     *string            `json:"maxBudget"`
}

func (r TimelineRequest) patch() service.Patch {
	return service.Patch{
		StartDate:     sanitizePtr(r.StartDate),
		EndDate:       sanitizePtr(r.EndDate),
		FlexibleDates: r.FlexibleDates,
		BudgetType:    r.BudgetType,
		TotalBudget:   r.TotalBudget,
		MinBudget:     r.MinBudget,
		MaxBudget:     r.MaxBudget,
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error       string                  `json:"error"`
	Code        string                  `json:"code,omitempty"`
	Errors      map[string]string       `json:"errors,omitempty"`
	FieldErrors []validation.FieldError `json:"fieldErrors,omitempty"`
	State       *service.State          `json:"state,omitempty"`
}

type ResultsResponse struct {
	Vendors []domain.Vendor `json:"vendors"`
	Count   int             `json:"count"`
}
