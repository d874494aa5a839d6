package validation

import (
	"strings"
	"time"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

// Screen identifies a wizard screen that has a validity predicate.
type Screen int

const (
	ScreenProjectDetails Screen = iota + 1
	ScreenTimelineBudget
)

// FieldError is one failed rule, keyed by the draft's JSON field name.
type FieldError struct {
	Field   string           `json:"field"`
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Result is the outcome of running every rule of a screen.
type Result struct {
	Errors []FieldError `json:"errors"`
}

func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Messages returns field -> message for display.
func (r Result) Messages() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Message
	}
	return out
}

type check func(d domain.Draft) (domain.ErrorCode, bool)

type rule struct {
	screen  Screen
	field   string
	message string
	check   check
}

// rules is the single source of truth for both the per-field messages and
// the coarse "can advance" answer. Within a field, the first failing rule
// wins.
var rules = []rule{
	{ScreenProjectDetails, "clientIndustry", "Client industry is required", required(func(d domain.Draft) string { return d.ClientIndustry })},
	{ScreenProjectDetails, "projectTitle", "Project title is required", required(func(d domain.Draft) string { return d.ProjectTitle })},
	{ScreenProjectDetails, "projectCategory", "Project category is required", required(func(d domain.Draft) string { return d.ProjectCategory })},
	{ScreenProjectDetails, "projectCategoryOther", "Please specify your project category", when(isOtherCategory, required(func(d domain.Draft) string { return d.ProjectCategoryOther }))},
	{ScreenProjectDetails, "projectObjective", "Project objective is required", required(func(d domain.Draft) string { return d.ProjectObjective })},
	{ScreenProjectDetails, "businessRequirements", "Business requirements are required", required(func(d domain.Draft) string { return d.BusinessRequirements })},

	{ScreenTimelineBudget, "startDate", "Start date is required", required(func(d domain.Draft) string { return d.StartDate })},
	{ScreenTimelineBudget, "startDate", "Start date is not a valid date", parseable(func(d domain.Draft) string { return d.StartDate })},
	{ScreenTimelineBudget, "endDate", "End date is not a valid date", parseable(func(d domain.Draft) string { return d.EndDate })},
	{ScreenTimelineBudget, "endDate", "End date must be after start date", endAfterStart},

	{ScreenTimelineBudget, "totalBudget", "Total budget must be greater than 0", when(isBudget(domain.BudgetSingle), positive(func(d domain.Draft) string { return d.TotalBudget }))},
	{ScreenTimelineBudget, "minBudget", "Minimum budget must be greater than 0", when(isBudget(domain.BudgetRange), positive(func(d domain.Draft) string { return d.MinBudget }))},
	{ScreenTimelineBudget, "maxBudget", "Maximum budget must be greater than 0", when(isBudget(domain.BudgetRange), positive(func(d domain.Draft) string { return d.MaxBudget }))},
	{ScreenTimelineBudget, "maxBudget", "Maximum budget must be greater than minimum budget", when(isBudget(domain.BudgetRange), maxAboveMin)},
}

// Validate runs every rule of screen s against d.
func Validate(s Screen, d domain.Draft) Result {
	res := Result{Errors: []FieldError{}}
	failed := make(map[string]bool)
	for _, r := range rules {
		if r.screen != s || failed[r.field] {
			continue
		}
		if code, ok := r.check(d); !ok {
			failed[r.field] = true
			res.Errors = append(res.Errors, FieldError{Field: r.field, Code: code, Message: r.message})
		}
	}
	return res
}

// ValidateAll runs the rules of every screen, in screen order.
func ValidateAll(d domain.Draft) Result {
	res := Validate(ScreenProjectDetails, d)
	res.Errors = append(res.Errors, Validate(ScreenTimelineBudget, d).Errors...)
	return res
}

// CanAdvance is the boolean view of Validate.
func CanAdvance(s Screen, d domain.Draft) bool {
	return Validate(s, d).Valid()
}

func required(get func(domain.Draft) string) check {
	return func(d domain.Draft) (domain.ErrorCode, bool) {
		return domain.ErrCodeMissingField, strings.TrimSpace(get(d)) != ""
	}
}

// parseable passes empty values; presence is a separate rule.
func parseable(get func(domain.Draft) string) check {
	return func(d domain.Draft) (domain.ErrorCode, bool) {
		v := get(d)
		if strings.TrimSpace(v) == "" {
			return "", true
		}
		_, ok := ParseDate(v)
		return domain.ErrCodeInvalidFormat, ok
	}
}

func positive(get func(domain.Draft) string) check {
	return func(d domain.Draft) (domain.ErrorCode, bool) {
		v := get(d)
		if v == "" {
			return domain.ErrCodeMissingField, false
		}
		return domain.ErrCodeInvalidRange, IsPositiveAmount(v)
	}
}

func when(cond func(domain.Draft) bool, c check) check {
	return func(d domain.Draft) (domain.ErrorCode, bool) {
		if !cond(d) {
			return "", true
		}
		return c(d)
	}
}

func isOtherCategory(d domain.Draft) bool {
	return d.ProjectCategory == domain.CategoryOther
}

// isBudget treats anything but "range" as a single total budget.
func isBudget(t domain.BudgetType) func(domain.Draft) bool {
	return func(d domain.Draft) bool {
		if d.BudgetType == domain.BudgetRange {
			return t == domain.BudgetRange
		}
		return t == domain.BudgetSingle
	}
}

func endAfterStart(d domain.Draft) (domain.ErrorCode, bool) {
	start, okStart := ParseDate(d.StartDate)
	end, okEnd := ParseDate(d.EndDate)
	if !okStart || !okEnd {
		return "", true
	}
	return domain.ErrCodeInvalidRange, dateOnly(end).After(dateOnly(start))
}

// maxAboveMin only applies once both bounds are positive.
func maxAboveMin(d domain.Draft) (domain.ErrorCode, bool) {
	if !IsPositiveAmount(d.MinBudget) || !IsPositiveAmount(d.MaxBudget) {
		return "", true
	}
	return domain.ErrCodeInvalidRange, CompareAmounts(d.MaxBudget, d.MinBudget) > 0
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
