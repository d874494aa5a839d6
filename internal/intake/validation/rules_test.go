package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

func detailsDraft() domain.Draft {
	d := domain.NewDraft()
	d.ClientIndustry = "legal"
	d.ProjectTitle = "Intapp Cloud Migration"
	d.ProjectCategory = "cloud-migration"
	d.ProjectObjective = "Move to the cloud"
	d.BusinessRequirements = "Minimal downtime"
	return d
}

func timelineDraft() domain.Draft {
	d := domain.NewDraft()
	d.StartDate = "2025-01-10"
	d.BudgetType = domain.BudgetSingle
	d.TotalBudget = "150,000"
	return d
}

func TestValidate_ProjectDetails(t *testing.T) {
	t.Run("complete screen is valid", func(t *testing.T) {
		assert.True(t, CanAdvance(ScreenProjectDetails, detailsDraft()))
	})

	t.Run("every mandatory field is reported", func(t *testing.T) {
		res := Validate(ScreenProjectDetails, domain.NewDraft())
		msgs := res.Messages()
		assert.Len(t, msgs, 5)
		for _, f := range []string{"clientIndustry", "projectTitle", "projectCategory", "projectObjective", "businessRequirements"} {
			assert.Contains(t, msgs, f)
		}
		for _, e := range res.Errors {
			assert.Equal(t, domain.ErrCodeMissingField, e.Code)
		}
	})

	t.Run("whitespace does not count as filled", func(t *testing.T) {
		d := detailsDraft()
		d.ProjectTitle = "   "
		assert.Equal(t, map[string]string{"projectTitle": "Project title is required"}, Validate(ScreenProjectDetails, d).Messages())
	})

	t.Run("other category needs free text", func(t *testing.T) {
		d := detailsDraft()
		d.ProjectCategory = domain.CategoryOther
		assert.False(t, CanAdvance(ScreenProjectDetails, d))
		assert.Contains(t, Validate(ScreenProjectDetails, d).Messages(), "projectCategoryOther")

		d.ProjectCategoryOther = "Robotics"
		assert.True(t, CanAdvance(ScreenProjectDetails, d))
	})

	t.Run("free text is ignored for other categories", func(t *testing.T) {
		d := detailsDraft()
		d.ProjectCategoryOther = ""
		assert.True(t, CanAdvance(ScreenProjectDetails, d))
	})

	t.Run("technical requirements are optional", func(t *testing.T) {
		d := detailsDraft()
		d.TechnicalRequirements = ""
		assert.True(t, CanAdvance(ScreenProjectDetails, d))
	})
}

func TestValidate_Dates(t *testing.T) {
	t.Run("start date is required", func(t *testing.T) {
		d := timelineDraft()
		d.StartDate = ""
		res := Validate(ScreenTimelineBudget, d)
		assert.Equal(t, "Start date is required", res.Messages()["startDate"])
		assert.Equal(t, domain.ErrCodeMissingField, res.Errors[0].Code)
	})

	cases := []struct {
		name    string
		start   string
		end     string
		blocked bool
	}{
		{"no end date", "2025-01-10", "", false},
		{"end after start", "2025-01-10", "2025-01-11", false},
		{"same day", "2025-01-10", "2025-01-10", true},
		{"end before start", "2025-01-10", "2025-01-09", true},
		{"mixed formats same day", "01/10/2025", "2025-01-10", true},
		{"mixed formats after", "01/10/2025", "2025-02-01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := timelineDraft()
			d.StartDate = tc.start
			d.EndDate = tc.end
			assert.Equal(t, !tc.blocked, CanAdvance(ScreenTimelineBudget, d))
			if tc.blocked {
				res := Validate(ScreenTimelineBudget, d)
				assert.Equal(t, "End date must be after start date", res.Messages()["endDate"])
				assert.Equal(t, domain.ErrCodeInvalidRange, res.Errors[0].Code)
			}
		})
	}

	t.Run("unparseable dates are rejected", func(t *testing.T) {
		d := timelineDraft()
		d.StartDate = "soon"
		d.EndDate = "later"
		msgs := Validate(ScreenTimelineBudget, d).Messages()
		assert.Equal(t, "Start date is not a valid date", msgs["startDate"])
		assert.Equal(t, "End date is not a valid date", msgs["endDate"])
	})
}

func TestValidate_SingleBudget(t *testing.T) {
	cases := map[string]bool{
		"":        false,
		"0":       false,
		"0,000":   false,
		"abc":     false,
		"1":       true,
		"150,000": true,
	}
	for total, ok := range cases {
		d := timelineDraft()
		d.TotalBudget = total
		assert.Equal(t, ok, CanAdvance(ScreenTimelineBudget, d), "totalBudget %q", total)
	}

	d := timelineDraft()
	d.TotalBudget = ""
	d.MinBudget = "abc"
	assert.Equal(t, map[string]string{"totalBudget": "Total budget must be greater than 0"}, Validate(ScreenTimelineBudget, d).Messages())
}

func TestValidate_RangeBudget(t *testing.T) {
	cases := []struct {
		min, max string
		ok       bool
	}{
		{"10,000", "20,000", true},
		{"10,000", "10,000", false},
		{"20,000", "10,000", false},
		{"", "20,000", false},
		{"10,000", "", false},
		{"0", "20,000", false},
		{"9", "10", true},
	}
	for _, tc := range cases {
		d := timelineDraft()
		d.BudgetType = domain.BudgetRange
		d.TotalBudget = ""
		d.MinBudget = tc.min
		d.MaxBudget = tc.max
		assert.Equal(t, tc.ok, CanAdvance(ScreenTimelineBudget, d), "min %q max %q", tc.min, tc.max)
	}

	t.Run("max not above min message", func(t *testing.T) {
		d := timelineDraft()
		d.BudgetType = domain.BudgetRange
		d.MinBudget = "50,000"
		d.MaxBudget = "40,000"
		msgs := Validate(ScreenTimelineBudget, d).Messages()
		assert.Equal(t, map[string]string{"maxBudget": "Maximum budget must be greater than minimum budget"}, msgs)
	})

	t.Run("zero max keeps the positive message", func(t *testing.T) {
		d := timelineDraft()
		d.BudgetType = domain.BudgetRange
		d.MinBudget = "50,000"
		d.MaxBudget = "0"
		assert.Equal(t, "Maximum budget must be greater than 0", Validate(ScreenTimelineBudget, d).Messages()["maxBudget"])
	})
}

func TestBooleanAndMessagesAgree(t *testing.T) {
	drafts := []domain.Draft{domain.NewDraft(), detailsDraft(), timelineDraft()}
	for _, d := range drafts {
		for _, s := range []Screen{ScreenProjectDetails, ScreenTimelineBudget} {
			assert.Equal(t, len(Validate(s, d).Messages()) == 0, CanAdvance(s, d))
		}
	}
}

func TestValidateAll(t *testing.T) {
	d := detailsDraft()
	d.StartDate = timelineDraft().StartDate
	d.TotalBudget = "5"
	assert.True(t, ValidateAll(d).Valid())

	d.ProjectTitle = ""
	d.TotalBudget = ""
	assert.Len(t, ValidateAll(d).Errors, 2)
}
