package tui

import (
	"fmt"
	"strings"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/validation"
)

const notSpecified = "Not specified"

// Summary renders the review screen for d.
func Summary(c *domain.Catalog, d domain.Draft) string {
	var b strings.Builder

	b.WriteString("Project details\n")
	row(&b, "Client industry", c.IndustryLabel(d.ClientIndustry))
	row(&b, "Project title", d.ProjectTitle)
	row(&b, "Project category", c.CategoryLabel(d.ProjectCategory, d.ProjectCategoryOther))
	row(&b, "Objective", d.ProjectObjective)
	row(&b, "Business requirements", d.BusinessRequirements)
	if t := strings.TrimSpace(d.TechnicalRequirements); t != "" {
		row(&b, "Technical requirements", t)
	}
	if len(d.FileUploads) > 0 {
		names := make([]string, len(d.FileUploads))
		for i, f := range d.FileUploads {
			names[i] = f.FileName
		}
		row(&b, "Attachments", strings.Join(names, ", "))
	}

	b.WriteString("\nTimeline & budget\n")
	row(&b, "Start date", displayDate(d.StartDate))
	row(&b, "End date", displayDate(d.EndDate))
	flexible := "No"
	if d.FlexibleDates {
		flexible = "Yes"
	}
	row(&b, "Flexible dates", flexible)
	row(&b, "Budget", displayBudget(d))

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = notSpecified
	}
	fmt.Fprintf(b, "  %-24s %s\n", label+":", value)
}

func displayDate(s string) string {
	t, ok := validation.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("January 2, 2006")
}

func displayBudget(d domain.Draft) string {
	if d.BudgetType == domain.BudgetRange {
		if d.MinBudget == "" && d.MaxBudget == "" {
			return ""
		}
		return fmt.Sprintf("$%s - $%s", validation.FormatCurrency(d.MinBudget), validation.FormatCurrency(d.MaxBudget))
	}
	if d.TotalBudget == "" {
		return ""
	}
	return "$" + validation.FormatCurrency(d.TotalBudget)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
