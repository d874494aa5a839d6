package domain

// ProjectStatusSubmitted is the status every new project is created with.
const ProjectStatusSubmitted = "submitted"

// ProjectPayload is the body of POST /projects. Optional groups are pointers
// or omitempty so that inactive fields are left out entirely.
type ProjectPayload struct {
	ClientIndustry        string   `json:"clientIndustry"`
	ProjectTitle          string   `json:"projectTitle"`
	ProjectCategory       string   `json:"projectCategory"`
	ProjectCategoryOther  string   `json:"projectCategoryOther,omitempty"`
	ProjectObjective      string   `json:"projectObjective"`
	BusinessRequirements  string   `json:"businessRequirements"`
	TechnicalRequirements string   `json:"technicalRequirements,omitempty"`
	FileURLs              []string `json:"fileUrls"`

	StartDate     *string    `json:"startDate,omitempty"`
	EndDate       *string    `json:"endDate,omitempty"`
	FlexibleDates bool       `json:"flexibleDates"`
	BudgetType    BudgetType `json:"budgetType"`
	TotalBudget   string     `json:"totalBudget,omitempty"`
	MinBudget     string     `json:"minBudget,omitempty"`
	MaxBudget     string     `json:"maxBudget,omitempty"`

	Status string `json:"status"`
}

// ProjectResult is the parsed acknowledgement of a created project.
type ProjectResult struct {
	ID             string   `json:"id"`
	MatchedVendors []Vendor `json:"matchedVendors"`
}

// UserProfile is the identity record synced to the backend.
type UserProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
