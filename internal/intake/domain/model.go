package domain

// BudgetType selects which budget field group is authoritative.
type BudgetType string

const (
	BudgetSingle BudgetType = "single"
	BudgetRange  BudgetType = "range"
)

// CategoryOther unlocks the free-text ProjectCategoryOther field.
const CategoryOther = "other"

const (
	DefaultMaxFileSize int64 = 50 * 1024 * 1024
	DefaultMaxFiles          = 10
)

// FileRef describes a file that already lives in remote storage.
type FileRef struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// Vendor is one matched vendor as returned by the backend.
type Vendor struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Logo          string  `json:"logo,omitempty"`
	Category      string  `json:"category,omitempty"`
	Specialty     string  `json:"specialty,omitempty"`
	Description   string  `json:"description,omitempty"`
	Location      string  `json:"location,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	Tier          string  `json:"tier,omitempty"`
	MatchingScore float64 `json:"matchingScore,omitempty"`
	StartFrom     string  `json:"startFrom,omitempty"`
}

// Draft holds every field collected by the wizard for one submission attempt.
//
// MatchedVendors is nil until a submission succeeds in this session; an
// empty, non-nil slice means the backend matched nobody.
type Draft struct {
	ClientIndustry        string    `json:"clientIndustry"`
	ProjectTitle          string    `json:"projectTitle"`
	ProjectCategory       string    `json:"projectCategory"`
	ProjectCategoryOther  string    `json:"projectCategoryOther"`
	ProjectObjective      string    `json:"projectObjective"`
	BusinessRequirements  string    `json:"businessRequirements"`
	TechnicalRequirements string    `json:"technicalRequirements"`
	FileUploads           []FileRef `json:"fileUploads"`

	StartDate     string     `json:"startDate"`
	EndDate       string     `json:"endDate"`
	FlexibleDates bool       `json:"flexibleDates"`
	BudgetType    BudgetType `json:"budgetType"`
	TotalBudget   string     `json:"totalBudget"`
	MinBudget     string     `json:"minBudget"`
	MaxBudget     string     `json:"maxBudget"`

	MatchedVendors []Vendor `json:"matchedVendors,omitempty"`
}

// NewDraft returns the initial empty draft.
func NewDraft() Draft {
	return Draft{
		FileUploads: []FileRef{},
		BudgetType:  BudgetSingle,
	}
}

// Clone returns a copy that shares no slices with d.
func (d Draft) Clone() Draft {
	out := d
	out.FileUploads = append([]FileRef{}, d.FileUploads...)
	if d.MatchedVendors != nil {
		out.MatchedVendors = append([]Vendor{}, d.MatchedVendors...)
	}
	return out
}

// FileIndex returns the position of the file with the given URL, or -1.
func (d Draft) FileIndex(fileURL string) int {
	for i, f := range d.FileUploads {
		if f.FileURL == fileURL {
			return i
		}
	}
	return -1
}

// Submitted reports whether a submission has succeeded in this session.
func (d Draft) Submitted() bool {
	return d.MatchedVendors != nil
}
