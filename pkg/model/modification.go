package model

// ModificationService is a static catalog entry for a modification
// work-stream. Entries are immutable at booking time.
type ModificationService struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	EstimatedHours float64 `json:"estimatedHours"`
	Description    string  `json:"description,omitempty"`
}

// Estimate is the quoted duration and cost for a set of modification
// services bundled into one project.
type Estimate struct {
	Hours int     `json:"hours"`
	Cost  float64 `json:"cost"`
}
