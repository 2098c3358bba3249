// internal/models/candidate.go
package models

// Candidate is a candidate record as delivered by the persistence layer.
// The engine reads these snapshots; it never writes them back.
type Candidate struct {
	ID                string   `json:"id"`
	FullName          string   `json:"fullName,omitempty"`
	Skills            []string `json:"skills"`
	ExperienceLevel   string   `json:"experienceLevel"`
	ExpectedSalaryMin int      `json:"expectedSalaryMin,omitempty"`
	ExpectedSalaryMax int      `json:"expectedSalaryMax,omitempty"`
	SalaryCurrency    string   `json:"salaryCurrency,omitempty"`
	Location          string   `json:"location,omitempty"`
	RemoteOK          bool     `json:"remoteOk"`
	UpdatedAt         string   `json:"updatedAt,omitempty"` // ISO 8601
}
