// internal/models/job.go
package models

// Job is a job posting record as delivered by the persistence layer.
type Job struct {
	ID              string   `json:"id"`
	Title           string   `json:"title,omitempty"`
	CompanyID       string   `json:"companyId,omitempty"`
	RequiredSkills  []string `json:"requiredSkills"`
	ExperienceLevel string   `json:"experienceLevel"`
	SalaryMin       int      `json:"salaryMin,omitempty"`
	SalaryMax       int      `json:"salaryMax,omitempty"`
	SalaryCurrency  string   `json:"salaryCurrency,omitempty"`
	Location        string   `json:"location,omitempty"`
	RemoteOK        bool     `json:"remoteOk"`
	UpdatedAt       string   `json:"updatedAt,omitempty"` // ISO 8601
}
