package models

import "strings"

// Job represents one job record as read from the external job-record store.
// The pipeline only depends on these fields; anything else the store carries
// is ignored.
type Job struct {
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	JobDescription string `json:"job_description"`
	MatchScore     int    `json:"match_score"`
	Applied        bool   `json:"applied"`
}

// DisplayName returns a short human-readable identifier for logs.
func (j *Job) DisplayName() string {
	title := j.JobTitle
	if title == "" {
		title = "Unknown Job"
	}
	company := j.Company
	if company == "" {
		company = "Unknown Company"
	}
	return title + " at " + company
}

// SearchText returns the lowercased text used for fuzzy job lookup.
func (j *Job) SearchText() string {
	return strings.ToLower(j.JobTitle + " " + j.Company + " " + j.Location)
}
