package models

import "time"

// TailorResponse represents the response from a tailor request.
type TailorResponse struct {
	Success        bool          `json:"success"`
	Result         *TailorResult `json:"result,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchJobResult records the outcome of one job in a batch run. A skipped job
// is a success whose output already existed.
type BatchJobResult struct {
	Job      Job    `json:"job"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
	YAMLPath string `json:"yaml_path,omitempty"`
	PDFPath  string `json:"pdf_path,omitempty"`
}
