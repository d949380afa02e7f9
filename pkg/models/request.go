package models

// TailorRequest represents the request payload for tailoring a resume to a
// single job over the HTTP surface.
type TailorRequest struct {
	Job     Job            `json:"job" validate:"required"`
	Options *TailorOptions `json:"options,omitempty"`
}

// TailorOptions provides additional configuration for tailor requests.
type TailorOptions struct {
	SectionPaths []string `json:"section_paths,omitempty"` // overrides configured allowed paths
	MaxRetries   int      `json:"max_retries,omitempty"`   // validation retry ceiling override
	SkipPDF      bool     `json:"skip_pdf,omitempty"`
}
