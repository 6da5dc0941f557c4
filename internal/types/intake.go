package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CandidateIntake is the form a candidate fills in before an assessment starts.
type CandidateIntake struct {
	Name        string `json:"name" validate:"required,min=1"`
	Email       string `json:"email" validate:"required,email"`
	LinkedInURL string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	// ResumeRef points at the uploaded resume: an object key, an s3:// URI or a web URL.
	ResumeRef  string `json:"resume_ref" validate:"required"`
	ResumeMIME string `json:"resume_mime,omitempty"`
}

// Validate validates the CandidateIntake using the validator.
func (c *CandidateIntake) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.ResumeRef = strings.TrimSpace(c.ResumeRef)
	validate := validator.New()
	return validate.Struct(c)
}
