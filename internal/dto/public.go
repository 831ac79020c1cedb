package dto

import "github.com/noah-isme/mentor-site-api/internal/models"

// ReviewSubmission is posted by visitors from the public review form.
type ReviewSubmission struct {
	Name        string             `json:"name" validate:"required,max=120"`
	Email       string             `json:"email" validate:"required,email"`
	Rating      int                `json:"rating" validate:"required,min=1,max=5"`
	Title       string             `json:"title" validate:"required,max=200"`
	Content     string             `json:"content" validate:"required,max=5000"`
	ProgramType models.ProgramType `json:"programType" validate:"required,program_type"`
}

// ContactSubmission is posted by visitors from the contact form.
type ContactSubmission struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ReviewQuery selects public or admin review lists.
type ReviewQuery struct {
	ProgramType models.ProgramType  `form:"programType" validate:"omitempty,program_type"`
	Status      models.ReviewStatus `form:"status" validate:"omitempty,review_status"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
