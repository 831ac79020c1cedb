package dto

import "github.com/noah-isme/mentor-site-api/internal/models"

// WebinarRequest is the create payload for a webinar.
type WebinarRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Date             string   `json:"date" validate:"required"`
	Time             string   `json:"time" validate:"required"`
	Duration         string   `json:"duration" validate:"max=60"`
	LearningOutcomes []string `json:"learningOutcomes" validate:"dive,required"`
	FormLink         string   `json:"formLink"`
	ImageURL         string   `json:"imageUrl"`
	Description      string   `json:"description"`
}

// WebinarUpdate carries only the fields being changed.
type WebinarUpdate struct {
	Title            *string   `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Date             *string   `json:"date,omitempty" validate:"omitnil,min=1"`
	Time             *string   `json:"time,omitempty" validate:"omitnil,min=1"`
	Duration         *string   `json:"duration,omitempty" validate:"omitnil,max=60"`
	LearningOutcomes *[]string `json:"learningOutcomes,omitempty" validate:"omitnil,dive,required"`
	FormLink         *string   `json:"formLink,omitempty"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	Description      *string   `json:"description,omitempty"`
}

// EventRequest is the create payload for an event.
type EventRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Date             string `json:"date" validate:"required"`
	Time             string `json:"time" validate:"required"`
	Location         string `json:"location" validate:"max=200"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl"`
	RegistrationLink string `json:"registrationLink"`
}

// EventUpdate carries only the fields being changed.
type EventUpdate struct {
	Title            *string `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Date             *string `json:"date,omitempty" validate:"omitnil,min=1"`
	Time             *string `json:"time,omitempty" validate:"omitnil,min=1"`
	Location         *string `json:"location,omitempty" validate:"omitnil,max=200"`
	Description      *string `json:"description,omitempty"`
	ImageURL         *string `json:"imageUrl,omitempty"`
	RegistrationLink *string `json:"registrationLink,omitempty"`
}

// TestimonialRequest is the create payload for a testimonial.
type TestimonialRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"max=120"`
	ImageURL string `json:"imageUrl"`
	Content  string `json:"content" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

// TestimonialUpdate carries only the fields being changed.
type TestimonialUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,min=1,max=120"`
	Role     *string `json:"role,omitempty" validate:"omitnil,max=120"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Content  *string `json:"content,omitempty" validate:"omitnil,min=1"`
	Rating   *int    `json:"rating,omitempty" validate:"omitnil,min=1,max=5"`
}

// CommunityLinkRequest is the create payload for a community link.
type CommunityLinkRequest struct {
	Platform models.Platform `json:"platform" validate:"required,platform"`
	URL      string          `json:"url" validate:"required"`
}

// CommunityLinkUpdate carries only the fields being changed.
type CommunityLinkUpdate struct {
	Platform *models.Platform `json:"platform,omitempty" validate:"omitnil,platform"`
	URL      *string          `json:"url,omitempty" validate:"omitnil,min=1"`
}

// GalleryImageRequest is the create payload for a single gallery image.
type GalleryImageRequest struct {
	URL         string                `json:"url" validate:"required"`
	Section     models.GallerySection `json:"section" validate:"required,gallery_section"`
	EventName   string                `json:"eventName" validate:"max=200"`
	Description string                `json:"description"`
}

// GalleryImageUpdate carries only the fields being changed.
type GalleryImageUpdate struct {
	URL         *string                `json:"url,omitempty" validate:"omitnil,min=1"`
	Section     *models.GallerySection `json:"section,omitempty" validate:"omitnil,gallery_section"`
	EventName   *string                `json:"eventName,omitempty" validate:"omitnil,max=200"`
	Description *string                `json:"description,omitempty"`
}

// GalleryBulkImportRequest creates one image per non-blank line of URLs.
type GalleryBulkImportRequest struct {
	URLs        string                `json:"urls" validate:"required"`
	Section     models.GallerySection `json:"section" validate:"required,gallery_section"`
	EventName   string                `json:"eventName" validate:"max=200"`
	Description string                `json:"description"`
}
