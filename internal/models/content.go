package models

// Webinar is an online session advertised on the site.
type Webinar struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Duration         string     `json:"duration"`
	LearningOutcomes []string   `json:"learningOutcomes"`
	FormLink         string     `json:"formLink"`
	ImageURL         string     `json:"imageUrl"`
	Description      string     `json:"description"`
	CreatedAt        Timestamp  `json:"createdAt"`
	UpdatedAt        *Timestamp `json:"updatedAt,omitempty"`
}

// Event is an in-person or hybrid gathering.
type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Location         string     `json:"location"`
	Description      string     `json:"description"`
	ImageURL         string     `json:"imageUrl"`
	RegistrationLink string     `json:"registrationLink"`
	CreatedAt        Timestamp  `json:"createdAt"`
	UpdatedAt        *Timestamp `json:"updatedAt,omitempty"`
}

// Testimonial is a curated quote from a past mentee.
type Testimonial struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	ImageURL  string     `json:"imageUrl"`
	Content   string     `json:"content"`
	Rating    int        `json:"rating"`
	CreatedAt Timestamp  `json:"createdAt"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// Platform identifies a community network.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformOther     Platform = "other"
)

// Platforms lists the known platforms in display order.
var Platforms = []Platform{
	PlatformLinkedIn, PlatformYouTube, PlatformInstagram, PlatformTwitter,
	PlatformFacebook, PlatformWhatsApp, PlatformOther,
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// CommunityLink points at one of the mentor's community channels.
type CommunityLink struct {
	ID        string    `json:"id"`
	Platform  Platform  `json:"platform"`
	URL       string    `json:"url"`
	CreatedAt Timestamp `json:"createdAt"`
}

// GallerySection buckets gallery images.
type GallerySection string

const (
	SectionOccasions GallerySection = "occasions"
	SectionEvents    GallerySection = "events"
	SectionWorkshops GallerySection = "workshops"
	SectionSeminars  GallerySection = "seminars"
	SectionOther     GallerySection = "other"
)

// GallerySections lists the known sections in display order.
var GallerySections = []GallerySection{
	SectionOccasions, SectionEvents, SectionWorkshops, SectionSeminars, SectionOther,
}

// Valid reports whether s is a known section. Stored records may carry
// other values; they are still listed.
func (s GallerySection) Valid() bool {
	for _, known := range GallerySections {
		if s == known {
			return true
		}
	}
	return false
}

// GalleryImage is a single photo shown in the public gallery.
type GalleryImage struct {
	ID          string         `json:"id"`
	URL         string         `json:"url"`
	Section     GallerySection `json:"section"`
	EventName   string         `json:"eventName"`
	Description string         `json:"description"`
	UploadedAt  Timestamp      `json:"uploadedAt"`
}

// GalleryGroup is one section of the public gallery.
type GalleryGroup struct {
	Section GallerySection `json:"section"`
	Images  []GalleryImage `json:"images"`
}
