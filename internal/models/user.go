package models

// UserRole represents an admin console role.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Capability is a single permission checked before a mutation.
type Capability string

const (
	CapContentWrite    Capability = "content:write"
	CapGalleryWrite    Capability = "gallery:write"
	CapMediaUpload     Capability = "media:upload"
	CapReviewsModerate Capability = "reviews:moderate"
	CapMessagesManage  Capability = "messages:manage"
	CapMessagesExport  Capability = "messages:export"
)

var roleCapabilities = map[UserRole][]Capability{
	RoleAdmin: {
		CapContentWrite, CapGalleryWrite, CapMediaUpload,
		CapReviewsModerate, CapMessagesManage, CapMessagesExport,
	},
	RoleEditor: {CapContentWrite, CapGalleryWrite, CapMediaUpload},
}

// Capabilities returns the permissions granted to r.
func (r UserRole) Capabilities() []Capability {
	return append([]Capability(nil), roleCapabilities[r]...)
}

// Can reports whether r grants capability c.
func (r UserRole) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// AdminUser is an account allowed into the admin console.
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	FullName     string     `json:"fullName"`
	Role         UserRole   `json:"role"`
	Active       bool       `json:"active"`
	LastLogin    *Timestamp `json:"lastLogin,omitempty"`
	CreatedAt    Timestamp  `json:"createdAt"`
	UpdatedAt    *Timestamp `json:"updatedAt,omitempty"`
}
