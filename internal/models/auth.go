package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an admin.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// UserInfo describes the authenticated admin in responses.
type UserInfo struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	FullName     string       `json:"fullName"`
	Role         UserRole     `json:"role"`
	Capabilities []Capability `json:"capabilities"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Can reports whether the token holder has capability c. A nil receiver
// has no capabilities.
func (c *JWTClaims) Can(capability Capability) bool {
	return c != nil && c.Role.Can(capability)
}
