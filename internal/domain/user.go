package domain

import (
	"regexp"
	"strings"
	"time"
)

// DefaultAvatarURL is shown until a user uploads an avatar.
const DefaultAvatarURL = "https://placehold.co/80x80"

// EmailPattern is the address shape accepted at registration.
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Profile holds the user's public presentation.
type Profile struct {
	AvatarURL       string
	AvatarStorageID string
	Bio             string
}

// User represents an account of the blog.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Profile      Profile
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeUser applies the stored form of the identifying fields.
func NormalizeUser(u *User) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.TrimSpace(u.Email)
	if u.Profile.AvatarURL == "" {
		u.Profile.AvatarURL = DefaultAvatarURL
	}
}

// Sanitized returns a copy without credentials.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return &u
}
