package model

import (
	"strings"
	"time"
)

// Identity is the authenticated principal a session belongs to. It is
// established by the provider and read-only on this side.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// Optional display attributes from provider metadata.
	FullName      string `json:"fullName,omitempty"`
	PreferredName string `json:"preferredName,omitempty"`
}

// DisplayName picks the friendliest available name for greetings:
// preferred name, then full name, then the local part of the email.
func (id Identity) DisplayName() string {
	if n := strings.TrimSpace(id.PreferredName); n != "" {
		return n
	}
	if n := strings.TrimSpace(id.FullName); n != "" {
		return n
	}
	if at := strings.Index(id.Email, "@"); at > 0 {
		return id.Email[:at]
	}
	return "there"
}

// Session is a provider-issued credential bound to exactly one identity.
// A nil *Session means "no session" (unauthenticated).
type Session struct {
	AccessToken string    `json:"accessToken"`
	Identity    Identity  `json:"identity"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// Note is a private text note owned by one identity. Notes are created
// and deleted, never edited in place.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}
