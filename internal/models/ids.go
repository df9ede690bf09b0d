package models

import "github.com/google/uuid"

// NewID mints an identifier for a fresh record.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether s is a well-formed record identifier. Malformed
// ids are rejected before any storage call is made.
func IsValidID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
