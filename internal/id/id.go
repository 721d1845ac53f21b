package id

import "github.com/google/uuid"

// New returns a fresh entity identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s is a well-formed entity identifier.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
