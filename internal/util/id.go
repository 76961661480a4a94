package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a compact, URL-safe unique ID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
