package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one complete evaluation or optimization run.
	RunID ID
	// EntityID identifies a row of the time-course matrix (gene, phosphosite, ...).
	EntityID string
	// GroupID identifies an annotation group (kinase, gene set, pathway, ...).
	GroupID string
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id EntityID) String() string { return string(id) }
func (id GroupID) String() string  { return string(id) }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}
