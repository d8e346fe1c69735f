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

// Origin identifies the context (a surface in some process) that wrote to the store.
type Origin ID

// OriginExternal marks changes whose writer is unknown, such as another process
// editing a shared file.
const OriginExternal Origin = "external"

// NewOrigin allocates an origin for a new context
func NewOrigin() Origin { return Origin(NewID()) }

func (o Origin) String() string { return ID(o).String() }

// ParseOrigin parses a string into Origin
func ParseOrigin(s string) (Origin, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("origin cannot be empty")
	}
	return Origin(s), nil
}
