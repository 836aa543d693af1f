package domain

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// NewSimulationID generates a sortable simulation ID with prefix.
func NewSimulationID() string {
	return fmt.Sprintf("sim_%s", ksuid.New().String())
}

// NewDecisionID generates a sortable decision ID with prefix.
func NewDecisionID() string {
	return fmt.Sprintf("dec_%s", ksuid.New().String())
}
