// Package prompts manages generation instructions. Every stage has a
// built-in default; a stored prompt marked active replaces the default
// instructions for its stage. Output specs are fixed and never overridden.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

// Prompt represents a named instruction override for a generation stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate checks required fields.
func (c CreateCommand) Validate() error {
	return validate(c.Name, c.Stage, c.Instructions)
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate checks required fields.
func (c UpdateCommand) Validate() error {
	return validate(c.Name, c.Stage, c.Instructions)
}

func validate(name string, stage Stage, instructions string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(instructions) == "" {
		return ErrInvalid
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	return nil
}
