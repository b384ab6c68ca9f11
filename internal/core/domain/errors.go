package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrSettingsNotFound   = errors.New("voting settings not found")
	ErrVotingUnavailable  = errors.New("public voting is not available")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidAccessToken = errors.New("invalid access token")
)

// ValidationError carries field-level messages. Messages are meant to be
// shown to the person who filled the form and must stay generic.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// ErrOrNil returns e as an error only when it holds at least one field.
func (e *ValidationError) ErrOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
