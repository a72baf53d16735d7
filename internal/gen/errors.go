package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidEntity indicates a struct that cannot be mapped.
	ErrInvalidEntity = errors.New("recordgen: invalid entity")
	// ErrInvalidConfig indicates an option error.
	ErrInvalidConfig = errors.New("recordgen: invalid configuration")
)

// EntityError reports a struct or struct field that cannot be mapped.
type EntityError struct {
	Type    string // Go type name
	Field   string // Go field name, if applicable
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	var b strings.Builder
	b.WriteString("recordgen: entity error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EntityError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrInvalidEntity.
func (e *EntityError) Is(target error) bool { return target == ErrInvalidEntity }

// NewEntityError creates a new EntityError.
func NewEntityError(typeName, fieldName, message string, cause error) *EntityError {
	return &EntityError{Type: typeName, Field: fieldName, Message: message, Cause: cause}
}

// ConfigError reports an invalid option value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("recordgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("recordgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}
