package sqlrecord

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Standard sentinel errors, matched by the typed errors below through errors.Is.
var (
	// ErrConfiguration is returned when table, field or parameter metadata
	// required by an operation is missing or invalid.
	ErrConfiguration = errors.New("sqlrecord: invalid configuration")

	// ErrProviderNotSupported is returned when no dialect is registered for
	// a provider name or connection string.
	ErrProviderNotSupported = errors.New("sqlrecord: provider not supported")

	// ErrTransactionState is returned when a transaction handle is used after
	// its transaction was rolled back or released.
	ErrTransactionState = errors.New("sqlrecord: invalid transaction state")

	// ErrCast is returned when a value cannot be coerced to the type declared
	// by a command parameter.
	ErrCast = errors.New("sqlrecord: invalid cast")
)

// ConfigurationError represents missing or invalid metadata, such as a table
// without a primary key or an empty identifier.
type ConfigurationError struct {
	Object  string // Table, field or parameter the error refers to.
	Message string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("sqlrecord: configuration error on %s: %s", e.Object, e.Message)
	}
	return fmt.Sprintf("sqlrecord: configuration error: %s", e.Message)
}

// Is reports whether the target error matches ConfigurationError.
// This allows errors.Is(err, ErrConfiguration) to return true.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewConfigurationError returns a new ConfigurationError.
func NewConfigurationError(object, message string) *ConfigurationError {
	return &ConfigurationError{Object: object, Message: message}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}

// ProviderNotSupportedError is returned when a provider name (or a connection
// string, when sniffing) does not resolve to a registered dialect.
type ProviderNotSupportedError struct {
	Provider  string
	Available []string
}

// Error returns the error string.
func (e *ProviderNotSupportedError) Error() string {
	name := e.Provider
	if name == "" {
		name = "<empty>"
	}
	if len(e.Available) == 0 {
		return fmt.Sprintf("sqlrecord: provider %q not supported", name)
	}
	return fmt.Sprintf("sqlrecord: provider %q not supported (available: %s)", name, strings.Join(e.Available, ", "))
}

// Is reports whether the target error matches ProviderNotSupportedError.
func (e *ProviderNotSupportedError) Is(err error) bool {
	return err == ErrProviderNotSupported
}

// NewProviderNotSupportedError returns a new ProviderNotSupportedError.
func NewProviderNotSupportedError(provider string, available []string) *ProviderNotSupportedError {
	return &ProviderNotSupportedError{Provider: provider, Available: available}
}

// IsProviderNotSupported returns true if the error is a ProviderNotSupportedError.
func IsProviderNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var e *ProviderNotSupportedError
	return errors.As(err, &e) || errors.Is(err, ErrProviderNotSupported)
}

// TransactionStateError represents an operation on a transaction that was
// already rolled back, released, or never started.
type TransactionStateError struct {
	Op      string // Operation (e.g., "complete", "begin")
	Message string
}

// Error returns the error string.
func (e *TransactionStateError) Error() string {
	return fmt.Sprintf("sqlrecord: transaction %s: %s", e.Op, e.Message)
}

// Is reports whether the target error matches TransactionStateError.
func (e *TransactionStateError) Is(err error) bool {
	return err == ErrTransactionState
}

// NewTransactionStateError returns a new TransactionStateError.
func NewTransactionStateError(op, message string) *TransactionStateError {
	return &TransactionStateError{Op: op, Message: message}
}

// IsTransactionStateError returns true if the error is a TransactionStateError.
func IsTransactionStateError(err error) bool {
	if err == nil {
		return false
	}
	var e *TransactionStateError
	return errors.As(err, &e) || errors.Is(err, ErrTransactionState)
}

// CastError represents a value that cannot be coerced to a parameter's
// declared type.
type CastError struct {
	Parameter string // Parameter or property name
	Type      string // Declared portable type
	Value     any
	Err       error // Underlying conversion error, if any
}

// Error returns the error string.
func (e *CastError) Error() string {
	msg := fmt.Sprintf("sqlrecord: cannot cast %s value %v to %s", typeName(e.Value), e.Value, e.Type)
	if e.Parameter != "" {
		msg += fmt.Sprintf(" for %q", e.Parameter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CastError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches CastError.
func (e *CastError) Is(err error) bool {
	return err == ErrCast
}

// NewCastError returns a new CastError.
func NewCastError(parameter, typ string, value any, err error) *CastError {
	return &CastError{Parameter: parameter, Type: typ, Value: value, Err: err}
}

// IsCastError returns true if the error is a CastError.
func IsCastError(err error) bool {
	if err == nil {
		return false
	}
	var e *CastError
	return errors.As(err, &e) || errors.Is(err, ErrCast)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
