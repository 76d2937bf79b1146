// Package errors provides custom error types for the tradematch system.
// These errors enable programmatic error checking across the reconciliation
// stages and keep fatal configuration problems distinct from non-fatal
// data warnings.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the tradematch system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a fatal configuration problem
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingField indicates that declared fields are absent from a dataset
	ErrMissingField = errors.New("missing field")

	// ErrEmptyInput indicates a dataset with zero records (non-fatal)
	ErrEmptyInput = errors.New("empty input")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError reports an unusable key-pair list, candidate list or
// key declaration. It is always fatal and raised before any record is processed.
type ConfigurationError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(component, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// MissingFieldError lists every declared field absent from a dataset in a
// single report.
type MissingFieldError struct {
	Dataset string
	Fields  []string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("missing required field(s) in %s: %s", e.Dataset, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// Is implements errors.Is support
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// NewMissingFieldError creates a new MissingFieldError. Duplicate field names
// are reported once, in first-seen order.
func NewMissingFieldError(dataset string, fields []string) *MissingFieldError {
	seen := make(map[string]bool, len(fields))
	unique := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}
	return &MissingFieldError{Dataset: dataset, Fields: unique}
}

// MergeMissingFields combines missing-field reports from several datasets into
// one error. A single non-empty report is returned as is; otherwise fields are
// qualified by dataset name. Returns nil when nothing is missing.
func MergeMissingFields(reports ...*MissingFieldError) error {
	var present []*MissingFieldError
	for _, r := range reports {
		if r != nil && len(r.Fields) > 0 {
			present = append(present, r)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	var names, fields []string
	for _, r := range present {
		names = append(names, r.Dataset)
		for _, f := range r.Fields {
			if r.Dataset != "" {
				f = r.Dataset + "." + f
			}
			fields = append(fields, f)
		}
	}
	return NewMissingFieldError(strings.Join(names, "+"), fields)
}

// EmptyInputWarning marks a dataset with zero records. Processing continues;
// the warning is collected in results and logged.
type EmptyInputWarning struct {
	Dataset string
}

// Error implements the error interface
func (e *EmptyInputWarning) Error() string {
	return fmt.Sprintf("dataset %s has no records", e.Dataset)
}

// Is implements errors.Is support
func (e *EmptyInputWarning) Is(target error) bool {
	return target == ErrEmptyInput
}

// NewEmptyInputWarning creates a new EmptyInputWarning
func NewEmptyInputWarning(dataset string) *EmptyInputWarning {
	return &EmptyInputWarning{Dataset: dataset}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsMissingField checks if an error reports missing dataset fields
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsEmptyInput checks if an error is an empty input warning
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

// IsFatal reports whether err must stop a reconciliation run.
// Empty input warnings are the only non-fatal kind.
func IsFatal(err error) bool {
	return err != nil && !IsEmptyInput(err)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "json"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapConfiguration wraps an error as a ConfigurationError
func WrapConfiguration(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigurationError(component, err.Error(), err)
}
