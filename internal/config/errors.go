package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ConfigurationError describes a problem with the configuration file.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`
	FileName    string   `json:"fileName"`
	ErrorType   string   `json:"errorType"` // io, parse or validation
	Field       string   `json:"field,omitempty"`
	Message     string   `json:"message"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Field != "" {
		return fmt.Sprintf("[%s] %s: field '%s': %s", ce.ErrorType, ce.FileName, ce.Field, ce.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FileName, ce.Message)
}

// DetailedError returns a multi-line description with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error in %s", ce.FileName))
	parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	if ce.Field != "" {
		parts = append(parts, fmt.Sprintf("  Field: %s", ce.Field))
	}
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a configuration error for the file at path.
func NewConfigurationError(path, errorType, message string) ConfigurationError {
	return ConfigurationError{
		FilePath:  path,
		FileName:  filepath.Base(path),
		ErrorType: errorType,
		Message:   message,
	}
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// GetDetailedReport returns a detailed report of all errors
func (cec *ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Detailed Configuration Error Report (%d errors):", len(cec.Errors)))
	parts = append(parts, strings.Repeat("=", 60))

	for i, err := range cec.Errors {
		parts = append(parts, fmt.Sprintf("\nError %d:", i+1))
		parts = append(parts, err.DetailedError())
	}

	return strings.Join(parts, "\n")
}

// DetailedReport returns the multi-line report for a configuration error or
// collection wrapped in err, including field names and suggestions.
func DetailedReport(err error) (string, bool) {
	var collection ConfigurationErrorCollection
	if errors.As(err, &collection) {
		return collection.GetDetailedReport(), true
	}
	var single ConfigurationError
	if errors.As(err, &single) {
		return single.DetailedError(), true
	}
	return "", false
}

// IsConfigurationError reports whether err is a single configuration error
// or a collection of them.
func IsConfigurationError(err error) bool {
	var single ConfigurationError
	if errors.As(err, &single) {
		return true
	}
	var collection ConfigurationErrorCollection
	return errors.As(err, &collection)
}
