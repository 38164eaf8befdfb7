package config

import (
	"fmt"
	"strings"

	"milestones/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	msg := ve.Message
	if ve.Value != nil {
		msg = fmt.Sprintf("%s (got %v)", msg, ve.Value)
	}
	if ve.Field == "" {
		return msg
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, msg)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks a fully merged configuration.
func Validate(c Config) ValidationErrors {
	var errs ValidationErrors

	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs.Add("store.path", "is required for the file driver")
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs.Add("store.dsn", "is required for the postgres driver")
		}
	default:
		errs.Add("store.driver", "must be one of file, memory, postgres", c.Store.Driver)
	}

	if c.Limits.MaxDependencies < 0 {
		errs.Add("limits.maxDependencies", "must not be negative", c.Limits.MaxDependencies)
	}
	if c.Limits.MaxMilestones < 0 {
		errs.Add("limits.maxMilestones", "must not be negative", c.Limits.MaxMilestones)
	}
	if c.Cache.Projects < 0 {
		errs.Add("cache.projects", "must not be negative", c.Cache.Projects)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs.Add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs.Add("log.format", "must be text or json", c.Log.Format)
	}

	return errs
}
