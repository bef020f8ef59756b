package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SyntaxError indicates a PHP file could not be tokenized or parsed
	SyntaxError ErrorCode = "SYNTAX_ERROR"
	// DecodeError indicates a config document could not be decoded
	DecodeError ErrorCode = "DECODE_ERROR"
	// IOError indicates a file could not be read or written
	IOError ErrorCode = "IO_ERROR"
	// ConfigInvalid indicates the tool configuration is invalid
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ManifestInvalid indicates the package manifest is unreadable or invalid
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// ClassmapInvalid indicates the composer classmap could not be loaded
	ClassmapInvalid ErrorCode = "CLASSMAP_INVALID"
	// RunNotFound indicates a journal run id does not exist
	RunNotFound ErrorCode = "RUN_NOT_FOUND"
	// RestoreConflict indicates a file changed since the run that rewrote it
	RestoreConflict ErrorCode = "RESTORE_CONFLICT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// PrefixError represents an error with code, message, and suggestions
type PrefixError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a PrefixError carrying the default fixes for code
func New(code ErrorCode, message string, cause error) *PrefixError {
	return &PrefixError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a PrefixError without a cause from a format string
func Newf(code ErrorCode, format string, args ...interface{}) *PrefixError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *PrefixError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PrefixError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *PrefixError) WithDetails(details interface{}) *PrefixError {
	e.Details = details
	return e
}

// IsCode reports whether any error in err's chain is a PrefixError with code
func IsCode(err error, code ErrorCode) bool {
	var pe *PrefixError
	for err != nil {
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.cause
	}
	return false
}

// CodeOf returns the code of the outermost PrefixError in err's chain
func CodeOf(err error) ErrorCode {
	var pe *PrefixError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	SyntaxError: {
		{
			Type:        RunCommand,
			Command:     "php -l ${path}",
			Safe:        true,
			Description: "Check the file with the PHP linter",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "nsprefix config show",
			Safe:        true,
			Description: "Show the effective configuration",
		},
		{
			Type:        EditFile,
			Path:        ".nsprefix/config.json",
			Description: "Fix the invalid field",
		},
	},
	ManifestInvalid: {
		{
			Type:        EditFile,
			Path:        "nsprefix.toml",
			Description: "Fix the package manifest",
		},
	},
	ClassmapInvalid: {
		{
			Type:        RunCommand,
			Command:     "composer dump-autoload --classmap-authoritative",
			Safe:        true,
			Description: "Regenerate the composer classmap",
		},
	},
	RunNotFound: {
		{
			Type:        RunCommand,
			Command:     "nsprefix runs",
			Safe:        true,
			Description: "List recorded runs",
		},
	},
	RestoreConflict: {
		{
			Type:        RunCommand,
			Command:     "nsprefix restore --force ${run_id}",
			Description: "Overwrite files changed since the run",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
