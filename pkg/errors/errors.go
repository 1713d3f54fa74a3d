// Package errors provides structured error handling for nearlight.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitAuth     = 3 // Not signed in or key not permitted
	ExitNotFound = 4 // Resource not found
	ExitNetwork  = 5 // RPC or wallet bridge failure
)

// ClientError is the structured error type for nearlight.
type ClientError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *ClientError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ClientError.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &ClientError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &ClientError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Session and signing errors.
	ErrNotSignedIn = &ClientError{
		Code:     "NOT_SIGNED_IN",
		Message:  "not signed in",
		ExitCode: ExitAuth,
	}

	ErrScopeViolation = &ClientError{
		Code:     "SCOPE_VIOLATION",
		Message:  "held access key cannot sign this action set for this receiver",
		ExitCode: ExitAuth,
	}

	ErrInvalidKey = &ClientError{
		Code:     "INVALID_KEY",
		Message:  "invalid key format",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &ClientError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// Amount and action errors.
	ErrInvalidUnit = &ClientError{
		Code:     "INVALID_UNIT",
		Message:  "unknown amount unit",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &ClientError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrInvalidAction = &ClientError{
		Code:     "INVALID_ACTION",
		Message:  "invalid action",
		ExitCode: ExitInput,
	}

	// Network errors.
	ErrRPC = &ClientError{
		Code:     "RPC_ERROR",
		Message:  "RPC request failed",
		ExitCode: ExitNetwork,
	}

	ErrWallet = &ClientError{
		Code:     "WALLET_ERROR",
		Message:  "wallet bridge reported a failure",
		ExitCode: ExitNetwork,
	}

	// Redirect reconciliation errors.
	ErrRedirectMismatch = &ClientError{
		Code:     "REDIRECT_MISMATCH",
		Message:  "wallet redirect does not reconcile with local state",
		ExitCode: ExitGeneral,
	}

	// Config and store errors.
	ErrConfigNotFound = &ClientError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &ClientError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &ClientError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	ErrStoreCorrupt = &ClientError{
		Code:     "STORE_CORRUPT",
		Message:  "persisted store is corrupted",
		ExitCode: ExitGeneral,
	}

	ErrTransactionNotFound = &ClientError{
		Code:     "TRANSACTION_NOT_FOUND",
		Message:  "transaction not found",
		ExitCode: ExitNotFound,
	}
)

// New creates a new ClientError with the given code and message.
func New(code, message string) *ClientError {
	return &ClientError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ce *ClientError
	if errors.As(err, &ce) {
		return &ClientError{
			Code:       ce.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ce.Message),
			Details:    ce.Details,
			Suggestion: ce.Suggestion,
			Cause:      err,
			ExitCode:   ce.ExitCode,
		}
	}

	return &ClientError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ce *ClientError
	if errors.As(err, &ce) {
		return &ClientError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    details,
			Suggestion: ce.Suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &ClientError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ce *ClientError
	if errors.As(err, &ce) {
		return &ClientError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    ce.Details,
			Suggestion: suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &ClientError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
