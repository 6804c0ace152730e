package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PathNotFound indicates the project root does not exist
	PathNotFound ErrorCode = "PATH_NOT_FOUND"
	// ServerUnavailable indicates the language server could not be started
	ServerUnavailable ErrorCode = "SERVER_UNAVAILABLE"
	// HandshakeFailed indicates the initialize exchange did not succeed
	HandshakeFailed ErrorCode = "HANDSHAKE_FAILED"
	// Timeout indicates a request got no response in time
	Timeout ErrorCode = "TIMEOUT"
	// ProtocolError indicates a malformed message or an error response
	ProtocolError ErrorCode = "PROTOCOL_ERROR"
	// ExtractionFailed indicates a single file could not be analyzed
	ExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// MalformedManifest indicates a manifest file could not be parsed
	MalformedManifest ErrorCode = "MALFORMED_MANIFEST"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool,omitempty"`
}

// AnalyzerError represents an analysis error with code, message, and suggestions
type AnalyzerError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new AnalyzerError
func New(code ErrorCode, message string, cause error) *AnalyzerError {
	return &AnalyzerError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *AnalyzerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalyzerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalyzerError) WithDetails(details interface{}) *AnalyzerError {
	e.Details = details
	return e
}

// WithFix appends a suggested fix
func (e *AnalyzerError) WithFix(fix FixAction) *AnalyzerError {
	e.SuggestedFixes = append(e.SuggestedFixes, fix)
	return e
}

// CodeOf returns the code of the first AnalyzerError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var ae *AnalyzerError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an AnalyzerError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var ae *AnalyzerError
		if !stderrors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.cause
	}
	return false
}

// IsFatal reports whether the error must terminate the run.
// Everything except a missing root or an internal failure has a fallback path.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case PathNotFound, InternalError:
		return true
	default:
		return false
	}
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ServerUnavailable: {
		{
			Type:        RunCommand,
			Command:     "lspwiki analyze --no-lsp .",
			Description: "Analyze with the built-in extractors only",
		},
	},
	HandshakeFailed: {
		{
			Type:        RunCommand,
			Command:     "lspwiki analyze -vv .",
			Description: "Show language server stderr in debug logs",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		out := make([]FixAction, len(fixes))
		copy(out, fixes)
		return out
	}
	return nil
}
