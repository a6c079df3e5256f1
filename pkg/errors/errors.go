// Package errors provides the unified error type and factory functions for
// OpinionGraph.  Every layer (domain, application, infrastructure, interfaces)
// reports failures as *AppError so that the CLI, HTTP API and worker can render
// them consistently and monitoring can label them by code.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack formats the call stack starting skip frames above its caller.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the structured error carried through every layer.  It supports
// errors.Is / errors.As / errors.Unwrap through its Cause.
//
// Usage:
//
//	return errors.New(errors.ErrCodeEmptyCorpus, "corpus contains no sentences")
//	return errors.Wrap(err, errors.ErrCodeGraphStore, "failed to persist graph")
//	return errors.TaggingError(3, 7)
type AppError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries locating context such as sentence and token indexes.
	Detail string

	// Cause is the lower-level error that triggered this one, if any.
	Cause error

	// Stack is the call stack captured at construction.  It is not part of
	// Error() output.
	Stack string
}

// Error renders "[<code>] <message>: <detail>", omitting an empty detail.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e with Detail replaced.  Nil-safe.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of e with Cause replaced.  Nil-safe.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// New constructs an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError around err.  A nil err yields nil.  When code is
// CodeUnknown and err already carries an AppError, the original code is kept.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain factories
// ─────────────────────────────────────────────────────────────────────────────

// TaggingError reports a token that arrived without a part-of-speech tag.
func TaggingError(sentence, token int) *AppError {
	return &AppError{
		Code:    ErrCodeTagging,
		Message: DefaultMessageForCode(ErrCodeTagging),
		Detail:  fmt.Sprintf("sentence=%d token=%d", sentence, token),
		Stack:   captureStack(1),
	}
}

// EmptyCorpus reports an extraction request with zero sentences.
func EmptyCorpus() *AppError {
	return &AppError{
		Code:    ErrCodeEmptyCorpus,
		Message: DefaultMessageForCode(ErrCodeEmptyCorpus),
		Stack:   captureStack(1),
	}
}

// InvariantViolation reports internal state that construction should have
// made impossible.
func InvariantViolation(detail string) *AppError {
	return &AppError{
		Code:    ErrCodeInvariantViolation,
		Message: DefaultMessageForCode(ErrCodeInvariantViolation),
		Detail:  detail,
		Stack:   captureStack(1),
	}
}

// CandidateLimit reports a path search that matched more than limit paths.
func CandidateLimit(limit int) *AppError {
	return &AppError{
		Code:    ErrCodeCandidateLimit,
		Message: DefaultMessageForCode(ErrCodeCandidateLimit),
		Detail:  fmt.Sprintf("limit=%d", limit),
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidConfig constructs an ErrCodeInvalidConfig AppError.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// GetCode returns the code of the first AppError in err's chain, CodeOK for a
// nil err and CodeUnknown when no AppError is present.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

//Personal.AI order the ending
