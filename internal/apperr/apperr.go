// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the coded domain errors returned by the taxonomy,
// discussion, and ranking engines.
//
// Engines return *Error for every expected outcome (missing rows, slug
// collisions, closed topics, permission failures). Anything else that
// escapes an engine is a storage failure and should be treated as fatal
// by the caller.
//
//	if errors.Is(err, apperr.ErrTopicClosed) {
//	    // render the "topic is locked" state
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups codes into the five outcome classes the HTTP layer renders
// differently.
type Kind string

// Outcome classes.
const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindStatePrecondition Kind = "state_precondition"
	KindInternal          Kind = "internal"
)

// HTTPStatus returns the response status for a kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindStatePrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Code is a stable machine-readable error code.
type Code string

// Error codes. These values are part of the public API contract.
const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeDuplicateSlug      Code = "DUPLICATE_SLUG"
	CodeParentNotFound     Code = "PARENT_NOT_FOUND"
	CodeCyclicReference    Code = "CYCLIC_REFERENCE"
	CodeHasDependents      Code = "HAS_DEPENDENTS"
	CodeTopicNotFound      Code = "TOPIC_NOT_FOUND"
	CodeTopicClosed        Code = "TOPIC_CLOSED"
	CodePostNotFound       Code = "POST_NOT_FOUND"
	CodeParentPostNotFound Code = "PARENT_POST_NOT_FOUND"
	CodeCrossTopicParent   Code = "CROSS_TOPIC_PARENT"
	CodeForbidden          Code = "FORBIDDEN"
	CodeHasReplies         Code = "HAS_REPLIES"
	CodeInternal           Code = "INTERNAL"
)

var codeKinds = map[Code]Kind{
	CodeValidation:         KindValidation,
	CodeNotFound:           KindNotFound,
	CodeDuplicateSlug:      KindConflict,
	CodeParentNotFound:     KindNotFound,
	CodeCyclicReference:    KindConflict,
	CodeHasDependents:      KindStatePrecondition,
	CodeTopicNotFound:      KindNotFound,
	CodeTopicClosed:        KindStatePrecondition,
	CodePostNotFound:       KindNotFound,
	CodeParentPostNotFound: KindNotFound,
	CodeCrossTopicParent:   KindConflict,
	CodeForbidden:          KindForbidden,
	CodeHasReplies:         KindStatePrecondition,
	CodeInternal:           KindInternal,
}

// Kind returns the outcome class of a code.
func (c Code) Kind() Kind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return KindInternal
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Kind returns the outcome class of the error.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	return e.Kind().HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// Sentinels for use with errors.Is.
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicateSlug      = &Error{Code: CodeDuplicateSlug, Message: "slug already in use"}
	ErrParentNotFound     = &Error{Code: CodeParentNotFound, Message: "parent category not found"}
	ErrCyclicReference    = &Error{Code: CodeCyclicReference, Message: "category cannot become a descendant of itself"}
	ErrHasDependents      = &Error{Code: CodeHasDependents, Message: "category has dependent records"}
	ErrTopicNotFound      = &Error{Code: CodeTopicNotFound, Message: "topic not found"}
	ErrTopicClosed        = &Error{Code: CodeTopicClosed, Message: "topic is closed"}
	ErrPostNotFound       = &Error{Code: CodePostNotFound, Message: "post not found"}
	ErrParentPostNotFound = &Error{Code: CodeParentPostNotFound, Message: "parent post not found"}
	ErrCrossTopicParent   = &Error{Code: CodeCrossTopicParent, Message: "parent post belongs to a different topic"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrHasReplies         = &Error{Code: CodeHasReplies, Message: "post has replies"}
)

// New creates an error with a custom message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// As extracts an *Error from err. The second result is false for storage
// and other unmodeled failures.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
