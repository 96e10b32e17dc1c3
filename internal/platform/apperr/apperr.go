// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Certrix.

It provides a rich error type that bridges the gap between low-level transport
failures and the messages the console ultimately shows an operator.

Architecture:

  - AppError: A struct containing machine-readable Code and operator-friendly messages.
  - Taxonomy: Transport, Envelope, Authorization, and Validation classes (one
    constructor per class) so callers can branch on failure kind without
    string matching.
  - Mapping: Explicit association with the HTTP status that produced the error.

Every error that leaves a resource client should be wrapped as an [AppError]
to ensure consistent handling in the console and in the proxy.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeTransport    = "TRANSPORT_ERROR"
	CodeEnvelope     = "ENVELOPE_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUpstream     = "UPSTREAM_UNREACHABLE"
)

// AppError is the canonical error type for the Certrix console and proxy.
//
// It carries the HTTP status observed (0 when no response was received), a
// machine-readable code, an operator-safe message, and an optional slice of
// field-level validation errors.
//
// # Security
//
// The Cause field is for logging only and is never rendered to operators
// verbatim; it may contain connection strings or raw payloads.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "TRANSPORT_ERROR").
	Code string `json:"code"`
	// Message is a human-readable description safe to show the operator.
	Message string `json:"error"`
	// HTTPStatus is the response status that produced the error, or 0 when
	// the transport itself failed before any response was received.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the operator-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client-Side Failure Classes

// Transport creates an [AppError] for a request that never produced a
// response (DNS failure, refused connection, timeout). It triggers no
// session mutation anywhere in the pipeline.
func Transport(cause error) *AppError {
	return &AppError{
		Code:       CodeTransport,
		Message:    "Could not reach the certificate service",
		HTTPStatus: 0,
		Cause:      cause,
	}
}

// Envelope creates an [AppError] for a response whose envelope reported
// success=false, or that was structurally unusable (missing required data).
// The message is surfaced verbatim to the operator.
func Envelope(message string, httpStatus int) *AppError {
	if message == "" {
		message = "Operation failed"
	}
	return &AppError{
		Code:       CodeEnvelope,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Unauthorized creates a 401 [AppError]. The request augmentor pairs this
// class with its mandatory clear-session side effect.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Certificate") // Returns "Certificate not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// # Server Errors (proxy side)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// UpstreamUnreachable creates the 502 [AppError] the proxy returns when the
// origin cannot be dialed or fails before any bytes were relayed.
func UpstreamUnreachable(cause error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    "Upstream API unreachable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf returns the HTTP status recorded on err, or 0 when err is not an
// [*AppError] or no response was received.
func StatusOf(err error) int {
	if ae := As(err); ae != nil {
		return ae.HTTPStatus
	}
	return 0
}
