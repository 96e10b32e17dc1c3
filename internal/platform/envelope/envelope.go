// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package envelope models the uniform response wrapper used by every backend
endpoint.

Every API call returns the same JSON shape:

	{"success": bool, "message": string, "data": ..., "error": {...}}

Invariant: when success is false, data must be ignored regardless of presence.

The package also owns error-message extraction. Instead of duck-typed
sniffing across nested error shapes, a fixed ordered list of typed extractors
is tried in sequence; the first extractor that yields a non-empty string wins.
*/
package envelope

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/taibuivan/certrix/internal/platform/apperr"
)

// Envelope is the uniform wire wrapper returned by the backend.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody is the nested error block of a failed envelope.
type ErrorBody struct {
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorType    string          `json:"errorType,omitempty"`
	ErrorDetails []string        `json:"errorDetails,omitempty"`
	ErrorData    json.RawMessage `json:"errorData,omitempty"`
}

// Decode reads and parses an envelope from r.
func Decode(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("envelope: malformed response body: %w", err)
	}
	return &env, nil
}

// HasData reports whether the envelope carries a usable data payload.
// A success=false envelope never has usable data, even when bytes are present.
func (e *Envelope) HasData() bool {
	return e.Success && len(e.Data) > 0 && string(e.Data) != "null"
}

// Unmarshal decodes the data payload into dst.
// It must only be called after checking [Envelope.HasData].
func (e *Envelope) Unmarshal(dst any) error {
	if !e.HasData() {
		return fmt.Errorf("envelope: no data payload to decode")
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("envelope: data payload decode failed: %w", err)
	}
	return nil
}

// UnmarshalList decodes the data payload into a slice of T, defensively
// coercing a single non-array object into a one-element slice. List
// operations in the console always see a slice.
func UnmarshalList[T any](e *Envelope) ([]T, error) {
	if !e.HasData() {
		return []T{}, nil
	}

	trimmed := strings.TrimSpace(string(e.Data))
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(e.Data, &items); err != nil {
			return nil, fmt.Errorf("envelope: list payload decode failed: %w", err)
		}
		return items, nil
	}

	// Single object where a list was expected: coerce.
	var item T
	if err := json.Unmarshal(e.Data, &item); err != nil {
		return nil, fmt.Errorf("envelope: list payload decode failed: %w", err)
	}
	return []T{item}, nil
}

// # Error Message Extraction

// extractor attempts to pull an operator-facing message out of a failed
// envelope. It returns ok=false when this shape has nothing to offer.
type extractor func(e *Envelope) (msg string, ok bool)

// extractors is the fixed priority order: top-level message first, then the
// nested error block's fields. The first hit wins.
var extractors = []extractor{
	func(e *Envelope) (string, bool) {
		return e.Message, e.Message != ""
	},
	func(e *Envelope) (string, bool) {
		if e.Error == nil {
			return "", false
		}
		return e.Error.ErrorType, e.Error.ErrorType != ""
	},
	func(e *Envelope) (string, bool) {
		if e.Error == nil || len(e.Error.ErrorDetails) == 0 {
			return "", false
		}
		return e.Error.ErrorDetails[0], e.Error.ErrorDetails[0] != ""
	},
	func(e *Envelope) (string, bool) {
		if e.Error == nil {
			return "", false
		}
		return e.Error.ErrorCode, e.Error.ErrorCode != ""
	},
}

// FailureMessage resolves the operator-facing message of a failed envelope.
// Falls back to a generic message when every extractor comes up empty.
func (e *Envelope) FailureMessage() string {
	for _, extract := range extractors {
		if msg, ok := extract(e); ok {
			return msg
		}
	}
	return "Operation failed"
}

// # Field Error Extraction

// fieldErrorData mirrors the structured validation payload some endpoints
// return inside data: {"fieldErrors": {"name": "required"}}.
type fieldErrorData struct {
	FieldErrors map[string]string `json:"fieldErrors"`
}

// FieldErrors extracts per-field validation failures from a failed envelope.
//
// Structured data.fieldErrors is preferred. When absent, each errorDetails
// string is split on the first colon into field/message as a best-effort
// fallback; strings without a colon become message-only entries. Never
// panics on malformed input.
func (e *Envelope) FieldErrors() []apperr.FieldError {
	// Preferred: structured map inside the data payload.
	if len(e.Data) > 0 {
		var structured fieldErrorData
		if err := json.Unmarshal(e.Data, &structured); err == nil && len(structured.FieldErrors) > 0 {
			out := make([]apperr.FieldError, 0, len(structured.FieldErrors))
			for field, msg := range structured.FieldErrors {
				out = append(out, apperr.FieldError{Field: field, Message: msg})
			}
			return out
		}
	}

	// Fallback: heuristic parse of flat detail strings.
	if e.Error == nil {
		return nil
	}
	var out []apperr.FieldError
	for _, detail := range e.Error.ErrorDetails {
		field, msg, found := strings.Cut(detail, ":")
		if !found || strings.TrimSpace(field) == "" {
			out = append(out, apperr.FieldError{Message: strings.TrimSpace(detail)})
			continue
		}
		out = append(out, apperr.FieldError{
			Field:   strings.TrimSpace(field),
			Message: strings.TrimSpace(msg),
		})
	}
	return out
}

// AsError converts a failed envelope into an [*apperr.AppError] carrying the
// resolved message, the HTTP status, and any extractable field errors.
func (e *Envelope) AsError(httpStatus int) *apperr.AppError {
	ae := apperr.Envelope(e.FailureMessage(), httpStatus)
	ae.Details = e.FieldErrors()
	return ae
}
