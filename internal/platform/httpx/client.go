// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package httpx is the REST client core shared by every resource client.

It owns the mechanics that must be uniform across the console: envelope
decoding, the error taxonomy mapping (transport vs envelope vs authorization),
and composition of request-augmenting round trippers. Resource clients stay
thin — path construction and typed DTOs only.

Architecture:

  - Client: base-URL-anchored JSON caller returning [*envelope.Envelope].
  - Augmentor: an [http.RoundTripper] decorator (see transport.go) attaching
    tenant and bearer context and reacting to authorization failures.
  - Decode helpers: generic unwrapping of envelope data into typed DTOs.

Response inspection composes into this pipeline explicitly; nothing in this
package ever replaces a global transport or default client.
*/
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/certrix/internal/platform/apperr"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/envelope"
)

// Client performs envelope-wrapped JSON calls against the backend origin.
//
// # Concurrency
//
// Client is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client for the given origin. The transport should be the
// augmentor chain; nil falls back to [http.DefaultTransport] (tests only).
func New(baseURL string, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   constants.DefaultRequestTimeout,
		},
	}
}

// RequestOption mutates an outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets a header on the outgoing request. Used by the login flow,
// which must send an explicit tenant selector before any session exists.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// # Verb Helpers

// Get performs a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, opts ...RequestOption) (*envelope.Envelope, error) {
	target := path
	if len(query) > 0 {
		target = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil, opts...)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodPost, path, body, opts...)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts...)
}

// # Core Request Path

// do executes one call and normalizes every failure into the taxonomy:
//
//   - request never produced a response  → apperr.Transport
//   - response with success=false        → envelope-derived apperr
//   - non-2xx without a decodable body   → generic envelope apperr
//
// Authorization side effects (session clearing on 401) happen inside the
// augmentor transport before the response surfaces here; this method still
// constructs and returns the error so callers always see the failure.
func (c *Client) do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*envelope.Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpx: request body encode failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("httpx: request build failed: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(request)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, apperr.Transport(err)
	}
	defer func() { _ = response.Body.Close() }()

	env, decodeErr := envelope.Decode(response.Body)

	if response.StatusCode >= 400 {
		return nil, c.statusError(response.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		return nil, apperr.Envelope("Malformed response from server", response.StatusCode)
	}
	if !env.Success {
		return nil, env.AsError(response.StatusCode)
	}
	return env, nil
}

// statusError maps a non-2xx response onto the error taxonomy, preferring
// envelope-provided messages when the body was decodable.
func (c *Client) statusError(status int, env *envelope.Envelope, decodeErr error) error {
	message := ""
	var details []apperr.FieldError
	if decodeErr == nil {
		message = env.FailureMessage()
		details = env.FieldErrors()
	}

	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = "Session expired or invalid"
		}
		return apperr.Unauthorized(message)
	case http.StatusForbidden:
		if message == "" {
			message = "Insufficient permissions"
		}
		return apperr.Forbidden(message)
	case http.StatusBadRequest:
		if message == "" {
			message = "Request failed validation"
		}
		return apperr.ValidationError(message, details...)
	default:
		ae := apperr.Envelope(message, status)
		ae.Details = details
		return ae
	}
}

// # Typed Unwrapping

// DecodeData unwraps the envelope data payload into T. A successful envelope
// with a missing payload is a uniform operation failure — the caller asked
// for data that must be there.
func DecodeData[T any](env *envelope.Envelope, missingMessage string) (*T, error) {
	if !env.HasData() {
		return nil, apperr.Envelope(missingMessage, 0)
	}
	out := new(T)
	if err := env.Unmarshal(out); err != nil {
		return nil, apperr.Envelope(missingMessage, 0)
	}
	return out, nil
}

// DecodeList unwraps the envelope data payload into a slice of T, coercing a
// single object into a one-element slice. A missing payload yields an empty
// slice — list endpoints legitimately return nothing.
func DecodeList[T any](env *envelope.Envelope) ([]T, error) {
	items, err := envelope.UnmarshalList[T](env)
	if err != nil {
		return nil, apperr.Envelope("Malformed list payload from server", 0)
	}
	return items, nil
}
