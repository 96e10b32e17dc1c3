// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package template

import (
	"encoding/json"
	"sort"

	"github.com/taibuivan/certrix/internal/platform/validate"
)

// Template is a certificate layout owned by a customer. It owns zero or
// more versions; CurrentVersion points at the one new certificates use.
type Template struct {
	ID             int64             `json:"id"`
	CustomerID     int64             `json:"customerId"`
	Name           string            `json:"name"`
	Code           string            `json:"code"`
	Description    *string           `json:"description,omitempty"`
	CurrentVersion *int              `json:"currentVersion,omitempty"`
	Metadata       map[string]any    `json:"metadata,omitempty"`
	Versions       []TemplateVersion `json:"versions,omitempty"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	UpdatedAt      string            `json:"updatedAt,omitempty"`
}

// VersionStatus is the lifecycle stage of a template version.
// Transitions only move forward: DRAFT → PUBLISHED → ARCHIVED.
type VersionStatus string

const (
	StatusDraft     VersionStatus = "DRAFT"
	StatusPublished VersionStatus = "PUBLISHED"
	StatusArchived  VersionStatus = "ARCHIVED"
)

// CanTransitionTo reports whether the forward-only lifecycle permits moving
// from s to next.
func (s VersionStatus) CanTransitionTo(next VersionStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPublished
	case StatusPublished:
		return next == StatusArchived
	default:
		return false
	}
}

// TemplateVersion is one immutable-once-published revision of a template's
// content and recipient field schema.
type TemplateVersion struct {
	ID          int64         `json:"id"`
	TemplateID  int64         `json:"templateId"`
	Version     int           `json:"version"`
	HTMLContent string        `json:"htmlContent"`
	CSSStyles   *string       `json:"cssStyles,omitempty"`
	FieldSchema FieldSchema   `json:"fieldSchema,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	Status      VersionStatus `json:"status"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
}

// # Field Schema

// FieldType enumerates the recipient-data field kinds a template can declare.
type FieldType string

const (
	FieldText     FieldType = "TEXT"
	FieldEmail    FieldType = "EMAIL"
	FieldNumber   FieldType = "NUMBER"
	FieldDate     FieldType = "DATE"
	FieldBinary   FieldType = "BINARY"
	FieldTextarea FieldType = "TEXTAREA"
)

// FieldSpec describes one recipient-data field a version's content renders.
type FieldSpec struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Label    string    `json:"label,omitempty"`
}

// FieldSchema maps field name to its specification.
type FieldSchema map[string]FieldSpec

// ValidateRecipientData checks a recipient-data map against the schema:
// required fields must be present and non-empty, and typed fields must parse.
// Unknown extra fields pass through untouched — templates ignore them.
func (schema FieldSchema) ValidateRecipientData(data map[string]any) error {
	v := &validate.Validator{}

	// Deterministic error ordering for operators and tests.
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := schema[name]
		raw, present := data[name]
		text := stringValue(raw)

		if !present || text == "" {
			if spec.Required {
				v.Required(name, "")
			}
			continue
		}

		switch spec.Type {
		case FieldEmail:
			v.Email(name, text)
		case FieldNumber:
			v.Number(name, text)
		case FieldDate:
			v.Date(name, text)
		case FieldBinary:
			v.OneOf(name, text, "true", "false", "yes", "no")
		}
	}

	return v.Err()
}

// stringValue renders any JSON-decoded scalar as its string form for
// validation purposes.
func stringValue(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// # Request DTOs

// CreateRequest is the payload for creating a template.
type CreateRequest struct {
	CustomerID  int64          `json:"customerId"`
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdateRequest is the payload for updating template metadata.
type UpdateRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CreateVersionRequest is the payload for adding a version to a template.
type CreateVersionRequest struct {
	HTMLContent string         `json:"htmlContent"`
	CSSStyles   *string        `json:"cssStyles,omitempty"`
	FieldSchema FieldSchema    `json:"fieldSchema,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// UpdateVersionRequest is the payload for editing a DRAFT version's content.
type UpdateVersionRequest struct {
	HTMLContent *string        `json:"htmlContent,omitempty"`
	CSSStyles   *string        `json:"cssStyles,omitempty"`
	FieldSchema FieldSchema    `json:"fieldSchema,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}
