// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package template is the typed client for the template and template-version
resources.

It is a thin envelope-unwrapping layer over [httpx.Client] — path
construction, typed DTOs, and the advisory client-side lifecycle policy
(published content is immutable; statuses only move forward). The backend
enforces nothing weaker, but rejecting locally gives the operator an
immediate, field-level answer.
*/
package template

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/taibuivan/certrix/internal/platform/apperr"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/httpx"
	"github.com/taibuivan/certrix/internal/platform/validate"
	"github.com/taibuivan/certrix/pkg/slug"
)

const endpoint = constants.APIBasePath + "/templates"

// Client exposes template CRUD and version lifecycle operations.
type Client struct {
	api *httpx.Client
}

// NewClient wraps the shared envelope client.
func NewClient(api *httpx.Client) *Client {
	return &Client{api: api}
}

// # Template CRUD

// Create registers a new template. An empty code is derived from the name.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Template, error) {
	if req.Code == "" {
		req.Code = slug.From(req.Name)
	}

	v := &validate.Validator{}
	v.Required("name", req.Name).
		MaxLen("name", req.Name, 200).
		Code("code", req.Code).
		Custom("customerId", req.CustomerID <= 0, "Must reference an existing customer")
	if err := v.Err(); err != nil {
		return nil, err
	}

	env, err := c.api.Post(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Template](env, "Failed to create template")
}

// GetByID fetches a single template, including its versions when the
// backend expands them.
func (c *Client) GetByID(ctx context.Context, id int64) (*Template, error) {
	env, err := c.api.Get(ctx, fmt.Sprintf("%s/%d", endpoint, id), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Template](env, "Template not found")
}

// List fetches all templates visible to the current tenant.
// Always returns a slice, even when the backend answers with one object.
func (c *Client) List(ctx context.Context) ([]Template, error) {
	env, err := c.api.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeList[Template](env)
}

// Update changes template metadata (never version content).
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Template, error) {
	env, err := c.api.Put(ctx, fmt.Sprintf("%s/%d", endpoint, id), req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Template](env, "Failed to update template")
}

// Delete removes a template and all of its versions.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.api.Delete(ctx, fmt.Sprintf("%s/%d", endpoint, id))
	return err
}

// # Version Lifecycle

// CreateVersion adds a new DRAFT version under a template.
func (c *Client) CreateVersion(ctx context.Context, templateID int64, req CreateVersionRequest) (*TemplateVersion, error) {
	if strings.TrimSpace(req.HTMLContent) == "" {
		return nil, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: "htmlContent", Message: "This field is required"})
	}

	env, err := c.api.Post(ctx, fmt.Sprintf("%s/%d/versions", endpoint, templateID), req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[TemplateVersion](env, "Failed to create template version")
}

// ListVersions fetches every version of a template.
func (c *Client) ListVersions(ctx context.Context, templateID int64) ([]TemplateVersion, error) {
	env, err := c.api.Get(ctx, fmt.Sprintf("%s/%d/versions", endpoint, templateID), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeList[TemplateVersion](env)
}

// UpdateVersion edits a version's content. Published content is immutable by
// policy: edits against anything but a DRAFT are rejected locally before any
// request is made.
func (c *Client) UpdateVersion(ctx context.Context, current *TemplateVersion, req UpdateVersionRequest) (*TemplateVersion, error) {
	if current.Status != StatusDraft {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Version %d is %s; published content is immutable", current.Version, current.Status))
	}

	env, err := c.api.Put(ctx, fmt.Sprintf("%s/%d/versions/%d", endpoint, current.TemplateID, current.ID), req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[TemplateVersion](env, "Failed to update template version")
}

// PublishVersion moves a DRAFT version to PUBLISHED.
func (c *Client) PublishVersion(ctx context.Context, current *TemplateVersion) (*TemplateVersion, error) {
	return c.transition(ctx, current, StatusPublished)
}

// ArchiveVersion moves a PUBLISHED version to ARCHIVED.
func (c *Client) ArchiveVersion(ctx context.Context, current *TemplateVersion) (*TemplateVersion, error) {
	return c.transition(ctx, current, StatusArchived)
}

// transition enforces the forward-only lifecycle locally, then PATCHes the
// status.
func (c *Client) transition(ctx context.Context, current *TemplateVersion, next VersionStatus) (*TemplateVersion, error) {
	if !current.Status.CanTransitionTo(next) {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Cannot move version %d from %s to %s", current.Version, current.Status, next))
	}

	body := map[string]VersionStatus{"status": next}
	env, err := c.api.Patch(ctx, fmt.Sprintf("%s/%d/versions/%d/status", endpoint, current.TemplateID, current.ID), body)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[TemplateVersion](env, "Failed to change version status")
}

// LatestVersion returns the highest-numbered version of a template, or nil
// when it has none. Prefers the slice on the template; falls back to a
// versions fetch.
func (c *Client) LatestVersion(ctx context.Context, tpl *Template) (*TemplateVersion, error) {
	versions := tpl.Versions
	if len(versions) == 0 {
		fetched, err := c.ListVersions(ctx, tpl.ID)
		if err != nil {
			return nil, err
		}
		versions = fetched
	}
	if len(versions) == 0 {
		return nil, nil
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	latest := versions[0]
	return &latest, nil
}
