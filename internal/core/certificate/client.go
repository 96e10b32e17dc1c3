// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package certificate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/taibuivan/certrix/internal/platform/apperr"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/ctxutil"
	"github.com/taibuivan/certrix/internal/platform/httpx"
)

const endpoint = constants.APIBasePath + "/certificates"

// Client calls the certificate endpoints of the Certrix API.
type Client struct {
	api *httpx.Client
}

// NewClient constructs a certificate Client over the shared API caller.
func NewClient(api *httpx.Client) *Client {
	return &Client{api: api}
}

/*
Generate submits a generation request.

Parameters:
  - req: payload; TemplateVersionID and RecipientData are required here,
    CertificateNumber must already be assigned by the caller.

Returns:
  - *Certificate: the created record. Status tells the caller whether the
    server rendered inline (terminal) or queued the work (PENDING).
*/
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Certificate, error) {
	if req.TemplateVersionID == 0 {
		return nil, apperr.ValidationError("Template version is required",
			apperr.FieldError{Field: "templateVersionId", Message: "This field is required"})
	}
	if len(req.RecipientData) == 0 {
		return nil, apperr.ValidationError("Recipient data is required",
			apperr.FieldError{Field: "recipientData", Message: "This field is required"})
	}

	env, err := c.api.Post(ctx, endpoint+"/generate", req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Certificate](env, "Certificate generation returned no record")
}

// GetByID fetches one certificate record.
func (c *Client) GetByID(ctx context.Context, id int64) (*Certificate, error) {
	env, err := c.api.Get(ctx, fmt.Sprintf("%s/%d", endpoint, id), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Certificate](env, "Certificate not found in response")
}

// GetByNumber fetches a certificate by its 10-digit public number.
func (c *Client) GetByNumber(ctx context.Context, number string) (*Certificate, error) {
	env, err := c.api.Get(ctx, endpoint+"/number/"+url.PathEscape(number), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Certificate](env, "Certificate not found in response")
}

// List fetches certificate records, optionally narrowed by filter.
func (c *Client) List(ctx context.Context, filter ListFilter) ([]Certificate, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.TemplateVersionID != 0 {
		query.Set("templateVersionId", strconv.FormatInt(filter.TemplateVersionID, 10))
	}
	if filter.CertificateNumber != "" {
		query.Set("certificateNumber", filter.CertificateNumber)
	}

	env, err := c.api.Get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeList[Certificate](env)
}

// Update modifies the mutable fields of an existing record.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Certificate, error) {
	env, err := c.api.Put(ctx, fmt.Sprintf("%s/%d", endpoint, id), req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Certificate](env, "Certificate update returned no record")
}

// Delete removes a certificate record.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.api.Delete(ctx, fmt.Sprintf("%s/%d", endpoint, id))
	return err
}

// Revoke invalidates an issued certificate. Only ISSUED records can be
// revoked; anything else is rejected before touching the wire.
func (c *Client) Revoke(ctx context.Context, cert *Certificate, reason string) (*Certificate, error) {
	if cert.Status != StatusIssued {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Only issued certificates can be revoked, current status is %s", cert.Status))
	}

	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	env, err := c.api.Post(ctx, fmt.Sprintf("%s/%d/revoke", endpoint, cert.ID), body)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Certificate](env, "Certificate revocation returned no record")
}

// DownloadURL fetches a short-lived signed link to the rendered document.
func (c *Client) DownloadURL(ctx context.Context, id int64) (*DownloadURL, error) {
	env, err := c.api.Get(ctx, fmt.Sprintf("%s/%d/download-url", endpoint, id), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[DownloadURL](env, "Download link missing from response")
}

// Verify checks a signed hash against the public verification endpoint. The
// call is tenant-agnostic: anyone holding the hash may verify, so no tenant
// header is attached.
func (c *Client) Verify(ctx context.Context, signedHash string) (*VerificationResult, error) {
	ctx = ctxutil.WithPublicEndpoint(ctx)
	env, err := c.api.Get(ctx, endpoint+"/verify/"+url.PathEscape(signedHash), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[VerificationResult](env, "Verification result missing from response")
}
