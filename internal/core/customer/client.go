// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package customer

import (
	"context"
	"fmt"

	"github.com/taibuivan/certrix/internal/platform/apperr"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/httpx"
	"github.com/taibuivan/certrix/internal/platform/validate"
)

const endpoint = constants.APIBasePath + "/customers"

// Client calls the customer endpoints of the Certrix API. These endpoints
// are platform-admin scoped; regular tenant operators get 403 from them.
type Client struct {
	api *httpx.Client
}

// NewClient constructs a customer Client over the shared API caller.
func NewClient(api *httpx.Client) *Client {
	return &Client{api: api}
}

// Create provisions a new tenant.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Customer, error) {
	v := &validate.Validator{}
	v.Required("name", req.Name)
	v.MaxLen("name", req.Name, 255)
	v.Required("contactEmail", req.ContactEmail)
	v.Email("contactEmail", req.ContactEmail)
	if err := v.Err(); err != nil {
		return nil, err
	}

	env, err := c.api.Post(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Customer](env, "Customer creation returned no record")
}

// GetByID fetches one tenant.
func (c *Client) GetByID(ctx context.Context, id int64) (*Customer, error) {
	env, err := c.api.Get(ctx, fmt.Sprintf("%s/%d", endpoint, id), nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Customer](env, "Customer not found in response")
}

// List fetches all tenants.
func (c *Client) List(ctx context.Context) ([]Customer, error) {
	env, err := c.api.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeList[Customer](env)
}

// Update modifies the mutable fields of a tenant.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Customer, error) {
	env, err := c.api.Put(ctx, fmt.Sprintf("%s/%d", endpoint, id), req)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Customer](env, "Customer update returned no record")
}

// Suspend blocks an operational tenant from issuing certificates.
func (c *Client) Suspend(ctx context.Context, cust *Customer) (*Customer, error) {
	if !cust.Status.Operational() {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Only operational customers can be suspended, current status is %s", cust.Status))
	}
	return c.setStatus(ctx, cust.ID, StatusSuspended)
}

// Activate restores a suspended or trial tenant to ACTIVE.
func (c *Client) Activate(ctx context.Context, cust *Customer) (*Customer, error) {
	if cust.Status == StatusCancelled {
		return nil, apperr.ValidationError("Cancelled customers cannot be reactivated")
	}
	return c.setStatus(ctx, cust.ID, StatusActive)
}

func (c *Client) setStatus(ctx context.Context, id int64, status Status) (*Customer, error) {
	body := map[string]Status{"status": status}
	env, err := c.api.Patch(ctx, fmt.Sprintf("%s/%d/status", endpoint, id), body)
	if err != nil {
		return nil, err
	}
	return httpx.DecodeData[Customer](env, "Customer status change returned no record")
}
