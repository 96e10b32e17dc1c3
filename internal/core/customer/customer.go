// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package customer talks to the tenant administration endpoints of the
// Certrix API. A customer is a tenant: one organization, one schema.
package customer

import "time"

// Status is the subscription state of a tenant.
type Status string

const (
	StatusTrial     Status = "TRIAL"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

// Operational reports whether the tenant may issue certificates.
func (s Status) Operational() bool {
	return s == StatusTrial || s == StatusActive
}

// Customer is one tenant organization.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	SchemaName   string    `json:"schemaName"`
	Status       Status    `json:"status"`
	Plan         string    `json:"plan,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateRequest is the payload for provisioning a tenant.
type CreateRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	SchemaName   string `json:"schemaName,omitempty"`
	Plan         string `json:"plan,omitempty"`
}

// UpdateRequest carries the mutable tenant fields.
type UpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	Plan         *string `json:"plan,omitempty"`
}
