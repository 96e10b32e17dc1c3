// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package certificate talks to the certificate endpoints of the Certrix API
and drives the generation workflow: submit a request, then poll the issued
record until it reaches a terminal status.
*/
package certificate

import "time"

// # Domain Types

// Status is the lifecycle state of a certificate on the server.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusIssued     Status = "ISSUED"
	StatusFailed     Status = "FAILED"
	StatusRevoked    Status = "REVOKED"
)

// Terminal reports whether the status ends a generation workflow. REVOKED is
// terminal too, though generation never produces it.
func (s Status) Terminal() bool {
	switch s {
	case StatusIssued, StatusFailed, StatusRevoked:
		return true
	}
	return false
}

// Certificate is an issued (or issuing) certificate record.
type Certificate struct {
	ID                int64          `json:"id"`
	CertificateNumber string         `json:"certificateNumber"`
	TemplateVersionID int64          `json:"templateVersionId"`
	RecipientData     map[string]any `json:"recipientData,omitempty"`
	Status            Status         `json:"status"`
	StoragePath       string         `json:"storagePath,omitempty"`
	SignedHash        string         `json:"signedHash,omitempty"`
	IssuedAt          *time.Time     `json:"issuedAt,omitempty"`
	ExpiresAt         *time.Time     `json:"expiresAt,omitempty"`
	IssuedBy          string         `json:"issuedBy,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// DownloadURL is a short-lived signed link to the rendered document.
type DownloadURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// VerificationResult is the public answer for a signed-hash lookup.
type VerificationResult struct {
	Valid             bool       `json:"valid"`
	CertificateNumber string     `json:"certificateNumber,omitempty"`
	IssuedAt          *time.Time `json:"issuedAt,omitempty"`
	RevokedAt         *time.Time `json:"revokedAt,omitempty"`
	Message           string     `json:"message,omitempty"`
}

// # Request DTOs

// GenerateRequest is the payload for certificate generation.
//
// CertificateNumber may be left empty; the workflow assigns one before
// submitting. Synchronous asks the server to render inline and answer with a
// terminal record, sparing the poll loop.
type GenerateRequest struct {
	TemplateVersionID int64          `json:"templateVersionId"`
	CertificateNumber string         `json:"certificateNumber,omitempty"`
	RecipientData     map[string]any `json:"recipientData"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	IssuedAt          *time.Time     `json:"issuedAt,omitempty"`
	ExpiresAt         *time.Time     `json:"expiresAt,omitempty"`
	IssuedBy          string         `json:"issuedBy,omitempty"`
	Synchronous       bool           `json:"synchronous,omitempty"`
}

// UpdateRequest carries the mutable fields of a certificate record.
type UpdateRequest struct {
	RecipientData map[string]any `json:"recipientData,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
}

// ListFilter narrows a certificate listing. Zero values mean "no filter".
type ListFilter struct {
	Status            Status
	TemplateVersionID int64
	CertificateNumber string
}
