// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// Role is the closed set of operator roles recognized by the platform.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEditor    Role = "EDITOR"
	RoleViewer    Role = "VIEWER"
	RoleAPIClient Role = "API_CLIENT"
)

// User is the operator identity returned by a successful login.
// Immutable once constructed from the login response.
type User struct {
	ID         string `json:"id"`
	CustomerID int64  `json:"customerId"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Role       Role   `json:"role"`
	Active     bool   `json:"active"`
}

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the backend's login payload.
type LoginResponse struct {
	Token         string `json:"token"`
	TokenType     string `json:"tokenType"`
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	CustomerID    int64  `json:"customerId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          Role   `json:"role"`
	TenantSchema  string `json:"tenantSchema"`
	Authenticated bool   `json:"authenticated"`
}

// userFromLogin builds the immutable User entity from a login response.
func userFromLogin(resp *LoginResponse) *User {
	return &User{
		ID:         resp.UserID,
		CustomerID: resp.CustomerID,
		Email:      resp.Email,
		FirstName:  resp.FirstName,
		LastName:   resp.LastName,
		Role:       resp.Role,
		Active:     true,
	}
}
