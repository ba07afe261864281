package models

import "time"

type User struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never expose in JSON
	Role             string    `json:"role"` // owner, manager or admin
	HasFinanceAccess bool      `json:"has_finance_access"` // managers can record payments and cheques
	IsActive         bool      `json:"is_active"`
	TOTPSecret       string    `json:"-"`
	TOTPEnabled      bool      `json:"totp_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"` // required once TOTP is enabled
}

// AuthResponse represents the response after successful authentication.
// When the account has TOTP enabled and no code was supplied, Token is
// empty and TempToken carries the short-lived step-2 token instead.
type AuthResponse struct {
	Token        string `json:"token,omitempty"`
	User         *User  `json:"user,omitempty"`
	RequiresTOTP bool   `json:"requires_totp,omitempty"`
	TempToken    string `json:"temp_token,omitempty"`
}

// TOTPVerifyRequest completes a two-step login
type TOTPVerifyRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	HasFinanceAccess bool   `json:"has_finance_access"`
}

// TOTPSetupResponse carries the provisioning QR for an admin enabling TOTP
type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"` // base64 PNG
}
