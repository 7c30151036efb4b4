package domain

import (
	"strings"
	"time"
)

type VerificationStatus string

const (
	Unverified VerificationStatus = "unverified"
	Verified   VerificationStatus = "verified"
)

type Customer struct {
	ID            int64              `json:"id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Email         string             `json:"email"`
	PasswordHash  string             `json:"-"`
	EmailVerified VerificationStatus `json:"email_verified"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *SignupRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignupRequest) Validate() error {
	if r.FirstName == "" {
		return E(CodeInvalidInput, "first name is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return E(CodeInvalidInput, "a valid email is required")
	}
	if len(r.Password) < 8 {
		return E(CodeInvalidInput, "password must be at least 8 characters")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return E(CodeInvalidInput, "email and password are required")
	}
	return nil
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyRequest) Validate() error {
	if r.Email == "" || r.OTP == "" {
		return E(CodeInvalidInput, "email and otp are required")
	}
	return nil
}
