package models

import "time"

// PinCredential is a static PIN at rest. HashedPin is only ever checked by
// re-deriving through the adaptive hash, never by equality with plaintext.
type PinCredential struct {
	HashedPin string    `json:"-"`
	Salt      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpiredAt reports whether the credential has an expiry and it lies before now.
// A zero ExpiresAt means the credential never expires.
func (c PinCredential) IsExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// VendorCredential binds a static PIN credential to the vendor that set it.
type VendorCredential struct {
	VendorID  int64         `json:"vendor_id"`
	Cred      PinCredential `json:"credential"`
	CreatedAt time.Time     `json:"created_at"`
}

// AttemptRecord is one PIN submission. The throttle only reads AttemptedAt and
// Success; ID and Device are carried for persistence and audit.
type AttemptRecord struct {
	ID          string    `json:"id,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
	Success     bool      `json:"success"`
	Device      string    `json:"device,omitempty"`
}

// ValidationResult is the outcome of a format check.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason,omitempty"`
}

// SecurityResult is the outcome of hashing a static PIN.
type SecurityResult struct {
	Success   bool      `json:"success"`
	HashedPin string    `json:"-"`
	Salt      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message,omitempty"`
}

// Credential converts a successful hash result into its at-rest form.
func (r *SecurityResult) Credential() PinCredential {
	return PinCredential{HashedPin: r.HashedPin, Salt: r.Salt, ExpiresAt: r.ExpiresAt}
}

// VerifyResult is the outcome of checking a submitted PIN.
// Err carries a typed domain error when Valid is false.
type VerifyResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// RotatingPinResult describes the PIN for the current rotation window.
type RotatingPinResult struct {
	CurrentPin       string    `json:"current_pin"`
	NextRotationAt   time.Time `json:"next_rotation_at"`
	RotationInterval int       `json:"rotation_interval"` // minutes
	IsActive         bool      `json:"is_active"`
}

// RateLimitResult is the throttle decision for a scope's attempt history.
type RateLimitResult struct {
	Allowed       bool       `json:"allowed"`
	Message       string     `json:"message,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}
