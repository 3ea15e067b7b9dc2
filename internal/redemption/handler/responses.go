package handler

import (
	"time"

	"pinguard/internal/redemption/service"
)

type IssuedPINResponse struct {
	VendorID  int64     `json:"vendor_id"`
	PIN       string    `json:"pin,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func fromIssued(p *service.IssuedPIN) IssuedPINResponse {
	return IssuedPINResponse{VendorID: p.VendorID, PIN: p.PIN, ExpiresAt: p.ExpiresAt}
}

type RedeemResponse struct {
	Redeemed bool   `json:"redeemed"`
	Message  string `json:"message"`
}

// ThrottledResponse extends the error body with the earliest retry time.
type ThrottledResponse struct {
	Error            string     `json:"error"`
	ErrorDescription string     `json:"error_description"`
	NextAttemptAt    *time.Time `json:"next_attempt_at,omitempty"`
}
