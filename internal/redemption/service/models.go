package service

import (
	"strings"
	"time"

	dErrors "pinguard/pkg/domain-errors"
)

// Mode selects the verifier a deal is configured with.
type Mode string

const (
	ModeStatic   Mode = "static"
	ModeRotating Mode = "rotating"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStatic:
		return ModeStatic, nil
	case ModeRotating:
		return ModeRotating, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "mode must be static or rotating")
	}
}

// IssuedPIN is returned when a vendor PIN is stored. PIN holds the plaintext
// only when the service generated it; it is never persisted.
type IssuedPIN struct {
	VendorID  int64
	PIN       string
	ExpiresAt time.Time
}

type RedeemRequest struct {
	DealID     int64
	VendorID   int64 // required in static mode
	CustomerID string
	Mode       Mode
	PIN        string
}

func (r RedeemRequest) validate() error {
	if r.DealID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "deal_id must be positive")
	}
	if strings.TrimSpace(r.CustomerID) == "" {
		return dErrors.New(dErrors.CodeValidation, "customer_id is required")
	}
	switch r.Mode {
	case ModeStatic:
		if r.VendorID <= 0 {
			return dErrors.New(dErrors.CodeValidation, "vendor_id is required for static PINs")
		}
	case ModeRotating:
	default:
		return dErrors.New(dErrors.CodeValidation, "mode must be static or rotating")
	}
	return nil
}

// RedeemResult describes a decided redemption. NextAttemptAt is set only
// when the throttle refused the attempt.
type RedeemResult struct {
	Redeemed      bool
	Message       string
	NextAttemptAt *time.Time
}
