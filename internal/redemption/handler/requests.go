package handler

import (
	"strings"

	"pinguard/internal/redemption/service"
	"pinguard/pkg/domain"
	dErrors "pinguard/pkg/domain-errors"
)

// SetPINRequest is the body for POST /vendors/{vendorID}/pin. An empty PIN
// asks the service to generate one.
type SetPINRequest struct {
	PIN string `json:"pin"`
}

func (r *SetPINRequest) Normalize() {
	r.PIN = strings.TrimSpace(r.PIN)
}

// Validate implements httputil.Validatable. Format rules are enforced by the
// hasher so the vendor sees the same reason a redemption would.
func (r *SetPINRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.PIN) > 16 {
		return dErrors.New(dErrors.CodeValidation, "pin is too long")
	}
	return nil
}

// RedeemRequest is the body for POST /deals/{dealID}/redeem.
type RedeemRequest struct {
	VendorID   int64  `json:"vendor_id,omitempty"`
	CustomerID string `json:"customer_id"`
	Mode       string `json:"mode"`
	PIN        string `json:"pin"`

	parsedMode service.Mode
}

func (r *RedeemRequest) Normalize() {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	r.PIN = strings.TrimSpace(r.PIN)
}

func (r *RedeemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	customerID, err := domain.ParseCustomerID(r.CustomerID)
	if err != nil {
		return err
	}
	r.CustomerID = customerID.String()
	if len(r.PIN) > 16 {
		return dErrors.New(dErrors.CodeValidation, "pin is too long")
	}
	if r.PIN == "" {
		return dErrors.New(dErrors.CodeValidation, "pin is required")
	}
	if r.Mode == "" {
		r.Mode = string(service.ModeStatic)
	}
	mode, err := service.ParseMode(r.Mode)
	if err != nil {
		return err
	}
	if mode == service.ModeStatic && r.VendorID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "vendor_id is required for static PINs")
	}
	r.parsedMode = mode
	return nil
}

func (r *RedeemRequest) toService(dealID domain.DealID) service.RedeemRequest {
	return service.RedeemRequest{
		DealID:     int64(dealID),
		VendorID:   r.VendorID,
		CustomerID: r.CustomerID,
		Mode:       r.parsedMode,
		PIN:        r.PIN,
	}
}
