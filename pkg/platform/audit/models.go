package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers proof-of-visit records that settle a deal.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers failed and throttled PIN submissions. These
	// feed SIEM alerting on brute-force attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine vendor activity such as PIN issuance.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the redemption flow. Keep it transport-agnostic so
// stores and sinks can fan out. PINs and hashes never appear here.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject is the attempt scope key ("deal:<id>:customer:<id>") or
	// "vendor:<id>" for issuance events.
	Subject    string `json:"subject"`
	VendorID   int64  `json:"vendor_id,omitempty"`
	DealID     int64  `json:"deal_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Decision   string `json:"decision,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Device     string `json:"device,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventPINIssued              AuditEvent = "pin_issued"
	EventPINRedeemed            AuditEvent = "pin_redeemed"
	EventPINRedemptionFailed    AuditEvent = "pin_redemption_failed"
	EventPINRedemptionThrottled AuditEvent = "pin_redemption_throttled"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPINIssued:              CategoryOperations,
	EventPINRedeemed:            CategoryCompliance,
	EventPINRedemptionFailed:    CategorySecurity,
	EventPINRedemptionThrottled: CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back by subject.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
