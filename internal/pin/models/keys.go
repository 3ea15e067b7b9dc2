package models

import (
	"strconv"
	"strings"
)

// AttemptScopeKey identifies the attempt history a redemption is throttled against.
type AttemptScopeKey struct {
	DealID     int64
	CustomerID string
}

// NewAttemptScopeKey builds a scope key for a customer redeeming a deal.
func NewAttemptScopeKey(dealID int64, customerID string) AttemptScopeKey {
	return AttemptScopeKey{DealID: dealID, CustomerID: customerID}
}

// String renders the key as "deal:<id>:customer:<id>".
func (k AttemptScopeKey) String() string {
	return "deal:" + strconv.FormatInt(k.DealID, 10) + ":customer:" + SanitizeKeySegment(k.CustomerID)
}

// SanitizeKeySegment escapes the ':' delimiter so a user-controlled segment
// cannot spill into an adjacent scope.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
