package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventPINRedeemed.Category())
	assert.Equal(t, CategorySecurity, EventPINRedemptionFailed.Category())
	assert.Equal(t, CategorySecurity, EventPINRedemptionThrottled.Category())
	assert.Equal(t, CategoryOperations, EventPINIssued.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
