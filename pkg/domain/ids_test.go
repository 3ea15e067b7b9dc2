package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pinguard/pkg/domain-errors"
)

func TestParseNumericIDs(t *testing.T) {
	id, err := ParseDealID("42")
	require.NoError(t, err)
	assert.Equal(t, DealID(42), id)
	assert.Equal(t, "42", id.String())

	for _, input := range []string{"", "0", "-1", "4x", " 42", "9223372036854775808"} {
		_, err := ParseVendorID(input)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "input %q", input)
	}
}

func TestParseCustomerID(t *testing.T) {
	id, err := ParseCustomerID("  cust-7 ")
	require.NoError(t, err)
	assert.Equal(t, CustomerID("cust-7"), id)

	tests := map[string]string{
		"empty":    "   ",
		"too long": strings.Repeat("a", 129),
		"control":  "cust\x00-7",
		"bad utf8": string([]byte{0xff, 0xfe}),
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCustomerID(input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
