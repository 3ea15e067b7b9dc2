// Package domain holds the identifiers that cross the HTTP trust boundary.
// Parse functions are the only way to build them from client input.
package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "pinguard/pkg/domain-errors"
)

const maxCustomerIDLen = 128

type (
	DealID     int64
	VendorID   int64
	CustomerID string
)

func (id DealID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id VendorID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id CustomerID) String() string { return string(id) }

// ParseDealID parses a positive decimal deal id.
func ParseDealID(s string) (DealID, error) {
	n, err := parsePositive(s, "deal id")
	return DealID(n), err
}

// ParseVendorID parses a positive decimal vendor id.
func ParseVendorID(s string) (VendorID, error) {
	n, err := parsePositive(s, "vendor id")
	return VendorID(n), err
}

// ParseCustomerID trims s and rejects empty, oversized, non-UTF-8 or
// control-character input.
func ParseCustomerID(s string) (CustomerID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", dErrors.New(dErrors.CodeValidation, "customer id is required")
	case len(s) > maxCustomerIDLen:
		return "", dErrors.New(dErrors.CodeValidation, "customer id is too long")
	case !utf8.ValidString(s):
		return "", dErrors.New(dErrors.CodeValidation, "customer id must be valid UTF-8")
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", dErrors.New(dErrors.CodeValidation, "customer id contains control characters")
	}
	return CustomerID(s), nil
}

func parsePositive(s, name string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be a positive integer")
	}
	return n, nil
}
