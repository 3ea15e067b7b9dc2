// Package format checks candidate PINs for length, composition and complexity.
package format

import (
	"slices"
	"unicode/utf8"

	"pinguard/internal/pin/config"
	"pinguard/internal/pin/models"
	dErrors "pinguard/pkg/domain-errors"
)

const (
	ReasonLength      = "PIN must be exactly 4 digits"
	ReasonNumeric     = "PIN must contain only numbers"
	ReasonDiversity   = "PIN must contain at least 2 different digits"
	ReasonWeakPattern = "PIN is too simple. Avoid sequential or repeated numbers"
)

var defaultValidator = New(config.DefaultConfig().Format)

// Validator applies the format rules in order; the first failing rule wins.
type Validator struct {
	cfg config.FormatConfig
}

// New builds a Validator for cfg.
func New(cfg config.FormatConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate checks candidate against the default policy.
func Validate(candidate string) models.ValidationResult {
	return defaultValidator.Validate(candidate)
}

// IsValid reports whether candidate passes the default policy.
func IsValid(candidate string) bool {
	return defaultValidator.Validate(candidate).IsValid
}

// Check returns a CodeValidation error carrying the failing rule's reason, or nil.
func Check(candidate string) error {
	return defaultValidator.Check(candidate)
}

func (v *Validator) Validate(candidate string) models.ValidationResult {
	if utf8.RuneCountInString(candidate) != v.cfg.Length {
		return invalid(ReasonLength)
	}

	var seen [10]bool
	distinct := 0
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if c < '0' || c > '9' {
			return invalid(ReasonNumeric)
		}
		if !seen[c-'0'] {
			seen[c-'0'] = true
			distinct++
		}
	}

	if distinct < v.cfg.MinDistinct {
		return invalid(ReasonDiversity)
	}

	if v.isWeak(candidate) {
		return invalid(ReasonWeakPattern)
	}

	return models.ValidationResult{IsValid: true}
}

func (v *Validator) Check(candidate string) error {
	res := v.Validate(candidate)
	if res.IsValid {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, res.Reason)
}

func (v *Validator) isWeak(candidate string) bool {
	if slices.Contains(v.cfg.WeakSequences, candidate) {
		return true
	}
	if v.cfg.MaxRepeatRun <= 0 {
		return false
	}
	run := 1
	for i := 1; i < len(candidate); i++ {
		if candidate[i] == candidate[i-1] {
			run++
			if run >= v.cfg.MaxRepeatRun {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

func invalid(reason string) models.ValidationResult {
	return models.ValidationResult{IsValid: false, Reason: reason}
}
