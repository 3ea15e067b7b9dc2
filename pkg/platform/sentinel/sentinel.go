package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and the redemption service translates them into domain errors.
//
//   - ErrNotFound: no credential or record exists for the key
//   - ErrConflict: a write raced with another writer
//   - ErrExpired: a stored credential is past its expiry
//   - ErrUnavailable: a backing store is temporarily unreachable
//
// Validation failures (bad PIN format, missing fields) use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
