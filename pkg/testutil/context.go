package testutil

import (
	"net/http"
	"time"

	"pinguard/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock, as the requesttime
// middleware would.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithDevice sets the terminal label the device middleware would derive.
func WithDevice(req *http.Request, device string) *http.Request {
	return req.WithContext(requestcontext.WithDevice(req.Context(), device))
}
