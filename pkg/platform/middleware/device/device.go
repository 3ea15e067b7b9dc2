// Package device labels the terminal submitting a request so attempt records
// and audit events can say where a PIN was entered.
package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"pinguard/pkg/requestcontext"
)

const UnknownDevice = "Unknown Device"

// ParseUserAgent returns a short "<browser> on <os>" label for ua.
func ParseUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return UnknownDevice
	}

	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := parsed.OS()
	if os == "" {
		os = parsed.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser) + " on " + strings.TrimSpace(os)
}

// Middleware stores the device label derived from the User-Agent header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDevice(r.Context(), ParseUserAgent(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
