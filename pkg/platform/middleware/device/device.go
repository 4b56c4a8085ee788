// Package device turns the User-Agent header into a short device description
// ("Chrome on Linux") recorded with registrations and audit events.
package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"faceguard/pkg/requestcontext"
)

// Describe returns "Browser on OS" for a User-Agent string.
// Mobile agents report the platform instead of the OS family.
func Describe(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Bot() {
		return "Bot"
	}
	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(orDefault(browser, "Unknown Browser") + " on " + platform)
		}
	}
	return strings.TrimSpace(orDefault(browser, "Unknown Browser") + " on " + orDefault(os, "Unknown OS"))
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Device stores the device description on the context. It must run after the
// metadata middleware, which extracts the User-Agent.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithDevice(ctx, Describe(requestcontext.UserAgent(ctx)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
