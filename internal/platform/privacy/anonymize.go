// Package privacy holds helpers that keep personal data out of logs and
// read-only views.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP truncates an IP address to its network prefix.
// IPv4 keeps the /24 (last octet zeroed); IPv6 keeps the /48.
// Returns "invalid" for unparseable input and "unknown" for empty input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// ConsentLogUserID renders a user id for the public consent log view.
// The identifier is namespaced, never truncated, so auditors can still
// correlate records with the ledger.
func ConsentLogUserID(userID string) string {
	if strings.HasPrefix(userID, "user_") {
		return userID
	}
	return "user_" + userID
}
