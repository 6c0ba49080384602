// Package privacy masks personally identifiable information before it
// reaches logs.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to remove the host-identifying
// portion. IPv4 keeps the /24 (last octet zeroed); IPv6 keeps the /48
// prefix. Returns "invalid" for unparseable input and "unknown" for empty.
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

// AnonymizeClientKey prepares a rate limit client key for logging. Keys are
// usually IPs and get anonymized; non-IP keys (API keys, user ids) pass
// through, they are pseudonymous already.
func AnonymizeClientKey(key string) string {
	if net.ParseIP(key) != nil {
		return AnonymizeIP(key)
	}
	return key
}
