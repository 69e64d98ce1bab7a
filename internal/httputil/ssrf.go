package httputil

import (
	"fmt"
	"net"
)

// ValidateIP rejects IP ranges a redirect target must never land in:
// private (RFC 1918), loopback, link-local (which covers cloud
// metadata endpoints like 169.254.169.254), multicast, and the
// unspecified address. host is carried into the error for context,
// since the blocked IP usually came out of a DNS lookup the user
// never saw.
func ValidateIP(ip net.IP, host string) error {
	var class string
	switch {
	case ip.IsPrivate():
		class = "private"
	case ip.IsLoopback():
		class = "loopback"
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		class = "link-local"
	case ip.IsMulticast():
		class = "multicast"
	case ip.IsUnspecified():
		class = "unspecified"
	default:
		return nil
	}
	return fmt.Errorf("httputil: refusing redirect to %s address %s (%s)", class, ip, host)
}
