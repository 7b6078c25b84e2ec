package netutil

import "net"

// MustParseCIDRs parses the configured allowlist into []*net.IPNet.
// Invalid entries are dropped rather than failing startup.
func MustParseCIDRs(cidrs []string) (out []*net.IPNet) {
	for _, s := range cidrs {
		if _, n, err := net.ParseCIDR(s); err == nil && n != nil {
			out = append(out, n)
		}
	}
	return
}
