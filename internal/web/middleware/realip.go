package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only when the connection comes from one of trustedCIDRs. Per-IP rate
// limits key on RemoteAddr, so spoofed headers from other clients are ignored.
//
// Entries may be CIDRs ("10.0.0.0/8") or single addresses ("127.0.0.1").
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if remote, ok := parseAddr(r.RemoteAddr); ok && isTrusted(remote, trusted) {
				if ip, ok := forwardedFor(r); ok {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parsePrefixes(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if p, err := netip.ParsePrefix(cidr); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(cidr)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// forwardedFor returns the client address from X-Real-IP, falling back to
// the first entry of X-Forwarded-For. Values that are not IPs are ignored.
func forwardedFor(r *http.Request) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr, err == nil
	}
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return netip.Addr{}, false
	}
	first, _, _ := strings.Cut(xff, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	return addr, err == nil
}

// parseAddr accepts "host:port" or a bare address.
func parseAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
