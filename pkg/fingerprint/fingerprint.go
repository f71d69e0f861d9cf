package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"sort"
	"strings"
)

// Generate derives a stable, non-reversible device hash from the request.
// It combines the User-Agent, Accept headers, client IP, and the set of
// stable headers present into a 32-character hex string, so anonymous
// callers can be individually rate limited without storing anything
// identifying in the clear.
func Generate(r *http.Request) string {
	components := []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		r.Header.Get("Accept"),
		ClientIP(r),
		headerSignal(r),
	}

	var filtered []string
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(filtered, "|")))
	return hex.EncodeToString(hash[:16])
}

// Match reports whether the request produces the given fingerprint.
func Match(r *http.Request, fp string) bool {
	return Generate(r) == fp
}

// ClientIP resolves the originating client IP, preferring proxy headers over
// the raw connection address:
// CF-Connecting-IP, then X-Forwarded-For (first valid entry), then
// X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	return ip.String()
}

// headerSignal fingerprints which of a fixed set of stable headers the client
// sends. Different browsers and HTTP clients differ here, which adds
// distinguishing bits beyond the User-Agent alone.
func headerSignal(r *http.Request) string {
	var names []string
	for name := range r.Header {
		switch strings.ToLower(name) {
		case "user-agent", "accept", "accept-language", "accept-encoding",
			"connection", "upgrade-insecure-requests", "sec-fetch-dest",
			"sec-fetch-mode", "sec-fetch-site", "cache-control":
			names = append(names, strings.ToLower(name))
		}
	}

	sort.Strings(names)
	return strings.Join(names, ",")
}
