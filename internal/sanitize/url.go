package sanitize

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// MaxURLLength is the longest serialized link accepted.
const MaxURLLength = 2048

var private172 = netip.MustParsePrefix("172.16.0.0/12")

// URL validates a learner-supplied link and returns its canonical form.
// Only absolute http(s) URLs pointing at public hosts are accepted.
func URL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", domain.NewValidationError("linkUrl", "must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", domain.NewValidationError("linkUrl", "scheme must be http or https")
	}
	if BlockedHost(u.Hostname()) {
		return "", domain.NewValidationError("linkUrl", "host is not allowed")
	}

	s := u.String()
	if len(s) > MaxURLLength {
		return "", domain.NewValidationError("linkUrl", "too long")
	}
	return s, nil
}

// BlockedHost reports whether a hostname points at loopback, private,
// link-local or cloud metadata addresses. It is also used to vet redirect
// targets when fetching links.
func BlockedHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return true
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if host == "169.254.169.254" ||
		strings.HasPrefix(host, "127.") ||
		strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") {
		return true
	}

	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() ||
		private172.Contains(addr)
}
