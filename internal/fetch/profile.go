package fetch

import (
	"net/url"
	"strings"
)

// ProfileHost is the registrable domain of profile pages.
const ProfileHost = "linkedin.com"

// IsProfileURL reports whether rawURL is a profile page, i.e. matches
// *://*.linkedin.com/in/*.
func IsProfileURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != ProfileHost && !strings.HasSuffix(host, "."+ProfileHost) {
		return false
	}
	return strings.HasPrefix(u.Path, "/in/")
}

// CanonicalProfileURL drops the query and fragment and lowercases the host.
func CanonicalProfileURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
