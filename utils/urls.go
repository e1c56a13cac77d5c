package utils

import (
	"net/url"
	"strings"
)

// NormalizeDomain extracts the lower-cased hostname of rawURL without a leading "www.".
// It reports false when rawURL does not parse or has no host.
func NormalizeDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	return strings.TrimPrefix(host, "www."), true
}

// Origin returns scheme://host[:port] of rawURL, or "" when it cannot be parsed
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Absolutize resolves an image reference found on a page served from origin.
// Empty values and data: URIs cannot be resolved and yield "".
func Absolutize(origin, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(strings.ToLower(value), "data:") {
		return ""
	}

	switch {
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return value
	case strings.HasPrefix(value, "//"):
		return "https:" + value
	case strings.HasPrefix(value, "/"):
		return origin + value
	default:
		return origin + "/" + value
	}
}

// IsHTTP reports whether value is an absolute http(s) URL
func IsHTTP(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// StripQuery drops the query string and fragment of rawURL
func StripQuery(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
