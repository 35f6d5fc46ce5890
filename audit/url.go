package audit

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrEmptyURL is returned when nothing was submitted
	ErrEmptyURL = errors.New("Please enter a URL")
	// ErrInvalidURL is returned when the input is not an absolute http or https URL
	ErrInvalidURL = errors.New("Please enter a valid URL")
)

// NormalizeURL trims the input, prefixes bare domains with https:// and
// checks that the result is an absolute http or https URL.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	if _, err := parseHTTPURL(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// parseHTTPURL parses an already normalized URL and enforces the scheme rule.
func parseHTTPURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Hostname returns the lowercased host of a normalized URL without its port.
func Hostname(rawURL string) (string, error) {
	u, err := parseHTTPURL(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Hostname()), nil
}
