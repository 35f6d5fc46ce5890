package audit

import "strings"

// DefaultPopularDomains is the built-in allow-list of popular sites.
var DefaultPopularDomains = []string{"google.com", "facebook.com", "youtube.com", "amazon.com"}

// Classifier decides whether a host belongs to the popular-site allow-list.
// It only biases the sampled ranges; it is not a real popularity signal.
type Classifier struct {
	domains map[string]struct{}
}

func NewClassifier(domains []string) *Classifier {
	c := &Classifier{domains: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			c.domains[d] = struct{}{}
		}
	}
	return c
}

// IsPopular matches the host exactly, and again with a leading "www." removed.
func (c *Classifier) IsPopular(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if _, ok := c.domains[host]; ok {
		return true
	}
	_, ok := c.domains[strings.TrimPrefix(host, "www.")]
	return ok
}

// Domains returns the allow-list in no particular order
func (c *Classifier) Domains() []string {
	out := make([]string, 0, len(c.domains))
	for d := range c.domains {
		out = append(out, d)
	}
	return out
}
