package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/miekg/dns"
)

var errNoAddress = errors.New("no address records")

// DNSProber resolves the host of the URL. NXDOMAIN, or a name without any
// address records, is Unreachable; resolver failures are Inconclusive.
type DNSProber struct {
	client    *dns.Client
	resolvers []string
}

// NewDNSProber queries the given resolvers in order. Without resolvers it
// falls back to /etc/resolv.conf.
func NewDNSProber(resolvers []string, timeout time.Duration) (*DNSProber, error) {
	var servers []string
	for _, r := range resolvers {
		if _, _, err := net.SplitHostPort(r); err != nil {
			r = net.JoinHostPort(r, "53")
		}
		servers = append(servers, r)
	}

	if len(servers) == 0 {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("could not load system resolvers: %w", err)
		}
		for _, s := range conf.Servers {
			servers = append(servers, net.JoinHostPort(s, conf.Port))
		}
	}
	if len(servers) == 0 {
		return nil, errors.New("no DNS resolvers configured")
	}

	return &DNSProber{
		client:    &dns.Client{Net: "udp", Timeout: timeout},
		resolvers: servers,
	}, nil
}

func (p *DNSProber) Probe(ctx context.Context, rawURL string) (Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Inconclusive, err
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return Reachable, nil
	}

	sawNoData := false
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := p.exchange(ctx, host, qtype)
		if err != nil {
			return Inconclusive, err
		}
		switch resp.Rcode {
		case dns.RcodeSuccess:
			if hasAddress(resp) {
				return Reachable, nil
			}
			sawNoData = true
		case dns.RcodeNameError:
			return Unreachable, fmt.Errorf("%s: %s", host, dns.RcodeToString[resp.Rcode])
		default:
			return Inconclusive, fmt.Errorf("%s %s: resolver answered %s", host, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
		}
	}
	if sawNoData {
		return Unreachable, fmt.Errorf("%s: %w", host, errNoAddress)
	}
	return Inconclusive, nil
}

func (p *DNSProber) exchange(ctx context.Context, host string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range p.resolvers {
		resp, _, err := p.client.ExchangeContext(ctx, m, server)
		if err == nil {
			return resp, nil
		}
		lastErr = fmt.Errorf("query %s via %s: %w", dns.TypeToString[qtype], server, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func hasAddress(m *dns.Msg) bool {
	for _, rr := range m.Answer {
		switch rr.(type) {
		case *dns.A, *dns.AAAA, *dns.CNAME:
			return true
		}
	}
	return false
}
