package imageprocessing

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rmitchellscott/palettedither/internal/config"
)

// URLPolicy restricts which image URLs may be downloaded
type URLPolicy struct {
	BlockPrivateIPs bool
	BlockedDomains  []string
}

// URLPolicyFromEnv reads BLOCK_PRIVATE_IPS and BLOCKED_DOMAINS
func URLPolicyFromEnv() URLPolicy {
	var blocked []string
	for _, domain := range strings.Split(config.Get("BLOCKED_DOMAINS", ""), ",") {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			blocked = append(blocked, domain)
		}
	}
	return URLPolicy{
		BlockPrivateIPs: config.GetBool("BLOCK_PRIVATE_IPS", false),
		BlockedDomains:  blocked,
	}
}

// IsURL reports whether source looks like an http(s) URL rather than a path
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Validate checks rawURL against the policy
func (p URLPolicy) Validate(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL missing hostname")
	}

	lower := strings.ToLower(hostname)
	for _, blocked := range p.BlockedDomains {
		if lower == blocked || strings.HasSuffix(lower, "."+blocked) {
			return fmt.Errorf("domain %s is blocked", hostname)
		}
	}

	if p.BlockPrivateIPs {
		ips, err := net.LookupIP(hostname)
		if err != nil {
			// unresolvable hosts fail on download anyway
			return nil
		}
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return fmt.Errorf("private IP address %s is blocked for hostname %s", ip, hostname)
			}
		}
	}

	return nil
}

// isPrivateIP covers loopback, RFC 1918 / RFC 4193 private, link-local and
// unspecified addresses
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
