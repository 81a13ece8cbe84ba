package scanjob

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ScopeConfig defines allowed scanning boundaries.
// An empty ScopeConfig (no rules) allows any target. Once any rule is set,
// hostnames must match AllowedDomains and IPs must fall in AllowedCIDRs.
type ScopeConfig struct {
	// AllowedDomains is a list of domain patterns the target must match.
	// Wildcard prefix ("*.example.com") matches any single-label subdomain.
	// Exact entry ("example.com") matches only that literal value.
	AllowedDomains []string `mapstructure:"allowed_domains" yaml:"allowed_domains"`

	// AllowedCIDRs is a list of CIDR ranges an IP must fall within.
	AllowedCIDRs []string `mapstructure:"allowed_cidrs" yaml:"allowed_cidrs"`
}

// Empty reports whether no scope rules are configured.
func (s ScopeConfig) Empty() bool {
	return len(s.AllowedDomains) == 0 && len(s.AllowedCIDRs) == 0
}

// Validate checks that every CIDR parses and no domain pattern is blank.
func (s ScopeConfig) Validate() error {
	var errs []error
	for _, d := range s.AllowedDomains {
		if strings.TrimSpace(d) == "" {
			errs = append(errs, errors.New("allowed_domains contains an empty pattern"))
		}
	}
	for _, cidr := range s.AllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Errorf("allowed_cidrs: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Check reports whether target (hostname, IP, host:port or URL) is in scope.
func (s ScopeConfig) Check(target string) error {
	if s.Empty() {
		return nil
	}
	host := targetHost(target)
	if ip := net.ParseIP(host); ip != nil {
		return s.checkIP(ip, host)
	}
	return s.checkDomain(host)
}

func (s ScopeConfig) checkDomain(host string) error {
	for _, pattern := range s.AllowedDomains {
		if domainMatches(host, pattern) {
			return nil
		}
	}
	if len(s.AllowedDomains) == 0 {
		return fmt.Errorf("target %q is a hostname but scope only allows CIDRs (%s)",
			host, strings.Join(s.AllowedCIDRs, ", "))
	}
	return fmt.Errorf("target %q is outside allowed scope (domains: %s)",
		host, strings.Join(s.AllowedDomains, ", "))
}

func (s ScopeConfig) checkIP(ip net.IP, raw string) error {
	for _, cidr := range s.AllowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return nil
		}
	}
	if len(s.AllowedCIDRs) == 0 {
		return fmt.Errorf("IP %q is not allowed: scope only lists domains (%s)",
			raw, strings.Join(s.AllowedDomains, ", "))
	}
	return fmt.Errorf("IP %q is outside allowed CIDR scope (%s)",
		raw, strings.Join(s.AllowedCIDRs, ", "))
}

// targetHost reduces a URL or host:port target to its bare host.
func targetHost(target string) string {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if host, _, err := net.SplitHostPort(target); err == nil {
		return host
	}
	return strings.Trim(target, "[]")
}

// domainMatches returns true when target satisfies the scope pattern.
//
//   - "*.example.com" matches "foo.example.com" but not "example.com" or
//     "foo.bar.example.com" (single wildcard label only).
//   - "example.com" matches only the exact string "example.com".
//   - Comparison is case-insensitive.
func domainMatches(target, pattern string) bool {
	target = strings.ToLower(strings.TrimSuffix(target, "."))
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	if !strings.HasPrefix(pattern, "*.") {
		return target == pattern
	}

	suffix := pattern[2:]
	if !strings.HasSuffix(target, "."+suffix) {
		return false
	}

	label := target[:len(target)-len(suffix)-1]
	return len(label) > 0 && !strings.Contains(label, ".")
}
