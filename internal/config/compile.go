package config

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/JakeFAU/md-check-link/internal/link"
	"github.com/JakeFAU/md-check-link/internal/policy/ratelimit"
	"github.com/JakeFAU/md-check-link/internal/resolver"
)

var durationPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-zA-Z]*)\s*$`)

// ParseDuration reads the timeout format: a number followed by "s" means
// seconds; a bare number or any other unit suffix means milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: duration %q", ErrConfigInvalid, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %w", ErrConfigInvalid, s, err)
	}
	if m[2] == "s" {
		return time.Duration(n) * time.Second, nil
	}
	return time.Duration(n) * time.Millisecond, nil
}

// TimeoutDuration returns the per-request timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	d, err := ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be > 0", ErrConfigInvalid)
	}
	return d, nil
}

// RetryPolicy returns the 429 retry policy.
func (c Config) RetryPolicy() (resolver.RetryPolicy, error) {
	interval, err := ParseDuration(c.RetryBackoff)
	if err != nil {
		return resolver.RetryPolicy{}, fmt.Errorf("retryBackoff: %w", err)
	}
	return resolver.RetryPolicy{
		Enabled:     c.RetryOn429,
		MaxAttempts: c.RetryCount,
		Interval:    interval,
	}, nil
}

// Rules compiles the rewrite and ignore patterns in declared order.
func (c Config) Rules() (link.Rules, error) {
	var rules link.Rules
	for _, p := range c.ReplacementPatterns {
		rule, err := link.NewRewriteRule(p.Pattern, p.Replacement, p.Docsify)
		if err != nil {
			return link.Rules{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
		}
		rules.Rewrites = append(rules.Rewrites, rule)
	}
	for _, p := range c.IgnorePatterns {
		re, err := link.NewIgnoreRule(p.Pattern)
		if err != nil {
			return link.Rules{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
		}
		rules.Ignores = append(rules.Ignores, re)
	}
	return rules, nil
}

// Headers converts the header scopes into resolver rules.
func (c Config) Headers() resolver.Headers {
	out := make(resolver.Headers, 0, len(c.HTTPHeaders))
	for _, scope := range c.HTTPHeaders {
		h := http.Header{}
		for name, value := range scope.Headers {
			h.Set(name, value)
		}
		out = append(out, resolver.HeaderRule{
			Prefixes: append([]string(nil), scope.URLs...),
			Header:   h,
		})
	}
	return out
}

// RateLimit returns the per-host pacing configuration.
func (c Config) RateLimit() ratelimit.Config {
	return ratelimit.Config{RPS: c.HostRateLimit, Burst: c.HostBurst}
}
