// Package ratelimit limits request rates per client with token buckets.
//
// Each client, keyed by IP, owns a bucket of Burst tokens refilled at Rate
// tokens per second. A request spends one token; an empty bucket rejects.
// Proxy headers are honored only for peers in TrustedProxies.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultEntryTTL is how long an idle client's bucket is kept.
const DefaultEntryTTL = time.Minute

// Config configures a Limiter.
type Config struct {
	// Rate is tokens per second per client. Zero or less disables limiting.
	Rate float64

	// Burst is the bucket capacity. Defaults to twice Rate, at least 1.
	Burst int

	// TrustedProxies lists IPs or CIDR ranges allowed to set
	// X-Forwarded-For and X-Real-IP.
	TrustedProxies []string

	// EntryTTL bounds how long idle buckets are kept. Default: DefaultEntryTTL.
	EntryTTL time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Enabled reports whether c describes an active limit.
func (c Config) Enabled() bool {
	return c.Rate > 0
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the wait for the next token when rejected, or until the
	// bucket is full again when allowed.
	RetryAfter time.Duration
}

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter tracks one bucket per client. It is safe for concurrent use.
type Limiter struct {
	rate    float64
	burst   int
	ttl     time.Duration
	now     func() time.Time
	proxies []*net.IPNet

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New returns a Limiter for cfg. It fails on a malformed trusted proxy.
func New(cfg Config) (*Limiter, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("rate must be positive, got %v", cfg.Rate)
	}
	l := &Limiter{
		rate:    cfg.Rate,
		burst:   cfg.Burst,
		ttl:     cfg.EntryTTL,
		now:     cfg.Now,
		buckets: make(map[string]*bucket),
	}
	if l.burst <= 0 {
		l.burst = max(1, int(math.Ceil(cfg.Rate*2)))
	}
	if l.ttl <= 0 {
		l.ttl = DefaultEntryTTL
	}
	if l.now == nil {
		l.now = time.Now
	}
	for _, p := range cfg.TrustedProxies {
		network, err := parseNetwork(p)
		if err != nil {
			return nil, err
		}
		l.proxies = append(l.proxies, network)
	}
	return l, nil
}

func parseNetwork(s string) (*net.IPNet, error) {
	if _, network, err := net.ParseCIDR(s); err == nil {
		return network, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q", s)
	}
	bits := 128
	if ip.To4() != nil {
		ip, bits = ip.To4(), 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int {
	return l.burst
}

// Allow spends a token from key's bucket if one is available.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.burst), b.tokens+elapsed*l.rate)
	}
	b.last = now

	d := Decision{Limit: l.burst}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
		d.Remaining = int(b.tokens)
		d.RetryAfter = l.wait(float64(l.burst) - b.tokens)
		return d
	}
	d.RetryAfter = l.wait(1 - b.tokens)
	return d
}

// wait converts a token deficit into a duration.
func (l *Limiter) wait(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	return time.Duration(tokens / l.rate * float64(time.Second))
}

// Sweep drops buckets idle for longer than the entry TTL and returns how
// many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.ttl)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Run sweeps idle buckets every entry TTL until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// ClientIP returns the address a request is charged to. Forwarding headers
// count only when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !l.trusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

func (l *Limiter) trusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range l.proxies {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}
