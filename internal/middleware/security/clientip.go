package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"smartledger/internal/log"
)

var privateNetworks = []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin", ".git", ".ssh",
	"<script", "javascript:", "union select", "etc/passwd", "cmd.exe",
}

// Detector resolves client addresses and flags probing requests.
type Detector struct {
	trusted    []*net.IPNet
	suspicious atomic.Int64
}

// NewDetector trusts forwarding headers only from loopback and private
// networks.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range privateNetworks {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trusted = append(d.trusted, network)
	return nil
}

func (d *Detector) isTrusted(ip net.IP) bool {
	for _, n := range d.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address, or the first forwarded address when
// the peer is a trusted proxy.
func (d *Detector) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer == nil || !d.isTrusted(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return host
}

// Suspicious reports whether the request path or query looks like a probe.
func (d *Detector) Suspicious(r *http.Request) bool {
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(target, p) {
			d.suspicious.Add(1)
			return true
		}
	}
	if r.Method == "TRACE" || r.Method == "TRACK" || len(r.URL.String()) > 2048 {
		d.suspicious.Add(1)
		return true
	}
	return false
}

// SuspiciousCount returns how many requests were flagged.
func (d *Detector) SuspiciousCount() int64 {
	return d.suspicious.Load()
}

// Middleware logs flagged requests and lets them through. Probes for
// missing files end in 404 anyway.
func (d *Detector) Middleware(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSecurity)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d.Suspicious(r) {
				logger.WarnContext(r.Context(), "Suspicious request",
					log.FieldClientIP, d.ClientIP(r),
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path,
					"user_agent", r.UserAgent())
			}
			next.ServeHTTP(w, r)
		})
	}
}
