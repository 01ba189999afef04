package accessgate

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// FallbackIP is what Resolve degrades to when the public-address lookup
// itself fails. A literal loopback keeps the gate failing open on lookup
// failure while still failing closed on a real mismatch.
const FallbackIP = "127.0.0.1"

// AddressResolver turns the address the server saw into something comparable
// with a teacher-configured public address.
type AddressResolver interface {
	Resolve(ctx context.Context, clientIP string) string
}

// Resolver keeps the request's forwarded client address when it is already a
// public one. Private/loopback addresses (the usual case behind a LAN or in
// local dev) are replaced by the server's own public address, fetched from an
// external lookup service with a short timeout.
type Resolver struct {
	lookupURL string
	client    *http.Client
}

func NewResolver(lookupURL string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Resolver{
		lookupURL: lookupURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *Resolver) Resolve(ctx context.Context, clientIP string) string {
	if clientIP != "" && !isPrivateOrLoopback(clientIP) {
		return clientIP
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL, nil)
	if err != nil {
		return FallbackIP
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return FallbackIP
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FallbackIP
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return FallbackIP
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return FallbackIP
	}
	return ip
}

func isPrivateOrLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return true // unparseable, not comparable with a public address
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
