// Package probe assesses internet availability with two independent
// reachability checks: a TCP connect and a DNS resolution. Both run
// concurrently with their own timeouts under an overall ceiling, so a check
// that hangs (which can happen when the radio is disabled mid-probe) can
// never stall the caller.
package probe

import (
	"context"
	"net"
	"time"
)

// Reference defaults. The ceiling is slightly looser than either individual
// timeout to absorb scheduling jitter.
const (
	DefaultTCPAddress   = "1.1.1.1:53"
	DefaultDNSHost      = "www.google.com"
	DefaultCheckTimeout = 5 * time.Second
	DefaultCeiling      = 6 * time.Second
)

// Result combines both checks into an internet-available verdict.
// InternetAvailable is true iff both checks succeeded.
type Result struct {
	TCPReachable      bool
	DNSResolves       bool
	InternetAvailable bool
	CheckedAt         time.Time
}

// Prober runs bounded connectivity checks.
type Prober struct {
	TCPAddress   string
	DNSHost      string
	CheckTimeout time.Duration
	Ceiling      time.Duration

	// Overridable in tests.
	tcpCheck func(ctx context.Context) bool
	dnsCheck func(ctx context.Context) bool
}

// New creates a Prober with the reference targets and timeouts.
func New() *Prober {
	p := &Prober{
		TCPAddress:   DefaultTCPAddress,
		DNSHost:      DefaultDNSHost,
		CheckTimeout: DefaultCheckTimeout,
		Ceiling:      DefaultCeiling,
	}
	p.tcpCheck = p.checkTCP
	p.dnsCheck = p.checkDNS
	return p
}

// Probe starts both checks at the same time and returns once both complete
// or the ceiling expires, whichever comes first. A check still pending at
// the ceiling is treated as failed and is not retried; its goroutine is
// cancelled via context and abandoned rather than waited on.
func (p *Prober) Probe(ctx context.Context) Result {
	ceiling := p.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	tcpCh := make(chan bool, 1)
	dnsCh := make(chan bool, 1)
	go func() { tcpCh <- p.tcpCheck(ctx) }()
	go func() { dnsCh <- p.dnsCheck(ctx) }()

	res := Result{CheckedAt: time.Now()}
	for pending := 2; pending > 0; {
		select {
		case ok := <-tcpCh:
			res.TCPReachable = ok
			tcpCh = nil
			pending--
		case ok := <-dnsCh:
			res.DNSResolves = ok
			dnsCh = nil
			pending--
		case <-ctx.Done():
			pending = 0
		}
	}
	res.InternetAvailable = res.TCPReachable && res.DNSResolves
	return res
}

func (p *Prober) checkTCP(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.CheckTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.TCPAddress)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (p *Prober) checkDNS(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.CheckTimeout)
	defer cancel()
	var resolver net.Resolver
	_, err := resolver.LookupHost(ctx, p.DNSHost)
	return err == nil
}
