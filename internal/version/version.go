// Package version compares the client build against the minimum version the
// server advertises and polls for changes.
package version

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

// NeedsUpdate reports whether current is older than minimum. Versions are
// dot-separated integers; missing or non-numeric components count as 0.
func NeedsUpdate(current, minimum string) bool {
	cur := parse(current)
	minParts := parse(minimum)
	n := max(len(cur), len(minParts))
	for i := 0; i < n; i++ {
		c, m := part(cur, i), part(minParts, i)
		if c != m {
			return c < m
		}
	}
	return false
}

func parse(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}

func part(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// Checker fetches the server's version info
type Checker interface {
	CheckVersion(ctx context.Context) (models.VersionInfo, error)
}

type Poller struct {
	checker  Checker
	current  string
	interval time.Duration

	checking atomic.Bool

	mu             sync.RWMutex
	updateRequired bool
	serverVersion  string
	onUpdate       func(serverVersion string)
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithCurrent overrides the client version being compared
func WithCurrent(v string) Option {
	return func(p *Poller) { p.current = v }
}

// OnUpdateRequired sets a callback invoked each time a check finds the
// client out of date
func OnUpdateRequired(fn func(serverVersion string)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

func NewPoller(checker Checker, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		current:  constants.Version,
		interval: constants.VersionCheckInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = constants.VersionCheckInterval
	}
	return p
}

// SetOnUpdateRequired replaces the update callback after construction
func (p *Poller) SetOnUpdateRequired(fn func(serverVersion string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Run checks immediately, then every interval until ctx is done
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check fetches the server version once. It returns false without doing
// anything when another check is already in flight. Network failures are
// logged and leave the current state untouched.
func (p *Poller) Check(ctx context.Context) bool {
	if !p.checking.CompareAndSwap(false, true) {
		return false
	}
	defer p.checking.Store(false)

	info, err := p.checker.CheckVersion(ctx)
	if err != nil {
		logger.Warn("version check failed", "err", err)
		return true
	}

	if !NeedsUpdate(p.current, info.Version) {
		logger.Debug("client version is current", "client", p.current, "server", info.Version)
		return true
	}

	logger.Warn("client update required", "client", p.current, "server", info.Version)
	p.mu.Lock()
	p.updateRequired = true
	p.serverVersion = info.Version
	fn := p.onUpdate
	p.mu.Unlock()

	if fn != nil {
		fn(info.Version)
	}
	return true
}

func (p *Poller) UpdateRequired() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updateRequired
}

// ServerVersion is the minimum version from the last check that required
// an update
func (p *Poller) ServerVersion() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.serverVersion
}

func (p *Poller) Current() string { return p.current }

func (p *Poller) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateRequired = false
}
