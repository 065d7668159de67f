// Package detector decides when a profile page has loaded enough to extract.
//
// A Detector starts in Waiting. The first change notification that finds the
// identity element moves it to Armed and schedules a capture after a settle
// delay. Independently, a fallback timer started with the detector captures
// the page anyway if nothing has armed it by then. Either path ends in Fired
// and the capture callback runs exactly once until the next Reset.
package detector

import (
	"sync"
	"time"

	"github.com/jonathan/jobfit-analyzer/internal/logger"
	"go.uber.org/zap"
)

// State is the lifecycle position of a Detector
type State int

const (
	// Waiting means no identity element has been seen yet
	Waiting State = iota
	// Armed means the settle timer is running
	Armed
	// Fired means the capture callback has been invoked
	Fired
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "unknown"
	}
}

const (
	// DefaultSettleDelay is how long to wait after the identity element appears
	DefaultSettleDelay = 2 * time.Second
	// DefaultFallbackTimeout is how long to wait before capturing regardless
	DefaultFallbackTimeout = 3 * time.Second
)

// Config holds detector timings. Zero values fall back to the defaults.
type Config struct {
	SettleDelay     time.Duration `json:"settle_delay"`
	FallbackTimeout time.Duration `json:"fallback_timeout"`
}

// DefaultConfig returns the default detector timings.
func DefaultConfig() Config {
	return Config{
		SettleDelay:     DefaultSettleDelay,
		FallbackTimeout: DefaultFallbackTimeout,
	}
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Detector
type Option func(*Detector)

// WithAfterFunc replaces the timer implementation.
func WithAfterFunc(fn AfterFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.afterFunc = fn
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		d.logger = logger.OrNop(l)
	}
}

// Detector is a one-shot gate between page changes and a capture callback.
// It is safe for concurrent use.
type Detector struct {
	cfg       Config
	check     func() bool
	fire      func()
	afterFunc AfterFunc
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	started  bool
	stopped  bool
	fallback Timer
	settle   Timer
}

// New creates a Detector. check reports whether the identity element is
// present; fire is the capture callback.
func New(cfg Config, check func() bool, fire func(), opts ...Option) *Detector {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = DefaultFallbackTimeout
	}

	d := &Detector{
		cfg:       cfg,
		check:     check,
		fire:      fire,
		afterFunc: realAfterFunc,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins a page lifetime: it starts the fallback timer and checks the
// page once. Calling Start again has no effect; use Reset for navigations.
func (d *Detector) Start() {
	d.mu.Lock()
	if d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.beginLocked()
	d.mu.Unlock()

	d.Notify()
}

// Notify signals that the page changed. It only has an effect while Waiting.
func (d *Detector) Notify() {
	d.mu.Lock()
	if d.stopped || !d.started || d.state != Waiting {
		d.mu.Unlock()
		return
	}
	gen := d.gen
	d.mu.Unlock()

	// check may query a live browser, so it runs without the lock held
	if !d.check() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.gen != gen || d.state != Waiting {
		return
	}
	d.state = Armed
	d.settle = d.afterFunc(d.cfg.SettleDelay, func() { d.onSettle(gen) })
	d.logger.Debug("identity element found, settling", zap.Duration("settle_delay", d.cfg.SettleDelay))
}

// Reset starts a new page lifetime after a full navigation.
func (d *Detector) Reset() {
	d.mu.Lock()
	if d.stopped || !d.started {
		d.mu.Unlock()
		return
	}
	d.stopTimersLocked()
	d.beginLocked()
	d.mu.Unlock()

	d.logger.Debug("detector reset")
	d.Notify()
}

// Stop cancels pending timers. A stopped detector never fires again.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.stopTimersLocked()
}

// State returns the current state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detector) beginLocked() {
	d.gen++
	gen := d.gen
	d.state = Waiting
	d.fallback = d.afterFunc(d.cfg.FallbackTimeout, func() { d.onFallback(gen) })
}

func (d *Detector) stopTimersLocked() {
	if d.fallback != nil {
		d.fallback.Stop()
		d.fallback = nil
	}
	if d.settle != nil {
		d.settle.Stop()
		d.settle = nil
	}
}

func (d *Detector) onSettle(gen uint64) {
	d.mu.Lock()
	if d.stopped || d.gen != gen || d.state != Armed {
		d.mu.Unlock()
		return
	}
	d.state = Fired
	d.stopTimersLocked()
	d.mu.Unlock()

	d.logger.Debug("settle delay elapsed, capturing")
	d.fire()
}

func (d *Detector) onFallback(gen uint64) {
	d.mu.Lock()
	if d.stopped || d.gen != gen || d.state != Waiting {
		d.mu.Unlock()
		return
	}
	d.state = Fired
	d.stopTimersLocked()
	d.mu.Unlock()

	d.logger.Debug("fallback timeout elapsed, capturing", zap.Duration("fallback_timeout", d.cfg.FallbackTimeout))
	d.fire()
}
