package detector

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock records scheduled callbacks so tests can run them on demand.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs the most recently scheduled timer with duration d, even if it was
// stopped, to simulate a callback racing a Stop.
func (c *fakeClock) fire(t *testing.T, d time.Duration) {
	t.Helper()
	c.mu.Lock()
	var found *fakeTimer
	for i := len(c.timers) - 1; i >= 0; i-- {
		if c.timers[i].d == d {
			found = c.timers[i]
			break
		}
	}
	c.mu.Unlock()
	require.NotNil(t, found, "no timer scheduled for %s", d)
	found.f()
}

func (c *fakeClock) count(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.d == d {
			n++
		}
	}
	return n
}

type harness struct {
	clock   *fakeClock
	present atomic.Bool
	fired   atomic.Int32
	det     *Detector
}

func newHarness() *harness {
	h := &harness{clock: &fakeClock{}}
	h.det = New(DefaultConfig(),
		func() bool { return h.present.Load() },
		func() { h.fired.Add(1) },
		WithAfterFunc(h.clock.AfterFunc),
	)
	return h
}

func TestDetector_SettlePath(t *testing.T) {
	h := newHarness()
	h.det.Start()
	assert.Equal(t, Waiting, h.det.State())

	h.det.Notify()
	assert.Equal(t, Waiting, h.det.State(), "no identity element yet")

	h.present.Store(true)
	h.det.Notify()
	assert.Equal(t, Armed, h.det.State())
	assert.Equal(t, 1, h.clock.count(DefaultSettleDelay))

	// further mutations while armed do not schedule more captures
	h.det.Notify()
	h.det.Notify()
	assert.Equal(t, 1, h.clock.count(DefaultSettleDelay))

	h.clock.fire(t, DefaultSettleDelay)
	assert.Equal(t, Fired, h.det.State())
	assert.Equal(t, int32(1), h.fired.Load())

	// fallback after fire is a no-op
	h.clock.fire(t, DefaultFallbackTimeout)
	assert.Equal(t, int32(1), h.fired.Load())
}

func TestDetector_FallbackFiresWithoutIdentity(t *testing.T) {
	h := newHarness()
	h.det.Start()

	h.clock.fire(t, DefaultFallbackTimeout)

	assert.Equal(t, Fired, h.det.State())
	assert.Equal(t, int32(1), h.fired.Load())

	h.present.Store(true)
	h.det.Notify()
	assert.Equal(t, Fired, h.det.State())
	assert.Equal(t, 0, h.clock.count(DefaultSettleDelay))
}

func TestDetector_FallbackIgnoredWhileArmed(t *testing.T) {
	h := newHarness()
	h.present.Store(true)
	h.det.Start()
	require.Equal(t, Armed, h.det.State(), "initial check arms when element already present")

	h.clock.fire(t, DefaultFallbackTimeout)
	assert.Equal(t, Armed, h.det.State())
	assert.Equal(t, int32(0), h.fired.Load())

	h.clock.fire(t, DefaultSettleDelay)
	assert.Equal(t, int32(1), h.fired.Load())
}

func TestDetector_ResetStartsNewLifetime(t *testing.T) {
	h := newHarness()
	h.present.Store(true)
	h.det.Start()
	h.clock.fire(t, DefaultSettleDelay)
	require.Equal(t, int32(1), h.fired.Load())

	h.present.Store(false)
	h.det.Reset()
	assert.Equal(t, Waiting, h.det.State())
	assert.Equal(t, 2, h.clock.count(DefaultFallbackTimeout))

	h.present.Store(true)
	h.det.Notify()
	h.clock.fire(t, DefaultSettleDelay)
	assert.Equal(t, int32(2), h.fired.Load())
}

func TestDetector_StaleTimerAfterReset(t *testing.T) {
	h := newHarness()
	h.present.Store(true)
	h.det.Start()
	require.Equal(t, Armed, h.det.State())

	h.present.Store(false)
	h.det.Reset()

	// the settle timer from the previous lifetime must not fire
	h.clock.mu.Lock()
	stale := h.clock.timers[1]
	h.clock.mu.Unlock()
	require.Equal(t, DefaultSettleDelay, stale.d)
	stale.f()

	assert.Equal(t, Waiting, h.det.State())
	assert.Equal(t, int32(0), h.fired.Load())
}

func TestDetector_StopPreventsFire(t *testing.T) {
	h := newHarness()
	h.present.Store(true)
	h.det.Start()
	h.det.Stop()

	h.clock.fire(t, DefaultSettleDelay)
	h.clock.fire(t, DefaultFallbackTimeout)
	assert.Equal(t, int32(0), h.fired.Load())

	h.det.Reset()
	h.det.Notify()
	assert.Equal(t, int32(0), h.fired.Load())
}

func TestDetector_NotifyBeforeStartIgnored(t *testing.T) {
	h := newHarness()
	h.present.Store(true)

	h.det.Notify()

	assert.Equal(t, Waiting, h.det.State())
	assert.Empty(t, h.clock.timers)
}

func TestDetector_ConcurrentNotifyArmsOnce(t *testing.T) {
	h := newHarness()
	h.present.Store(true)
	h.det = New(DefaultConfig(),
		func() bool { return h.present.Load() },
		func() { h.fired.Add(1) },
		WithAfterFunc(h.clock.AfterFunc),
	)
	h.det.started = true
	h.det.mu.Lock()
	h.det.beginLocked()
	h.det.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.det.Notify()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.clock.count(DefaultSettleDelay))
	h.clock.fire(t, DefaultSettleDelay)
	h.clock.fire(t, DefaultFallbackTimeout)
	assert.Equal(t, int32(1), h.fired.Load())
}

func TestDetector_RealTimers(t *testing.T) {
	fired := make(chan struct{}, 2)
	det := New(Config{SettleDelay: 10 * time.Millisecond, FallbackTimeout: 20 * time.Millisecond},
		func() bool { return true },
		func() { fired <- struct{}{} },
	)
	det.Start()
	defer det.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("detector did not fire")
	}

	select {
	case <-fired:
		t.Fatal("detector fired twice")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, Fired, det.State())
}

func TestNew_DefaultsZeroConfig(t *testing.T) {
	det := New(Config{}, func() bool { return false }, func() {})
	assert.Equal(t, DefaultConfig(), det.cfg)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "waiting", Waiting.String())
	assert.Equal(t, "armed", Armed.String())
	assert.Equal(t, "fired", Fired.String())
	assert.Equal(t, "unknown", State(42).String())
}
