// Package pacer is a small exponential-backoff retry helper. No storage
// backend or task in this module calls it; only its own tests do. It is
// grounded in rclone's lib/pacer (attack/decay state machine shape, as
// revealed by its surviving test file) and in the one fully-retrieved
// pacer consumer in the pack, backend/seafile/pacer.go (one pacer per
// remote host, cached in a map).
package pacer

import (
	"math/rand"
	"sync"
	"time"
)

// State is the mutable backoff state threaded through Calculate.
type State struct {
	SleepTime          time.Duration
	ConsecutiveRetries int
}

// Default is the attack/decay calculator: a failure multiplies the sleep
// by (2*attackConstant+1)/(attackConstant+1); a success multiplies it by
// 2*decayConstant/(2*decayConstant+1).
type Default struct {
	minSleep       time.Duration
	maxSleep       time.Duration
	decayConstant  uint
	attackConstant uint
}

// Option configures a Default calculator or a Pacer.
type Option func(*Default)

func MinSleep(d time.Duration) Option { return func(c *Default) { c.minSleep = d } }
func MaxSleep(d time.Duration) Option { return func(c *Default) { c.maxSleep = d } }
func DecayConstant(n uint) Option     { return func(c *Default) { c.decayConstant = n } }
func AttackConstant(n uint) Option    { return func(c *Default) { c.attackConstant = n } }

// NewDefault builds a calculator with rclone's defaults (100ms/10s/2/1),
// overridden by opts.
func NewDefault(opts ...Option) *Default {
	c := &Default{
		minSleep:       100 * time.Millisecond,
		maxSleep:       10 * time.Second,
		decayConstant:  2,
		attackConstant: 1,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Calculate returns the next sleep time given the previous state: with
// ConsecutiveRetries == 0 (the last call succeeded) it decays toward
// minSleep, otherwise it attacks toward maxSleep. Pacer calls it from
// recordSuccess and recordFailure.
func (c *Default) Calculate(prev State) time.Duration {
	if prev.ConsecutiveRetries == 0 {
		// Decay: ease off after a success.
		sleepTime := (prev.SleepTime*time.Duration(2*c.decayConstant) + 1) / time.Duration(2*c.decayConstant+1)
		if sleepTime < c.minSleep {
			sleepTime = c.minSleep
		}
		return sleepTime
	}
	// Attack: back off harder after a failure.
	sleepTime := (prev.SleepTime*time.Duration(2*c.attackConstant+1) + 1) / time.Duration(c.attackConstant+1)
	if sleepTime > c.maxSleep {
		sleepTime = c.maxSleep
	}
	return sleepTime
}

// Pacer serializes and paces retried calls against one remote endpoint.
type Pacer struct {
	mu      sync.Mutex
	calc    *Default
	state   State
	retries int
	jitter  bool
}

// New builds a Pacer with the given retry ceiling (default 3) and
// calculator (default NewDefault()).
func New(retries int, calc *Default) *Pacer {
	if retries <= 0 {
		retries = 3
	}
	if calc == nil {
		calc = NewDefault()
	}
	return &Pacer{calc: calc, state: State{SleepTime: calc.minSleep}, retries: retries, jitter: true}
}

// RetryableFunc returns (retry bool, err error): retry=true asks the
// pacer to back off and call it again, up to the retry ceiling.
type RetryableFunc func() (retry bool, err error)

// Call paces and retries fn, sleeping between attempts per the backoff
// calculator, and returns early with the last error if the stop channel
// (when non-nil) is closed during a backoff sleep.
func (p *Pacer) Call(fn RetryableFunc, stop <-chan struct{}) error {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		retry, err := fn()
		lastErr = err
		if !retry || err == nil {
			p.recordSuccess()
			return err
		}
		p.recordFailure()
		if attempt == p.retries {
			break
		}
		sleep := p.nextSleep()
		select {
		case <-time.After(sleep):
		case <-stop:
			return lastErr
		}
	}
	return lastErr
}

func (p *Pacer) nextSleep() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.state.SleepTime
	if p.jitter && d > 0 {
		d = d/2 + time.Duration(rand.Int63n(int64(d)/2+1))
	}
	return d
}

func (p *Pacer) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.ConsecutiveRetries = 0
	p.state.SleepTime = p.calc.Calculate(p.state)
}

func (p *Pacer) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.ConsecutiveRetries++
	p.state.SleepTime = p.calc.Calculate(p.state)
}

// registry caches one Pacer per remote host key, matching
// backend/seafile/pacer.go's getPacer pattern.
var (
	registryMu sync.Mutex
	registry   = map[string]*Pacer{}
)

// ForHost returns the shared Pacer for host, creating one on first use.
func ForHost(host string) *Pacer {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p, ok := registry[host]; ok {
		return p
	}
	p := New(3, nil)
	registry[host] = p
	return p
}
