// Package circuitbreaker guards a flaky upstream. After enough consecutive
// failures the breaker opens and calls are skipped until a cooldown elapses;
// probe calls then run half-open and either close the breaker or reopen it.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the upstream while the breaker is open.
var ErrOpen = errors.New("circuit open")

// State is the breaker state (Closed, Open, HalfOpen).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Options holds breaker parameters. Zero values get defaults.
type Options struct {
	MaxFailures int           // consecutive failures before opening (default 5)
	ProbeQuota  int           // half-open successes needed to close (default 2)
	Cooldown    time.Duration // open duration before probing resumes (default 30s)
	OnChange    func(from, to State)
}

// Breaker tracks consecutive upstream failures and short-circuits calls
// while open. Safe for concurrent use.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failures int
	probes   int
	openedAt time.Time

	maxFailures int
	probeQuota  int
	cooldown    time.Duration
	onChange    func(from, to State)
}

// New returns a closed breaker with the given options.
func New(opts Options) *Breaker {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.ProbeQuota <= 0 {
		opts.ProbeQuota = 2
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	return &Breaker{
		state:       StateClosed,
		maxFailures: opts.MaxFailures,
		probeQuota:  opts.ProbeQuota,
		cooldown:    opts.Cooldown,
		onChange:    opts.OnChange,
	}
}

// Do runs fn unless the breaker is open, in which case it returns ErrOpen
// without calling fn. The first call after the cooldown runs half-open: a
// failure reopens the breaker immediately, ProbeQuota successes close it.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.probes = 0
		b.transition(StateHalfOpen)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.maxFailures {
			b.failures = 0
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
		return err
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.probes++
		if b.probes >= b.probeQuota {
			b.transition(StateClosed)
		}
	}
	return nil
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}
