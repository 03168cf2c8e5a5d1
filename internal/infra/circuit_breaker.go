package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CBState is the position of a breaker: closed lets calls through, open
// rejects them, half-open lets probes through until enough succeed.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String is the state name reported by /health.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute without calling fn.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes a breaker. Zero values fall back to 5 failures,
// 2 probes and 60s.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// SMTPBreakerConfig guards the mail relay: three failed sends in a row stop
// email jobs for two minutes, and the dead letter relaunch waits meanwhile.
func SMTPBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "smtp",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	state    CBState
	echecs   int
	succes   int
	ouvertLe time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State returns the current state, moving an expired open breaker to half-open.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expirer()
	return cb.state
}

// Execute runs fn unless the breaker is open, and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.echec()
		return err
	}
	cb.reussite()
	return nil
}

// The helpers below run under cb.mu.

func (cb *CircuitBreaker) expirer() {
	if cb.state == CBOpen && time.Since(cb.ouvertLe) >= cb.cfg.OpenTimeout {
		cb.basculer(CBHalfOpen)
	}
}

func (cb *CircuitBreaker) echec() {
	cb.echecs++
	if cb.state == CBHalfOpen || cb.echecs >= cb.cfg.FailureThreshold {
		cb.ouvertLe = time.Now()
		cb.basculer(CBOpen)
	}
}

func (cb *CircuitBreaker) reussite() {
	if cb.state != CBHalfOpen {
		cb.echecs = 0
		return
	}
	cb.succes++
	if cb.succes >= cb.cfg.SuccessThreshold {
		cb.basculer(CBClosed)
	}
}

func (cb *CircuitBreaker) basculer(s CBState) {
	if cb.state == s {
		return
	}
	log.Warn().
		Str("breaker", cb.cfg.Name).
		Str("from", cb.state.String()).
		Str("to", s.String()).
		Msg("circuit breaker state change")
	cb.state = s
	cb.echecs = 0
	cb.succes = 0
}
