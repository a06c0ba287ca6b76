package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitBreaker guards a report delivery channel (SMTP, Telegram). After
// FailureThreshold consecutive failures it rejects calls for OpenTimeout,
// then lets a single trial call through at a time until SuccessThreshold trials
// succeed in a row.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	now      func() time.Time
	st       CBState
	seq      int // consecutive failures when closed, consecutive successes when half-open
	desde    time.Time
	sondando bool
}

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

var cbNomes = [...]string{CBClosed: "closed", CBOpen: "open", CBHalfOpen: "half-open"}

func (s CBState) String() string {
	if int(s) < len(cbNomes) {
		return cbNomes[s]
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // default 5
	SuccessThreshold int           // default 2
	OpenTimeout      time.Duration // default 60s
}

// DefaultCBConfig returns the settings used for the report channels.
func DefaultCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{Name: name, FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// CBSnapshot is the breaker state as reported by /health.
type CBSnapshot struct {
	Nome   string `json:"nome"`
	Estado string `json:"estado"`
	Desde  string `json:"desde,omitempty"`
}

func (cb *CircuitBreaker) Snapshot() CBSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.avancar()
	s := CBSnapshot{Nome: cb.cfg.Name, Estado: cb.st.String()}
	if !cb.desde.IsZero() {
		s.Desde = cb.desde.UTC().Format(time.RFC3339)
	}
	return s
}

// State returns the current state. An open breaker whose timeout elapsed
// reports half-open.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.avancar()
	return cb.st
}

// Execute runs fn unless the breaker is open or a half-open trial call is
// already in flight, in which case it returns ErrCircuitOpen without
// calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.avancar()
	switch {
	case cb.st == CBOpen, cb.st == CBHalfOpen && cb.sondando:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.st == CBHalfOpen:
		cb.sondando = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.sondando = false
	cb.registrar(err == nil)
	return err
}

// avancar moves open to half-open once the timeout has elapsed. Caller holds mu.
func (cb *CircuitBreaker) avancar() {
	if cb.st == CBOpen && cb.now().Sub(cb.desde) >= cb.cfg.OpenTimeout {
		cb.mudar(CBHalfOpen)
	}
}

// registrar applies the outcome of one call. Caller holds mu.
func (cb *CircuitBreaker) registrar(ok bool) {
	switch cb.st {
	case CBClosed:
		if ok {
			cb.seq = 0
			return
		}
		cb.seq++
		if cb.seq >= cb.cfg.FailureThreshold {
			cb.mudar(CBOpen)
		}
	case CBHalfOpen:
		if !ok {
			cb.mudar(CBOpen)
			return
		}
		cb.seq++
		if cb.seq >= cb.cfg.SuccessThreshold {
			cb.mudar(CBClosed)
		}
	}
}

func (cb *CircuitBreaker) mudar(s CBState) {
	log.Warn().Str("circuit", cb.cfg.Name).Str("from", cb.st.String()).Str("to", s.String()).Msg("circuit breaker mudou de estado")
	cb.st = s
	cb.seq = 0
	cb.desde = cb.now()
}
