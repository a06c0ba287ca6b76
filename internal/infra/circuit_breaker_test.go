package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errCanal = errors.New("smtp indisponível")

func newTestBreaker() (*CircuitBreaker, *time.Time) {
	agora := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	})
	cb.now = func() time.Time { return agora }
	return cb, &agora
}

func TestCircuitBreaker_AbreAposFalhas(t *testing.T) {
	cb, _ := newTestBreaker()
	falha := func() error { return errCanal }

	assert.ErrorIs(t, cb.Execute(falha), errCanal)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(falha), errCanal)
	assert.Equal(t, CBOpen, cb.State())

	chamado := false
	err := cb.Execute(func() error { chamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, chamado)
}

func TestCircuitBreaker_SucessoZeraContagem(t *testing.T) {
	cb, _ := newTestBreaker()
	_ = cb.Execute(func() error { return errCanal })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errCanal })
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_MeioAberto(t *testing.T) {
	cb, agora := newTestBreaker()
	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errCanal })
	}
	assert.Equal(t, CBOpen, cb.State())

	*agora = agora.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	// One failure while probing reopens it.
	_ = cb.Execute(func() error { return errCanal })
	assert.Equal(t, CBOpen, cb.State())

	*agora = agora.Add(time.Minute)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestDefaultCBConfig(t *testing.T) {
	cfg := DefaultCBConfig("telegram")
	assert.Equal(t, "telegram", cfg.Name)
	assert.Equal(t, 5, cfg.FailureThreshold)

	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	assert.Equal(t, 5, cb.cfg.FailureThreshold)
	assert.Equal(t, 2, cb.cfg.SuccessThreshold)
	assert.Equal(t, 60*time.Second, cb.cfg.OpenTimeout)
	assert.Equal(t, "half-open", CBHalfOpen.String())
}

func TestCircuitBreaker_UmaSondaPorVez(t *testing.T) {
	cb, agora := newTestBreaker()
	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errCanal })
	}
	*agora = agora.Add(time.Minute)

	var interna error
	err := cb.Execute(func() error {
		interna = cb.Execute(func() error { return nil })
		return nil
	})
	assert.NoError(t, err)
	assert.ErrorIs(t, interna, ErrCircuitOpen, "segunda sonda rejeitada enquanto a primeira roda")
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCircuitBreaker_Snapshot(t *testing.T) {
	cb, agora := newTestBreaker()
	s := cb.Snapshot()
	assert.Equal(t, "test", s.Nome)
	assert.Equal(t, "closed", s.Estado)
	assert.Empty(t, s.Desde)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errCanal })
	}
	s = cb.Snapshot()
	assert.Equal(t, "open", s.Estado)
	assert.Equal(t, agora.Format(time.RFC3339), s.Desde)
	assert.Equal(t, "unknown", CBState(9).String())
}
