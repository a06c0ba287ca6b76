//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"comanda/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type falhaSempre struct{ chamadas int }

func (f *falhaSempre) Process(context.Context, json.RawMessage) error {
	f.chamadas++
	return errors.New("canal fora")
}

func TestIntegration_JobFalhoVaiParaDLQ(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	d := NewDispatcher(rdb, nil)
	require.NoError(t, d.EnqueueRelatorioTurno(ctx, uuid.New()))

	p := &falhaSempre{}
	for i := 0; i < MaxAttempts; i++ {
		raw, err := rdb.RPop(ctx, QueueRelatorioTurno).Result()
		require.NoError(t, err, "tentativa %d", i+1)
		processJob(ctx, rdb, QueueRelatorioTurno, raw, p)
	}
	assert.Equal(t, MaxAttempts, p.chamadas)

	n, err := rdb.LLen(ctx, QueueRelatorioTurno).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = DLQLength(ctx, rdb, QueueRelatorioTurno)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := ListDLQ(ctx, rdb, QueueRelatorioTurno, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "relatorio_turno", entries[0].JobType)
	assert.Equal(t, "canal fora", entries[0].Reason)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)

	moved, err := RequeueDLQ(ctx, rdb, QueueRelatorioTurno)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	raw, err := rdb.RPop(ctx, QueueRelatorioTurno).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Zero(t, job.Attempts)
}
