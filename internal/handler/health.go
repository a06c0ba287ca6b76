package handler

import (
	"context"
	"net/http"
	"time"

	"comanda/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusConectado    = "connected"
	statusErro         = "error"
	statusDesativado   = "disabled"
	healthCheckTimeout = 3 * time.Second
)

type dependencia struct {
	nome        string
	obrigatoria bool
	ping        func(context.Context) error // nil when the dependency is not configured
}

// Health pings Postgres and, when configured, Redis. Redis is optional: a
// nil client reports "disabled" and does not fail the check. Only the status
// of each dependency is exposed, never the underlying error. The report
// channel breakers are listed for information and never fail the check.
func Health(db *gorm.DB, rdb *redis.Client, circuitos ...*infra.CircuitBreaker) gin.HandlerFunc {
	deps := []dependencia{{
		nome:        "db",
		obrigatoria: true,
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	redisDep := dependencia{nome: "redis"}
	if rdb != nil {
		redisDep.ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	deps = append(deps, redisDep)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		body := gin.H{}
		latencias := gin.H{}
		ok := true
		for _, d := range deps {
			if d.ping == nil {
				body[d.nome] = statusDesativado
				if d.obrigatoria {
					ok = false
				}
				continue
			}
			inicio := time.Now()
			if err := d.ping(ctx); err != nil {
				body[d.nome] = statusErro
				ok = false
				continue
			}
			body[d.nome] = statusConectado
			latencias[d.nome] = time.Since(inicio).Milliseconds()
		}
		body["ok"] = ok
		body["latencia_ms"] = latencias
		if len(circuitos) > 0 {
			cbs := make([]infra.CBSnapshot, 0, len(circuitos))
			for _, cb := range circuitos {
				cbs = append(cbs, cb.Snapshot())
			}
			body["circuitos"] = cbs
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
