// @title           Comanda API
// @version         1.0
// @description     Comandas, estoque e caixa de bares e restaurantes.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comanda/internal/config"
	"comanda/internal/infra"
	"comanda/internal/router"
	"comanda/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao carregar configuração")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis indisponível: sem cache de produtos, relatórios processados em linha")
		rdb = nil
	}

	// Report channels; nil pointers must not leak into the interfaces.
	var ch router.Channels
	if m := infra.NewMailer(cfg); m != nil {
		ch.Mailer = m
	}
	if n, err := infra.NewNotifier(cfg); err != nil {
		log.Warn().Err(err).Msg("telegram desativado")
	} else if n != nil {
		ch.Notifier = n
	}

	r, bg := router.New(cfg, db, rdb, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if rdb != nil {
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, bg.Processors)
	}
	worker.StartReconciliacaoCron(ctx, bg.Estoque, cfg.ReconciliacaoIntervalo)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("comanda backend ouvindo em :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("erro no servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("encerrando servidor…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("encerramento forçado")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("servidor finalizado")
}
