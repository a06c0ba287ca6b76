package worker

// Periodically replays the stock ledger and logs every product whose counter
// drifted from it. It never corrects: fixing is an explicit admin action
// (gateway reconciliar_estoque or `comandactl reconciliar --corrigir`).

import (
	"context"
	"time"

	"comanda/internal/service"

	"github.com/rs/zerolog/log"
)

// StartReconciliacaoCron ticks every interval until ctx is done. A zero or
// negative interval disables it.
func StartReconciliacaoCron(ctx context.Context, estoque service.EstoqueService, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("reconciliacao_cron: desativado")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("intervalo", interval).Msg("reconciliacao_cron: iniciado")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconciliacao_cron: encerrando")
				return
			case <-ticker.C:
				verificarEstoque(ctx, estoque)
			}
		}
	}()
}

// verificarEstoque runs one read-only reconciliation and returns the number
// of divergent products.
func verificarEstoque(ctx context.Context, estoque service.EstoqueService) int {
	rel, err := estoque.Reconciliar(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("reconciliacao_cron: falha ao reconciliar")
		return 0
	}
	for _, d := range rel.Divergencias {
		log.Warn().
			Str("produto_id", d.ProdutoID).
			Str("nome", d.Nome).
			Int("estoque_atual", d.EstoqueAtual).
			Int("estoque_ledger", d.EstoqueLedger).
			Int("diferenca", d.Diferenca).
			Msg("reconciliacao_cron: estoque divergente do ledger")
	}
	if len(rel.Divergencias) == 0 {
		log.Debug().Int("verificados", rel.Verificados).Msg("reconciliacao_cron: estoque consistente")
	}
	return len(rel.Divergencias)
}
