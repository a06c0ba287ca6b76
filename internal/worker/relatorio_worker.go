package worker

// Processes jobs:relatorio_turno. For a closed shift it renders the PDF
// report, emails it and posts a summary to Telegram. Channels that are not
// configured are skipped.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"comanda/internal/dto"
	"comanda/internal/infra"
	"comanda/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RelatorioJobPayload is the job envelope sent to QueueRelatorioTurno.
type RelatorioJobPayload struct {
	TurnoID string `json:"turno_id"`
}

// Mailer and Notifier are the delivery channels, satisfied by *infra.Mailer
// and *infra.Notifier.
type Mailer interface {
	SendRelatorio(to, subject, body, pdfPath string) error
}

type Notifier interface {
	Send(text, pdfPath string) error
}

type RelatorioWorker struct {
	relatorios   service.RelatorioService
	mailer       Mailer
	notifier     Notifier
	mailCB       *infra.CircuitBreaker
	telegramCB   *infra.CircuitBreaker
	storagePath  string
	destinatario string
	retryBase    time.Duration
}

type RelatorioWorkerConfig struct {
	Relatorios   service.RelatorioService
	Mailer       Mailer   // nil disables email
	Notifier     Notifier // nil disables Telegram
	StoragePath  string
	Destinatario string // email recipient
}

func NewRelatorioWorker(cfg RelatorioWorkerConfig) *RelatorioWorker {
	return &RelatorioWorker{
		relatorios:   cfg.Relatorios,
		mailer:       cfg.Mailer,
		notifier:     cfg.Notifier,
		mailCB:       infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")),
		telegramCB:   infra.NewCircuitBreaker(infra.DefaultCBConfig("telegram")),
		storagePath:  cfg.StoragePath,
		destinatario: cfg.Destinatario,
		retryBase:    time.Second,
	}
}

// Process builds and delivers one shift report. It fails, and so is retried
// by the pool, when the report cannot be built or when every configured
// channel failed.
func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RelatorioJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads never succeed; drop them instead of retrying.
		log.Error().Err(err).Msg("relatorio_worker: payload inválido")
		return nil
	}
	turnoID, err := uuid.Parse(payload.TurnoID)
	if err != nil {
		log.Error().Str("turno_id", payload.TurnoID).Msg("relatorio_worker: turno_id inválido")
		return nil
	}

	rel, err := w.relatorios.Turno(ctx, turnoID)
	if err != nil {
		if errors.Is(err, service.ErrCaixaNaoEncontrado) {
			log.Warn().Str("turno_id", payload.TurnoID).Msg("relatorio_worker: turno não existe mais")
			return nil
		}
		return fmt.Errorf("relatorio do turno %s: %w", turnoID, err)
	}

	pdfPath, err := infra.GenerateRelatorioTurnoPDF(rel, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("turno_id", payload.TurnoID).Str("pdf", pdfPath).Msg("relatorio_worker: PDF gerado")

	resumo := ResumoTurno(rel)
	var tentados, falhas int

	if w.mailer != nil && w.destinatario != "" {
		tentados++
		err := w.deliver(ctx, w.mailCB, func() error {
			return w.mailer.SendRelatorio(w.destinatario, "Fechamento de caixa "+rel.Turno.AbertoEm, resumo, pdfPath)
		})
		if err != nil {
			falhas++
			log.Error().Err(err).Str("turno_id", payload.TurnoID).Msg("relatorio_worker: falha no email")
		}
	}
	if w.notifier != nil {
		tentados++
		err := w.deliver(ctx, w.telegramCB, func() error {
			return w.notifier.Send(resumo, pdfPath)
		})
		if err != nil {
			falhas++
			log.Error().Err(err).Str("turno_id", payload.TurnoID).Msg("relatorio_worker: falha no telegram")
		}
	}

	if tentados > 0 && falhas == tentados {
		return fmt.Errorf("nenhum canal entregou o relatorio do turno %s", turnoID)
	}
	return nil
}

// Circuitos returns the breakers of the delivery channels, for /health.
func (w *RelatorioWorker) Circuitos() []*infra.CircuitBreaker {
	return []*infra.CircuitBreaker{w.mailCB, w.telegramCB}
}

func (w *RelatorioWorker) deliver(ctx context.Context, cb *infra.CircuitBreaker, send func() error) error {
	return withRetry(ctx, 3, w.retryBase, func(int) error {
		return cb.Execute(send)
	})
}

// ResumoTurno renders the plain-text summary used as email body and
// Telegram message.
func ResumoTurno(rel *dto.RelatorioTurnoResponse) string {
	t := rel.Turno
	var b strings.Builder
	if rel.Empresa != nil && rel.Empresa.Nome != "" {
		fmt.Fprintf(&b, "%s\n", rel.Empresa.Nome)
	}
	fmt.Fprintf(&b, "Fechamento de caixa\n")
	fmt.Fprintf(&b, "Aberto em: %s\n", t.AbertoEm)
	if t.FechadoEm != nil {
		fmt.Fprintf(&b, "Fechado em: %s\n", *t.FechadoEm)
	}
	fmt.Fprintf(&b, "Abertura: R$ %s\n", t.ValorAbertura.StringFixed(2))
	fmt.Fprintf(&b, "Entradas: R$ %s\n", t.TotalEntradas.StringFixed(2))
	fmt.Fprintf(&b, "Saídas: R$ %s\n", t.TotalSaidas.StringFixed(2))
	fmt.Fprintf(&b, "Saldo esperado: R$ %s\n", t.SaldoEsperado.StringFixed(2))
	if t.ValorFechamento != nil {
		fmt.Fprintf(&b, "Valor contado: R$ %s\n", t.ValorFechamento.StringFixed(2))
	}
	if t.Diferenca != nil {
		fmt.Fprintf(&b, "Diferença: R$ %s\n", t.Diferenca.StringFixed(2))
	}
	fmt.Fprintf(&b, "Comandas fechadas: %d, canceladas: %d\n", rel.ComandasFechadas, rel.ComandasCanceladas)
	if len(rel.MaisVendidos) > 0 {
		b.WriteString("Mais vendidos:\n")
		for i, pv := range rel.MaisVendidos {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "  %dx %s\n", pv.Quantidade, pv.Nome)
		}
	}
	return b.String()
}
