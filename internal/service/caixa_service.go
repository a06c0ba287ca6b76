package service

import (
	"context"
	"errors"
	"time"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RelatorioEnqueuer schedules the shift-close report. The worker package
// implements it; CaixaService only knows this contract.
type RelatorioEnqueuer interface {
	EnqueueRelatorioTurno(ctx context.Context, turnoID uuid.UUID) error
}

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID *uuid.UUID, req dto.AbrirCaixaRequest) (*dto.TurnoResponse, error)
	RegistrarMovimento(ctx context.Context, req dto.MovimentoCaixaRequest) (*dto.MovimentoCaixaResponse, error)
	Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.TurnoResponse, error)
	Atual(ctx context.Context) (*dto.TurnoResponse, error)
	Resumo(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	Historico(ctx context.Context, page, limit int) (*dto.TurnoListResponse, error)
}

type caixaService struct {
	repo       repository.CaixaRepository
	relatorios RelatorioEnqueuer
}

// NewCaixaService builds the cash-shift service. relatorios may be nil, in
// which case closing a shift schedules no report.
func NewCaixaService(repo repository.CaixaRepository, relatorios RelatorioEnqueuer) CaixaService {
	return &caixaService{repo: repo, relatorios: relatorios}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The pre-check gives the friendly error; the partial unique index on
// status='aberto' settles concurrent opens.

func (s *caixaService) Abrir(ctx context.Context, usuarioID *uuid.UUID, req dto.AbrirCaixaRequest) (*dto.TurnoResponse, error) {
	if req.ValorAbertura.IsNegative() {
		return nil, invalido("valor_abertura não pode ser negativo")
	}
	if _, err := s.repo.FindTurnoAberto(ctx); err == nil {
		return nil, ErrCaixaJaAberto
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	turno := &model.CaixaTurno{
		ValorAbertura:      req.ValorAbertura,
		Status:             model.CaixaAberto,
		ObservacaoAbertura: trimmed(req.Observacao),
		AbertoPor:          usuarioID,
		AbertoEm:           time.Now(),
	}
	if err := s.repo.CreateTurno(ctx, turno); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCaixaJaAberto
		}
		return nil, err
	}

	log.Info().Str("turno_id", turno.ID.String()).Str("valor_abertura", turno.ValorAbertura.StringFixed(2)).Msg("caixa aberto")
	resp := turnoToResponse(turno, true)
	return &resp, nil
}

// ── RegistrarMovimento ────────────────────────────────────────────────────────
// Manual entrada / saida, linked to the open shift when there is one.
// Movements are immutable.

func (s *caixaService) RegistrarMovimento(ctx context.Context, req dto.MovimentoCaixaRequest) (*dto.MovimentoCaixaResponse, error) {
	if req.Tipo != model.CaixaEntrada && req.Tipo != model.CaixaSaida {
		return nil, invalido("tipo de movimento inválido: %s", req.Tipo)
	}
	if !req.Valor.IsPositive() {
		return nil, invalido("valor deve ser maior que zero")
	}
	if !formaPagamentoValida(req.FormaPagamento) {
		return nil, invalido("forma_pagamento inválida: %s", req.FormaPagamento)
	}

	var turnoID *uuid.UUID
	turno, err := s.repo.FindTurnoAberto(ctx)
	switch {
	case err == nil:
		turnoID = &turno.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	mov := &model.MovimentoCaixa{
		TurnoID:        turnoID,
		Tipo:           req.Tipo,
		Valor:          req.Valor,
		Descricao:      req.Descricao,
		FormaPagamento: req.FormaPagamento,
	}
	if err := s.repo.CreateMovimento(ctx, mov); err != nil {
		return nil, err
	}
	resp := movimentoCaixaToResponse(mov)
	return &resp, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// The counted amount is recorded as given; the difference against the
// expected balance is informational only. The shift row stays locked from
// the status check to the update, so only one close wins and enqueues.

func (s *caixaService) Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.TurnoResponse, error) {
	if req.ValorFechamento.IsNegative() {
		return nil, invalido("valor_fechamento não pode ser negativo")
	}
	var id uuid.UUID
	if req.TurnoID != "" {
		var err error
		if id, err = parseID(req.TurnoID, "turno_id"); err != nil {
			return nil, err
		}
	}

	var turno *model.CaixaTurno
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		alvo := id
		if alvo == uuid.Nil {
			aberto, err := s.repo.FindTurnoAbertoTx(tx)
			if err != nil {
				return notFound(err, ErrNenhumCaixaAberto)
			}
			alvo = aberto.ID
		}
		t, err := s.repo.FindTurnoByIDTx(tx, alvo)
		if err != nil {
			return notFound(err, ErrCaixaNaoEncontrado)
		}
		if t.Status != model.CaixaAberto {
			return ErrCaixaFechado
		}

		agora := time.Now()
		valor := req.ValorFechamento
		t.Status = model.CaixaFechado
		t.ValorFechamento = &valor
		t.ObservacaoFechamento = trimmed(req.Observacao)
		t.FechadoEm = &agora
		if err := s.repo.UpdateTurnoTx(tx, t); err != nil {
			return err
		}
		turno = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := turnoToResponse(turno, true)
	log.Info().Str("turno_id", turno.ID.String()).
		Str("saldo_esperado", resp.SaldoEsperado.StringFixed(2)).
		Str("valor_fechamento", turno.ValorFechamento.StringFixed(2)).
		Msg("caixa fechado")

	if s.relatorios != nil {
		if err := s.relatorios.EnqueueRelatorioTurno(ctx, turno.ID); err != nil {
			log.Warn().Err(err).Str("turno_id", turno.ID.String()).Msg("relatório de turno não agendado")
		}
	}
	return &resp, nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *caixaService) Atual(ctx context.Context) (*dto.TurnoResponse, error) {
	aberto, err := s.repo.FindTurnoAberto(ctx)
	if err != nil {
		return nil, notFound(err, ErrNenhumCaixaAberto)
	}
	return s.Resumo(ctx, aberto.ID)
}

func (s *caixaService) Resumo(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		return nil, notFound(err, ErrCaixaNaoEncontrado)
	}
	resp := turnoToResponse(turno, true)
	return &resp, nil
}

func (s *caixaService) Historico(ctx context.Context, page, limit int) (*dto.TurnoListResponse, error) {
	page, limit = dto.Page(page, limit, 20, 100)
	turnos, total, err := s.repo.ListTurnos(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		data = append(data, turnoToResponse(&turnos[i], false))
	}
	return &dto.TurnoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// turnoToResponse recomputes every total from the shift's movements; nothing
// derived is ever stored.
func turnoToResponse(t *model.CaixaTurno, comMovimentos bool) dto.TurnoResponse {
	entradas, saidas := decimal.Zero, decimal.Zero
	porForma := make(map[string]decimal.Decimal, len(model.FormasPagamento))
	for _, f := range model.FormasPagamento {
		porForma[f] = decimal.Zero
	}
	for _, m := range t.Movimentos {
		if m.Tipo == model.CaixaSaida {
			saidas = saidas.Add(m.Valor)
		} else {
			entradas = entradas.Add(m.Valor)
		}
		porForma[m.FormaPagamento] = porForma[m.FormaPagamento].Add(m.Assinado())
	}
	saldo := model.SaldoEsperado(t.ValorAbertura, t.Movimentos)

	resp := dto.TurnoResponse{
		ID:                   t.ID.String(),
		Status:               t.Status,
		ValorAbertura:        t.ValorAbertura,
		TotalEntradas:        entradas,
		TotalSaidas:          saidas,
		SaldoEsperado:        saldo,
		ValorFechamento:      t.ValorFechamento,
		PorFormaPagamento:    porForma,
		ObservacaoAbertura:   t.ObservacaoAbertura,
		ObservacaoFechamento: t.ObservacaoFechamento,
		AbertoEm:             formatTime(t.AbertoEm),
		FechadoEm:            formatTimePtr(t.FechadoEm),
	}
	if t.ValorFechamento != nil {
		dif := t.ValorFechamento.Sub(saldo)
		resp.Diferenca = &dif
	}
	if comMovimentos {
		resp.Movimentos = make([]dto.MovimentoCaixaResponse, 0, len(t.Movimentos))
		for i := range t.Movimentos {
			resp.Movimentos = append(resp.Movimentos, movimentoCaixaToResponse(&t.Movimentos[i]))
		}
	}
	return resp
}

func movimentoCaixaToResponse(m *model.MovimentoCaixa) dto.MovimentoCaixaResponse {
	return dto.MovimentoCaixaResponse{
		ID:             m.ID.String(),
		TurnoID:        idPtrString(m.TurnoID),
		Tipo:           m.Tipo,
		Valor:          m.Valor,
		Descricao:      m.Descricao,
		FormaPagamento: m.FormaPagamento,
		ComandaID:      idPtrString(m.ComandaID),
		CreatedAt:      formatTime(m.CreatedAt),
	}
}
