package service

import (
	"context"
	"fmt"
	"strings"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EstoqueService owns the stock ledger. Every change to Produto.EstoqueAtual
// goes through MovimentarTx so the counter and the movimentos_estoque rows
// never disagree.
type EstoqueService interface {
	Entrada(ctx context.Context, req dto.EntradaEstoqueRequest) (*dto.MovimentoEstoqueResponse, error)
	Ajuste(ctx context.Context, req dto.AjusteEstoqueRequest) (*dto.MovimentoEstoqueResponse, error)
	RegistrarMovimento(ctx context.Context, req dto.MovimentoEstoqueRequest) (*dto.MovimentoEstoqueResponse, error)
	// MovimentarTx applies delta to p, which must have been read (and locked)
	// inside tx, and appends the matching movement.
	MovimentarTx(tx *gorm.DB, p *model.Produto, tipo string, delta int, motivo string, comandaID *uuid.UUID) (*model.MovimentoEstoque, error)
	Alertas(ctx context.Context) ([]dto.AlertaEstoqueResponse, error)
	Reconciliar(ctx context.Context, corrigir bool) (*dto.ReconciliacaoResponse, error)
	ListarMovimentos(ctx context.Context, filter dto.MovimentoEstoqueFilter) (*dto.MovimentoEstoqueListResponse, error)
}

type estoqueService struct {
	produtoRepo   repository.ProdutoRepository
	movimentoRepo repository.MovimentoEstoqueRepository
	cache         *ProdutoCache
}

func NewEstoqueService(
	produtoRepo repository.ProdutoRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	cache *ProdutoCache,
) EstoqueService {
	return &estoqueService{produtoRepo: produtoRepo, movimentoRepo: movimentoRepo, cache: cache}
}

func (s *estoqueService) MovimentarTx(tx *gorm.DB, p *model.Produto, tipo string, delta int, motivo string, comandaID *uuid.UUID) (*model.MovimentoEstoque, error) {
	anterior := p.EstoqueAtual
	posterior := anterior + delta
	if err := s.produtoRepo.SetEstoqueTx(tx, p.ID, posterior); err != nil {
		return nil, fmt.Errorf("atualizar estoque de %s: %w", p.Nome, err)
	}
	mov := &model.MovimentoEstoque{
		ProdutoID:        p.ID,
		Tipo:             tipo,
		Quantidade:       delta,
		EstoqueAnterior:  anterior,
		EstoquePosterior: posterior,
		Motivo:           motivo,
		ComandaID:        comandaID,
	}
	if err := s.movimentoRepo.CreateTx(tx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimento de %s: %w", p.Nome, err)
	}
	p.EstoqueAtual = posterior
	mov.Produto = p
	return mov, nil
}

// movimentar loads the product inside a fresh transaction and applies the
// delta computed from its current counter.
func (s *estoqueService) movimentar(ctx context.Context, rawID, tipo, motivo string, delta func(atual int) int) (*dto.MovimentoEstoqueResponse, error) {
	produtoID, err := parseID(rawID, "produto_id")
	if err != nil {
		return nil, err
	}

	var mov *model.MovimentoEstoque
	err = runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.produtoRepo.FindByIDTx(tx, produtoID)
		if err != nil {
			return notFound(err, ErrProdutoNaoEncontrado)
		}
		if !p.ControlaEstoque {
			return ErrProdutoSemControle
		}
		mov, err = s.MovimentarTx(tx, p, tipo, delta(p.EstoqueAtual), motivo, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, produtoID)
	resp := movimentoToResponse(mov)
	return &resp, nil
}

func (s *estoqueService) Entrada(ctx context.Context, req dto.EntradaEstoqueRequest) (*dto.MovimentoEstoqueResponse, error) {
	if req.Quantidade < 1 {
		return nil, invalido("quantidade deve ser maior que zero")
	}
	motivo := "Entrada de estoque"
	if req.Motivo != nil && strings.TrimSpace(*req.Motivo) != "" {
		motivo = *req.Motivo
	}
	return s.movimentar(ctx, req.ProdutoID, model.EstoqueEntrada, motivo, func(int) int { return req.Quantidade })
}

func (s *estoqueService) Ajuste(ctx context.Context, req dto.AjusteEstoqueRequest) (*dto.MovimentoEstoqueResponse, error) {
	if req.NovaQuantidade < 0 {
		return nil, invalido("nova_quantidade não pode ser negativa")
	}
	if strings.TrimSpace(req.Motivo) == "" {
		return nil, invalido("motivo é obrigatório no ajuste")
	}
	return s.movimentar(ctx, req.ProdutoID, model.EstoqueAjuste, req.Motivo, func(atual int) int {
		return req.NovaQuantidade - atual
	})
}

func (s *estoqueService) RegistrarMovimento(ctx context.Context, req dto.MovimentoEstoqueRequest) (*dto.MovimentoEstoqueResponse, error) {
	if req.Quantidade < 1 {
		return nil, invalido("quantidade deve ser maior que zero")
	}
	switch req.Tipo {
	case model.EstoqueEntrada:
		return s.movimentar(ctx, req.ProdutoID, model.EstoqueEntrada, req.Motivo, func(int) int { return req.Quantidade })
	case model.EstoqueSaida:
		return s.movimentar(ctx, req.ProdutoID, model.EstoqueSaida, req.Motivo, func(int) int { return -req.Quantidade })
	default:
		return nil, invalido("tipo de movimento inválido: %s", req.Tipo)
	}
}

func (s *estoqueService) Alertas(ctx context.Context) ([]dto.AlertaEstoqueResponse, error) {
	produtos, err := s.produtoRepo.ListEstoqueBaixo(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AlertaEstoqueResponse, 0, len(produtos))
	for _, p := range produtos {
		resp = append(resp, dto.AlertaEstoqueResponse{
			ProdutoID:     p.ID.String(),
			Nome:          p.Nome,
			Categoria:     p.Categoria,
			EstoqueAtual:  p.EstoqueAtual,
			EstoqueMinimo: p.EstoqueMinimo,
		})
	}
	return resp, nil
}

// Reconciliar replays the ledger of every stock-tracked product and reports
// counters that differ from Σ quantidade. With corrigir the ledger wins and
// the counter is rewritten; no movement is appended for the correction.
func (s *estoqueService) Reconciliar(ctx context.Context, corrigir bool) (*dto.ReconciliacaoResponse, error) {
	produtos, err := s.produtoRepo.ListControlados(ctx)
	if err != nil {
		return nil, err
	}
	somas, err := s.movimentoRepo.SomaPorProduto(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReconciliacaoResponse{
		Verificados:  len(produtos),
		Divergencias: []dto.DivergenciaEstoque{},
	}
	var divergentes []uuid.UUID
	for _, p := range produtos {
		ledger := somas[p.ID]
		if ledger == p.EstoqueAtual {
			continue
		}
		resp.Divergencias = append(resp.Divergencias, dto.DivergenciaEstoque{
			ProdutoID:     p.ID.String(),
			Nome:          p.Nome,
			EstoqueAtual:  p.EstoqueAtual,
			EstoqueLedger: ledger,
			Diferenca:     p.EstoqueAtual - ledger,
		})
		divergentes = append(divergentes, p.ID)
	}

	if !corrigir || len(divergentes) == 0 {
		return resp, nil
	}

	err = runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		for _, id := range divergentes {
			// The sum is taken again under the row lock: a sale committed since
			// the scan moved both the counter and the ledger.
			if _, err := s.produtoRepo.FindByIDTx(tx, id); err != nil {
				return notFound(err, ErrProdutoNaoEncontrado)
			}
			ledger, err := s.movimentoRepo.SomaProdutoTx(tx, id)
			if err != nil {
				return err
			}
			if err := s.produtoRepo.SetEstoqueTx(tx, id, ledger); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corrigir estoque: %w", err)
	}
	s.cache.Invalidar(ctx, divergentes...)
	resp.Corrigido = true
	log.Warn().Int("produtos", len(divergentes)).Msg("estoque corrigido a partir do histórico de movimentos")
	return resp, nil
}

func (s *estoqueService) ListarMovimentos(ctx context.Context, filter dto.MovimentoEstoqueFilter) (*dto.MovimentoEstoqueListResponse, error) {
	page, limit := dto.Page(filter.Page, filter.Limit, 100, 500)
	repoFilter := repository.MovimentoEstoqueFilter{Tipo: filter.Tipo, Page: page, Limit: limit}
	if filter.ProdutoID != "" {
		id, err := parseID(filter.ProdutoID, "produto_id")
		if err != nil {
			return nil, err
		}
		repoFilter.ProdutoID = &id
	}

	movs, total, err := s.movimentoRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimentoEstoqueResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimentoToResponse(&movs[i]))
	}
	return &dto.MovimentoEstoqueListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func movimentoToResponse(m *model.MovimentoEstoque) dto.MovimentoEstoqueResponse {
	resp := dto.MovimentoEstoqueResponse{
		ID:               m.ID.String(),
		ProdutoID:        m.ProdutoID.String(),
		Tipo:             m.Tipo,
		Quantidade:       m.Quantidade,
		EstoqueAnterior:  m.EstoqueAnterior,
		EstoquePosterior: m.EstoquePosterior,
		Motivo:           m.Motivo,
		ComandaID:        idPtrString(m.ComandaID),
		CreatedAt:        formatTime(m.CreatedAt),
	}
	if m.Produto != nil {
		resp.Produto = m.Produto.Nome
	}
	return resp
}
