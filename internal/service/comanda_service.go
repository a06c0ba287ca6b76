package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComandaService drives the order lifecycle. Every transition that touches
// more than one table (lines, stock, cash, table status) runs in a single
// database transaction.
type ComandaService interface {
	Abrir(ctx context.Context, req dto.AbrirComandaRequest) (*dto.ComandaResponse, error)
	AdicionarItem(ctx context.Context, req dto.AdicionarItemRequest) (*dto.ComandaResponse, error)
	RemoverItem(ctx context.Context, comandaID uuid.UUID, req dto.RemoverItemRequest) (*dto.ComandaResponse, error)
	Fechar(ctx context.Context, id uuid.UUID, req dto.FecharComandaRequest) (*dto.ComandaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarComandaRequest) (*dto.ComandaResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	Obter(ctx context.Context, id uuid.UUID) (*dto.ComandaResponse, error)
	Listar(ctx context.Context, filter dto.ComandaFilter) (*dto.ComandaListResponse, error)
	AbertaPorMesa(ctx context.Context, mesaID uuid.UUID) (*dto.ComandaResponse, error)
}

type comandaService struct {
	repo          repository.ComandaRepository
	mesaRepo      repository.MesaRepository
	produtoRepo   repository.ProdutoRepository
	clienteRepo   repository.ClienteRepository
	caixaRepo     repository.CaixaRepository
	movimentoRepo repository.MovimentoEstoqueRepository
	estoque       EstoqueService
	cache         *ProdutoCache
}

func NewComandaService(
	repo repository.ComandaRepository,
	mesaRepo repository.MesaRepository,
	produtoRepo repository.ProdutoRepository,
	clienteRepo repository.ClienteRepository,
	caixaRepo repository.CaixaRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	estoque EstoqueService,
	cache *ProdutoCache,
) ComandaService {
	return &comandaService{
		repo:          repo,
		mesaRepo:      mesaRepo,
		produtoRepo:   produtoRepo,
		clienteRepo:   clienteRepo,
		caixaRepo:     caixaRepo,
		movimentoRepo: movimentoRepo,
		estoque:       estoque,
		cache:         cache,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// mesa: the table must be livre and becomes ocupada in the same transaction.
// delivery: a customer name is required, copied from the client when given.

func (s *comandaService) Abrir(ctx context.Context, req dto.AbrirComandaRequest) (*dto.ComandaResponse, error) {
	mesaID, err := parseOptionalID(req.MesaID, "mesa_id")
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptionalID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}

	nome := trimmed(req.NomeCliente)
	if clienteID != nil {
		cli, err := s.clienteRepo.FindByID(ctx, *clienteID)
		if err != nil {
			return nil, notFound(err, ErrClienteNaoEncontrado)
		}
		if nome == nil {
			nome = &cli.Nome
		}
	}

	switch req.Tipo {
	case model.TipoMesa:
		if mesaID == nil {
			return nil, invalido("mesa_id é obrigatório para comanda de mesa")
		}
	case model.TipoDelivery:
		if nome == nil {
			return nil, invalido("nome_cliente é obrigatório para delivery")
		}
		mesaID = nil
	case model.TipoBalcao:
		mesaID = nil
	default:
		return nil, invalido("tipo de comanda inválido: %s", req.Tipo)
	}

	c := &model.Comanda{
		Tipo:        req.Tipo,
		MesaID:      mesaID,
		ClienteID:   clienteID,
		NomeCliente: nome,
		Status:      model.ComandaAberta,
		Subtotal:    decimal.Zero,
		Desconto:    decimal.Zero,
		TaxaServico: decimal.Zero,
		Total:       decimal.Zero,
		Observacao:  trimmed(req.Observacao),
		AbertaEm:    time.Now(),
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if mesaID != nil {
			mesa, err := s.mesaRepo.FindByIDTx(tx, *mesaID)
			if err != nil {
				return notFound(err, ErrMesaNaoEncontrada)
			}
			if mesa.Status != model.MesaLivre {
				return ErrMesaIndisponivel
			}
		}
		numero, err := s.repo.NextNumeroTx(tx)
		if err != nil {
			return err
		}
		c.Numero = numero
		if err := s.repo.CreateTx(tx, c); err != nil {
			return err
		}
		if mesaID != nil {
			return s.mesaRepo.UpdateStatusTx(tx, *mesaID, model.MesaOcupada)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either the numero or the one-open-order-per-table index lost a
			// race. Only an order now open on the table means the table index.
			if mesaID != nil {
				if _, ferr := s.repo.FindAbertaByMesa(ctx, *mesaID); ferr == nil {
					return nil, ErrMesaIndisponivel
				}
			}
			return nil, ErrConflitoConcorrente
		}
		return nil, err
	}

	log.Info().Str("comanda_id", c.ID.String()).Int("numero", c.Numero).Str("tipo", c.Tipo).Msg("comanda aberta")
	return s.Obter(ctx, c.ID)
}

// ── AdicionarItem ─────────────────────────────────────────────────────────────
// Snapshot of the current price, stock decrement with a venda movement and the
// recomputed order total all commit together. Stock may go negative.

func (s *comandaService) AdicionarItem(ctx context.Context, req dto.AdicionarItemRequest) (*dto.ComandaResponse, error) {
	comandaID, err := parseID(req.ComandaID, "comanda_id")
	if err != nil {
		return nil, err
	}
	produtoID, err := parseID(req.ProdutoID, "produto_id")
	if err != nil {
		return nil, err
	}
	if req.Quantidade < 1 {
		return nil, invalido("quantidade deve ser maior que zero")
	}

	var estoqueMovido bool
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.abertaTx(tx, comandaID)
		if err != nil {
			return err
		}
		p, err := s.produtoRepo.FindByIDTx(tx, produtoID)
		if err != nil {
			return notFound(err, ErrProdutoNaoEncontrado)
		}
		if !p.Ativo {
			return ErrProdutoInativo
		}

		item := &model.ComandaItem{
			ComandaID:     c.ID,
			ProdutoID:     p.ID,
			Quantidade:    req.Quantidade,
			PrecoUnitario: p.Preco,
			Subtotal:      p.Preco.Mul(decimal.NewFromInt(int64(req.Quantidade))),
			Observacao:    trimmed(req.Observacao),
		}
		if err := s.repo.CreateItemTx(tx, item); err != nil {
			return err
		}

		if p.ControlaEstoque {
			motivo := fmt.Sprintf("Venda comanda #%d", c.Numero)
			if _, err := s.estoque.MovimentarTx(tx, p, model.EstoqueVenda, -req.Quantidade, motivo, &c.ID); err != nil {
				return err
			}
			estoqueMovido = true
		}
		return s.recalcularTx(tx, c)
	})
	if err != nil {
		return nil, err
	}
	if estoqueMovido {
		s.cache.Invalidar(ctx, produtoID)
	}
	return s.Obter(ctx, comandaID)
}

// ── RemoverItem ───────────────────────────────────────────────────────────────

func (s *comandaService) RemoverItem(ctx context.Context, comandaID uuid.UUID, req dto.RemoverItemRequest) (*dto.ComandaResponse, error) {
	itemID, err := parseID(req.ItemID, "item_id")
	if err != nil {
		return nil, err
	}

	var produtoID uuid.UUID
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.abertaTx(tx, comandaID)
		if err != nil {
			return err
		}
		var item *model.ComandaItem
		for i := range c.Itens {
			if c.Itens[i].ID == itemID {
				item = &c.Itens[i]
				break
			}
		}
		if item == nil {
			return ErrItemNaoEncontrado
		}
		produtoID = item.ProdutoID

		if err := s.repo.DeleteItemTx(tx, item.ID); err != nil {
			return err
		}
		motivo := fmt.Sprintf("Item removido da comanda #%d", c.Numero)
		if err := s.devolverEstoqueTx(tx, c, *item, motivo); err != nil {
			return err
		}
		return s.recalcularTx(tx, c)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, produtoID)
	return s.Obter(ctx, comandaID)
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// Status, final total, the cash entrada and the freed table commit together.

func (s *comandaService) Fechar(ctx context.Context, id uuid.UUID, req dto.FecharComandaRequest) (*dto.ComandaResponse, error) {
	if !formaPagamentoValida(req.FormaPagamento) {
		return nil, invalido("forma_pagamento inválida: %s", req.FormaPagamento)
	}
	// Columns hold cents only; total and the cash entrada use the rounded value.
	desconto := req.Desconto.Round(2)
	if desconto.IsNegative() {
		return nil, invalido("desconto não pode ser negativo")
	}

	var numero int
	var total decimal.Decimal
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.abertaTx(tx, id)
		if err != nil {
			return err
		}
		if len(c.Itens) == 0 {
			return ErrComandaSemItens
		}
		subtotal := model.SomaItens(c.Itens)
		if desconto.GreaterThan(subtotal) {
			return invalido("desconto (%s) maior que o total da comanda (%s)", desconto.StringFixed(2), subtotal.StringFixed(2))
		}

		agora := time.Now()
		forma := req.FormaPagamento
		c.Status = model.ComandaFechada
		c.FormaPagamento = &forma
		c.Subtotal = subtotal
		c.Desconto = desconto
		c.TaxaServico = decimal.Zero
		c.Total = subtotal.Sub(desconto)
		c.FechadaEm = &agora
		if err := s.repo.UpdateTx(tx, c); err != nil {
			return err
		}

		var turnoID *uuid.UUID
		turno, err := s.caixaRepo.FindTurnoAbertoTx(tx)
		switch {
		case err == nil:
			turnoID = &turno.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		mov := &model.MovimentoCaixa{
			TurnoID:        turnoID,
			Tipo:           model.CaixaEntrada,
			Valor:          c.Total,
			Descricao:      fmt.Sprintf("Comanda #%d", c.Numero),
			FormaPagamento: forma,
			ComandaID:      &c.ID,
		}
		if err := s.caixaRepo.CreateMovimentoTx(tx, mov); err != nil {
			return err
		}

		if c.MesaID != nil {
			if err := s.mesaRepo.UpdateStatusTx(tx, *c.MesaID, model.MesaLivre); err != nil {
				return err
			}
		}
		numero, total = c.Numero, c.Total
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("comanda_id", id.String()).Int("numero", numero).Str("total", total.StringFixed(2)).
		Str("forma_pagamento", req.FormaPagamento).Msg("comanda fechada")
	return s.Obter(ctx, id)
}

// ── Cancelar ──────────────────────────────────────────────────────────────────

func (s *comandaService) Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarComandaRequest) (*dto.ComandaResponse, error) {
	var produtos []uuid.UUID
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.abertaTx(tx, id)
		if err != nil {
			return err
		}
		produtos, err = s.cancelarTx(tx, c, trimmed(req.Motivo))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, produtos...)
	log.Info().Str("comanda_id", id.String()).Msg("comanda cancelada")
	return s.Obter(ctx, id)
}

// cancelarTx restores stock for every line, marks the order cancelada and
// frees its table. It returns the products whose stock moved.
func (s *comandaService) cancelarTx(tx *gorm.DB, c *model.Comanda, motivo *string) ([]uuid.UUID, error) {
	texto := fmt.Sprintf("Cancelamento comanda #%d", c.Numero)
	var produtos []uuid.UUID
	for _, item := range c.Itens {
		if err := s.devolverEstoqueTx(tx, c, item, texto); err != nil {
			return nil, err
		}
		produtos = append(produtos, item.ProdutoID)
	}

	agora := time.Now()
	c.Status = model.ComandaCancelada
	c.FechadaEm = &agora
	if motivo != nil {
		obs := "Cancelada: " + *motivo
		if c.Observacao != nil && *c.Observacao != "" {
			obs = *c.Observacao + "\n" + obs
		}
		c.Observacao = &obs
	}
	if err := s.repo.UpdateTx(tx, c); err != nil {
		return nil, err
	}
	if c.MesaID != nil {
		if err := s.mesaRepo.UpdateStatusTx(tx, *c.MesaID, model.MesaLivre); err != nil {
			return nil, err
		}
	}
	return produtos, nil
}

// ── Excluir ───────────────────────────────────────────────────────────────────
// Hard delete. An open order is cancelled first so its stock comes back.
// Children go before the parent; stock movements are detached rather than
// deleted so replaying the ledger still reproduces every counter.

func (s *comandaService) Excluir(ctx context.Context, id uuid.UUID) error {
	var produtos []uuid.UUID
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, ErrComandaNaoEncontrada)
		}
		if c.Aberta() {
			if produtos, err = s.cancelarTx(tx, c, nil); err != nil {
				return err
			}
		}
		if err := s.caixaRepo.DeleteMovimentosByComandaTx(tx, id); err != nil {
			return err
		}
		if err := s.movimentoRepo.DetachComandaTx(tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteItensTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidar(ctx, produtos...)
	log.Info().Str("comanda_id", id.String()).Msg("comanda excluída")
	return nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *comandaService) Obter(ctx context.Context, id uuid.UUID) (*dto.ComandaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrComandaNaoEncontrada)
	}
	return comandaToResponse(c), nil
}

func (s *comandaService) AbertaPorMesa(ctx context.Context, mesaID uuid.UUID) (*dto.ComandaResponse, error) {
	c, err := s.repo.FindAbertaByMesa(ctx, mesaID)
	if err != nil {
		return nil, notFound(err, ErrComandaNaoEncontrada)
	}
	return s.Obter(ctx, c.ID)
}

func (s *comandaService) Listar(ctx context.Context, filter dto.ComandaFilter) (*dto.ComandaListResponse, error) {
	page, limit := dto.Page(filter.Page, filter.Limit, 50, 200)
	repoFilter := repository.ComandaFilter{
		Status: filter.Status,
		Tipo:   filter.Tipo,
		Page:   page,
		Limit:  limit,
	}
	if filter.Data != "" {
		de, err := diaLocal(filter.Data)
		if err != nil {
			return nil, err
		}
		ate := de.AddDate(0, 0, 1)
		repoFilter.De, repoFilter.Ate = &de, &ate
	}

	comandas, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ComandaResponse, 0, len(comandas))
	for i := range comandas {
		data = append(data, *comandaToResponse(&comandas[i]))
	}
	return &dto.ComandaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// abertaTx locks the order and checks it still accepts changes.
func (s *comandaService) abertaTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error) {
	c, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		return nil, notFound(err, ErrComandaNaoEncontrada)
	}
	if !c.Aberta() {
		return nil, ErrComandaNaoAberta
	}
	return c, nil
}

// recalcularTx rebuilds the order total from the persisted lines. It is never
// incremented, so concurrent edits cannot drift it.
func (s *comandaService) recalcularTx(tx *gorm.DB, c *model.Comanda) error {
	itens, err := s.repo.ListItensTx(tx, c.ID)
	if err != nil {
		return err
	}
	total := model.SomaItens(itens)
	c.Itens = itens
	c.Subtotal = total
	c.Total = total
	return s.repo.UpdateTx(tx, c)
}

// devolverEstoqueTx returns a line's quantity to stock with a cancelamento
// movement. Products that do not track stock are left alone.
func (s *comandaService) devolverEstoqueTx(tx *gorm.DB, c *model.Comanda, item model.ComandaItem, motivo string) error {
	p, err := s.produtoRepo.FindByIDTx(tx, item.ProdutoID)
	if err != nil {
		return notFound(err, ErrProdutoNaoEncontrado)
	}
	if !p.ControlaEstoque {
		return nil
	}
	_, err = s.estoque.MovimentarTx(tx, p, model.EstoqueCancelamento, item.Quantidade, motivo, &c.ID)
	return err
}

func formaPagamentoValida(forma string) bool {
	for _, f := range model.FormasPagamento {
		if f == forma {
			return true
		}
	}
	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func comandaToResponse(c *model.Comanda) *dto.ComandaResponse {
	resp := &dto.ComandaResponse{
		ID:             c.ID.String(),
		Numero:         c.Numero,
		Tipo:           c.Tipo,
		MesaID:         idPtrString(c.MesaID),
		ClienteID:      idPtrString(c.ClienteID),
		NomeCliente:    c.NomeCliente,
		Status:         c.Status,
		Subtotal:       c.Subtotal,
		Desconto:       c.Desconto,
		TaxaServico:    c.TaxaServico,
		Total:          c.Total,
		FormaPagamento: c.FormaPagamento,
		Observacao:     c.Observacao,
		Itens:          make([]dto.ComandaItemResponse, 0, len(c.Itens)),
		AbertaEm:       formatTime(c.AbertaEm),
		FechadaEm:      formatTimePtr(c.FechadaEm),
	}
	if c.Mesa != nil {
		numero := c.Mesa.Numero
		resp.MesaNumero = &numero
	}
	for _, it := range c.Itens {
		item := dto.ComandaItemResponse{
			ID:            it.ID.String(),
			ProdutoID:     it.ProdutoID.String(),
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			Subtotal:      it.Subtotal,
			Observacao:    it.Observacao,
		}
		if it.Produto != nil {
			item.Produto = it.Produto.Nome
		}
		resp.Itens = append(resp.Itens, item)
	}
	return resp
}
