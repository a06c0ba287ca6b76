package service

import (
	"context"
	"sort"
	"time"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maisVendidosLimite = 10

type RelatorioService interface {
	// Vendas aggregates the orders finished between de and ate, both
	// inclusive calendar days (YYYY-MM-DD). Empty de means today.
	Vendas(ctx context.Context, filter dto.RelatorioVendasFilter) (*dto.RelatorioVendasResponse, error)
	Turno(ctx context.Context, turnoID uuid.UUID) (*dto.RelatorioTurnoResponse, error)
}

type relatorioService struct {
	comandaRepo repository.ComandaRepository
	caixaRepo   repository.CaixaRepository
	empresaRepo repository.EmpresaRepository
}

func NewRelatorioService(
	comandaRepo repository.ComandaRepository,
	caixaRepo repository.CaixaRepository,
	empresaRepo repository.EmpresaRepository,
) RelatorioService {
	return &relatorioService{comandaRepo: comandaRepo, caixaRepo: caixaRepo, empresaRepo: empresaRepo}
}

func (s *relatorioService) Vendas(ctx context.Context, filter dto.RelatorioVendasFilter) (*dto.RelatorioVendasResponse, error) {
	de := hoje()
	if filter.De != "" {
		d, err := diaLocal(filter.De)
		if err != nil {
			return nil, err
		}
		de = d
	}
	ate := de
	if filter.Ate != "" {
		d, err := diaLocal(filter.Ate)
		if err != nil {
			return nil, err
		}
		ate = d
	}
	if ate.Before(de) {
		return nil, invalido("ate deve ser igual ou posterior a de")
	}

	comandas, err := s.comandaRepo.ListEncerradasEntre(ctx, de, ate.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	resp := &dto.RelatorioVendasResponse{
		De:                de.Format("2006-01-02"),
		Ate:               ate.Format("2006-01-02"),
		Bruto:             decimal.Zero,
		Descontos:         decimal.Zero,
		Liquido:           decimal.Zero,
		TicketMedio:       decimal.Zero,
		PorFormaPagamento: make(map[string]decimal.Decimal, len(model.FormasPagamento)),
		PorTipo:           map[string]int{model.TipoMesa: 0, model.TipoBalcao: 0, model.TipoDelivery: 0},
	}
	for _, f := range model.FormasPagamento {
		resp.PorFormaPagamento[f] = decimal.Zero
	}

	fechadas := make([]model.Comanda, 0, len(comandas))
	for _, c := range comandas {
		if c.Status == model.ComandaCancelada {
			resp.ComandasCanceladas++
			continue
		}
		fechadas = append(fechadas, c)
		resp.ComandasFechadas++
		resp.Bruto = resp.Bruto.Add(c.Subtotal)
		resp.Descontos = resp.Descontos.Add(c.Desconto)
		resp.Liquido = resp.Liquido.Add(c.Total)
		if c.FormaPagamento != nil {
			resp.PorFormaPagamento[*c.FormaPagamento] = resp.PorFormaPagamento[*c.FormaPagamento].Add(c.Total)
		}
		resp.PorTipo[c.Tipo]++
	}
	if resp.ComandasFechadas > 0 {
		resp.TicketMedio = resp.Liquido.Div(decimal.NewFromInt(int64(resp.ComandasFechadas))).Round(2)
	}
	resp.MaisVendidos = maisVendidos(fechadas, maisVendidosLimite)
	return resp, nil
}

func (s *relatorioService) Turno(ctx context.Context, turnoID uuid.UUID) (*dto.RelatorioTurnoResponse, error) {
	turno, err := s.caixaRepo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		return nil, notFound(err, ErrCaixaNaoEncontrado)
	}
	fim := time.Now()
	if turno.FechadoEm != nil {
		fim = *turno.FechadoEm
	}
	comandas, err := s.comandaRepo.ListEncerradasEntre(ctx, turno.AbertoEm, fim.Add(time.Second))
	if err != nil {
		return nil, err
	}

	resp := &dto.RelatorioTurnoResponse{
		Turno:    turnoToResponse(turno, true),
		GeradoEm: formatTime(time.Now()),
	}
	fechadas := make([]model.Comanda, 0, len(comandas))
	for _, c := range comandas {
		if c.Status == model.ComandaCancelada {
			resp.ComandasCanceladas++
			continue
		}
		fechadas = append(fechadas, c)
	}
	resp.ComandasFechadas = len(fechadas)
	resp.MaisVendidos = maisVendidos(fechadas, maisVendidosLimite)

	if e, err := s.empresaRepo.Get(ctx); err == nil {
		resp.Empresa = empresaToResponse(e)
	}
	return resp, nil
}

// maisVendidos ranks products by quantity sold over the given orders, ties
// broken by name.
func maisVendidos(comandas []model.Comanda, limite int) []dto.ProdutoVendido {
	acumulado := make(map[uuid.UUID]*dto.ProdutoVendido)
	for _, c := range comandas {
		for _, it := range c.Itens {
			pv, ok := acumulado[it.ProdutoID]
			if !ok {
				pv = &dto.ProdutoVendido{ProdutoID: it.ProdutoID.String(), Valor: decimal.Zero}
				if it.Produto != nil {
					pv.Nome = it.Produto.Nome
				}
				acumulado[it.ProdutoID] = pv
			}
			pv.Quantidade += it.Quantidade
			pv.Valor = pv.Valor.Add(it.Subtotal)
		}
	}

	ranking := make([]dto.ProdutoVendido, 0, len(acumulado))
	for _, pv := range acumulado {
		ranking = append(ranking, *pv)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantidade != ranking[j].Quantidade {
			return ranking[i].Quantidade > ranking[j].Quantidade
		}
		return ranking[i].Nome < ranking[j].Nome
	})
	if len(ranking) > limite {
		ranking = ranking[:limite]
	}
	return ranking
}
