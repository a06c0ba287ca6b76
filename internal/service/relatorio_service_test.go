package service

import (
	"context"
	"testing"

	"comanda/internal/dto"
	"comanda/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) venderEFechar(t *testing.T, produtoID string, qtd int, forma, desconto string) *dto.ComandaResponse {
	t.Helper()
	ctx := context.Background()
	c := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: produtoID, Quantidade: qtd})
	require.NoError(t, err)
	c, err = e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{FormaPagamento: forma, Desconto: dec(desconto)})
	require.NoError(t, err)
	return c
}

func TestRelatorio_VendasDoDia(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	espeto := e.criarProduto(t, "Espetinho", "8.00", 50)
	cerveja := e.criarProduto(t, "Cerveja", "12.00", 50)

	e.venderEFechar(t, espeto.ID, 3, model.PagamentoPix, "0")
	e.venderEFechar(t, cerveja.ID, 1, model.PagamentoDinheiro, "2")

	cancelada := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: cancelada.ID, ProdutoID: cerveja.ID, Quantidade: 5})
	require.NoError(t, err)
	_, err = e.comandas.Cancelar(ctx, uuid.MustParse(cancelada.ID), dto.CancelarComandaRequest{})
	require.NoError(t, err)
	e.abrirBalcao(t) // still open, not reported

	r, err := e.relatorios.Vendas(ctx, dto.RelatorioVendasFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.ComandasFechadas)
	assert.Equal(t, 1, r.ComandasCanceladas)
	assert.Equal(t, "36.00", r.Bruto.StringFixed(2))
	assert.Equal(t, "2.00", r.Descontos.StringFixed(2))
	assert.Equal(t, "34.00", r.Liquido.StringFixed(2))
	assert.Equal(t, "17.00", r.TicketMedio.StringFixed(2))
	assert.Equal(t, "24.00", r.PorFormaPagamento[model.PagamentoPix].StringFixed(2))
	assert.Equal(t, "10.00", r.PorFormaPagamento[model.PagamentoDinheiro].StringFixed(2))
	assert.True(t, r.PorFormaPagamento[model.PagamentoCredito].IsZero())
	assert.Equal(t, 2, r.PorTipo[model.TipoBalcao])

	require.Len(t, r.MaisVendidos, 2)
	assert.Equal(t, "Espetinho", r.MaisVendidos[0].Nome)
	assert.Equal(t, 3, r.MaisVendidos[0].Quantidade)
	assert.Equal(t, "Cerveja", r.MaisVendidos[1].Nome)
	assert.Equal(t, 1, r.MaisVendidos[1].Quantidade)
}

func TestRelatorio_VendasIntervaloInvalido(t *testing.T) {
	e := newEnv(t)
	var ve *ValidationError

	_, err := e.relatorios.Vendas(context.Background(), dto.RelatorioVendasFilter{De: "2026-10-10", Ate: "2026-10-01"})
	assert.ErrorAs(t, err, &ve)

	_, err = e.relatorios.Vendas(context.Background(), dto.RelatorioVendasFilter{De: "ontem"})
	assert.ErrorAs(t, err, &ve)

	r, err := e.relatorios.Vendas(context.Background(), dto.RelatorioVendasFilter{De: "2020-01-01", Ate: "2020-01-31"})
	require.NoError(t, err)
	assert.Zero(t, r.ComandasFechadas)
	assert.True(t, r.TicketMedio.IsZero())
	assert.Empty(t, r.MaisVendidos)
}

func TestRelatorio_Turno(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.empresa.Atualizar(ctx, dto.AtualizarEmpresaRequest{Nome: "Bar do Zé"})
	require.NoError(t, err)
	turno, err := e.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorAbertura: dec("100")})
	require.NoError(t, err)
	p := e.criarProduto(t, "Espetinho", "8.00", 50)
	e.venderEFechar(t, p.ID, 2, model.PagamentoDebito, "0")
	_, err = e.caixa.Fechar(ctx, dto.FecharCaixaRequest{ValorFechamento: dec("116")})
	require.NoError(t, err)

	rel, err := e.relatorios.Turno(ctx, uuid.MustParse(turno.ID))
	require.NoError(t, err)
	require.NotNil(t, rel.Empresa)
	assert.Equal(t, "Bar do Zé", rel.Empresa.Nome)
	assert.Equal(t, 1, rel.ComandasFechadas)
	assert.Equal(t, "116.00", rel.Turno.SaldoEsperado.StringFixed(2))
	require.NotNil(t, rel.Turno.Diferenca)
	assert.True(t, rel.Turno.Diferenca.IsZero())
	require.Len(t, rel.MaisVendidos, 1)
	assert.Equal(t, "16.00", rel.MaisVendidos[0].Valor.StringFixed(2))

	_, err = e.relatorios.Turno(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCaixaNaoEncontrado)
}
