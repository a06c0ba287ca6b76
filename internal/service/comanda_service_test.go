package service

import (
	"context"
	"testing"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestComanda_AdicionarERemoverItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	espetinho := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)

	c, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{
		ComandaID: c.ID, ProdutoID: espetinho.ID, Quantidade: 2,
	})
	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, "16.00", c.Total.StringFixed(2))
	assert.Equal(t, "16.00", c.Subtotal.StringFixed(2))
	assert.Equal(t, "8.00", c.Itens[0].PrecoUnitario.StringFixed(2))
	assert.Equal(t, "Espetinho", c.Itens[0].Produto)
	assert.Equal(t, 8, e.estoqueAtual(t, espetinho.ID))

	c, err = e.comandas.RemoverItem(ctx, uuid.MustParse(c.ID), dto.RemoverItemRequest{ItemID: c.Itens[0].ID})
	require.NoError(t, err)
	assert.Empty(t, c.Itens)
	assert.True(t, c.Total.IsZero())
	assert.Equal(t, 10, e.estoqueAtual(t, espetinho.ID))
	e.requireLedgerConsistente(t)
}

func TestComanda_PrecoCongeladoNoItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Refrigerante", "6.00", 20)
	c := e.abrirBalcao(t)

	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
	require.NoError(t, err)

	novo := dec("7.50")
	_, err = e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, Preco: &novo})
	require.NoError(t, err)

	c, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
	require.NoError(t, err)
	require.Len(t, c.Itens, 2)
	assert.Equal(t, "6.00", c.Itens[0].PrecoUnitario.StringFixed(2))
	assert.Equal(t, "7.50", c.Itens[1].PrecoUnitario.StringFixed(2))
	assert.Equal(t, "13.50", c.Total.StringFixed(2))
}

func TestComanda_EstoquePodeFicarNegativo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Cerveja", "12.00", 1)
	c := e.abrirBalcao(t)

	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 3})
	require.NoError(t, err)
	assert.Equal(t, -2, e.estoqueAtual(t, p.ID))
	e.requireLedgerConsistente(t)
}

func TestComanda_ProdutoSemControleNaoMovimentaEstoque(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sem := false
	p, err := e.produtos.Criar(ctx, dto.CriarProdutoRequest{
		Nome: "Porção", Preco: dec("30"), Categoria: "Cozinha", ControlaEstoque: &sem,
	})
	require.NoError(t, err)
	c := e.abrirBalcao(t)

	_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 2})
	require.NoError(t, err)
	n, err := e.movimentoRepo.CountByProduto(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 0, e.estoqueAtual(t, p.ID))
}

func TestComanda_ProdutoInativoRejeitado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Suco", "9.00", 5)
	inativo := false
	_, err := e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, Ativo: &inativo})
	require.NoError(t, err)
	c := e.abrirBalcao(t)

	_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
	assert.ErrorIs(t, err, ErrProdutoInativo)
	assert.Equal(t, 5, e.estoqueAtual(t, p.ID))
}

func TestComanda_AbrirMesaOcupaEFecharLibera(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorAbertura: dec("50")})
	require.NoError(t, err)

	mesa := e.criarMesa(t, 7)
	p := e.criarProduto(t, "Espetinho", "8.00", 10)

	c, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
	require.NoError(t, err)
	require.NotNil(t, c.MesaNumero)
	assert.Equal(t, 7, *c.MesaNumero)

	m, err := e.mesaRepo.FindByID(ctx, uuid.MustParse(mesa.ID))
	require.NoError(t, err)
	assert.Equal(t, model.MesaOcupada, m.Status)

	_, err = e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
	assert.ErrorIs(t, err, ErrMesaIndisponivel)

	_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 2})
	require.NoError(t, err)

	c, err = e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{
		FormaPagamento: model.PagamentoPix, Desconto: dec("1.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComandaFechada, c.Status)
	assert.Equal(t, "16.00", c.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", c.Total.StringFixed(2))
	require.NotNil(t, c.FormaPagamento)
	assert.Equal(t, model.PagamentoPix, *c.FormaPagamento)
	assert.NotNil(t, c.FechadaEm)

	m, err = e.mesaRepo.FindByID(ctx, uuid.MustParse(mesa.ID))
	require.NoError(t, err)
	assert.Equal(t, model.MesaLivre, m.Status)

	turno, err := e.caixa.Atual(ctx)
	require.NoError(t, err)
	require.Len(t, turno.Movimentos, 1)
	mov := turno.Movimentos[0]
	assert.Equal(t, model.CaixaEntrada, mov.Tipo)
	assert.Equal(t, "15.00", mov.Valor.StringFixed(2))
	require.NotNil(t, mov.ComandaID)
	assert.Equal(t, c.ID, *mov.ComandaID)
	assert.Equal(t, "65.00", turno.SaldoEsperado.StringFixed(2))
	assert.Equal(t, "15.00", turno.PorFormaPagamento[model.PagamentoPix].StringFixed(2))
}

func TestComanda_FecharSemCaixaAbertoRegistraMovimentoAvulso(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
	require.NoError(t, err)

	_, err = e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{FormaPagamento: model.PagamentoDinheiro})
	require.NoError(t, err)

	var movs []model.MovimentoCaixa
	require.NoError(t, e.db.Where("comanda_id = ?", uuid.MustParse(c.ID)).Find(&movs).Error)
	require.Len(t, movs, 1)
	assert.Nil(t, movs[0].TurnoID)
}

func TestComanda_FecharRegras(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)

	t.Run("sem itens", func(t *testing.T) {
		c := e.abrirBalcao(t)
		_, err := e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{FormaPagamento: model.PagamentoPix})
		assert.ErrorIs(t, err, ErrComandaSemItens)
	})

	t.Run("desconto maior que o total", func(t *testing.T) {
		c := e.abrirBalcao(t)
		_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
		require.NoError(t, err)
		_, err = e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{
			FormaPagamento: model.PagamentoPix, Desconto: dec("8.01"),
		})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("forma de pagamento invalida", func(t *testing.T) {
		c := e.abrirBalcao(t)
		_, err := e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{FormaPagamento: "cheque"})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("comanda ja fechada", func(t *testing.T) {
		c := e.abrirBalcao(t)
		_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
		require.NoError(t, err)
		id := uuid.MustParse(c.ID)
		_, err = e.comandas.Fechar(ctx, id, dto.FecharComandaRequest{FormaPagamento: model.PagamentoDebito})
		require.NoError(t, err)

		_, err = e.comandas.Fechar(ctx, id, dto.FecharComandaRequest{FormaPagamento: model.PagamentoDebito})
		assert.ErrorIs(t, err, ErrComandaNaoAberta)
		_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
		assert.ErrorIs(t, err, ErrComandaNaoAberta)
	})
}

func TestComanda_AbrirValidacoes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoDelivery})
	assert.ErrorAs(t, err, &ve)

	c, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoDelivery, NomeCliente: strPtr("  Ana  ")})
	require.NoError(t, err)
	require.NotNil(t, c.NomeCliente)
	assert.Equal(t, "Ana", *c.NomeCliente)

	outra := uuid.NewString()
	_, err = e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &outra})
	assert.ErrorIs(t, err, ErrMesaNaoEncontrada)
}

func TestComanda_DeliveryCopiaNomeDoCliente(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cli, err := e.clientes.Criar(ctx, dto.CriarClienteRequest{Nome: "João", Telefone: strPtr("11999990000")})
	require.NoError(t, err)

	c, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoDelivery, ClienteID: &cli.ID})
	require.NoError(t, err)
	require.NotNil(t, c.NomeCliente)
	assert.Equal(t, "João", *c.NomeCliente)
	require.NotNil(t, c.ClienteID)
	assert.Equal(t, cli.ID, *c.ClienteID)
}

func TestComanda_NumeracaoSequencial(t *testing.T) {
	e := newEnv(t)
	a := e.abrirBalcao(t)
	b := e.abrirBalcao(t)
	assert.Equal(t, 1, a.Numero)
	assert.Equal(t, 2, b.Numero)
}

func TestComanda_CancelarDevolveEstoqueELiberaMesa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mesa := e.criarMesa(t, 3)
	p := e.criarProduto(t, "Espetinho", "8.00", 10)

	c, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID, Observacao: strPtr("janela")})
	require.NoError(t, err)
	_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, e.estoqueAtual(t, p.ID))

	c, err = e.comandas.Cancelar(ctx, uuid.MustParse(c.ID), dto.CancelarComandaRequest{Motivo: strPtr("cliente desistiu")})
	require.NoError(t, err)
	assert.Equal(t, model.ComandaCancelada, c.Status)
	require.NotNil(t, c.Observacao)
	assert.Equal(t, "janela\nCancelada: cliente desistiu", *c.Observacao)
	assert.Equal(t, 10, e.estoqueAtual(t, p.ID))

	m, err := e.mesaRepo.FindByID(ctx, uuid.MustParse(mesa.ID))
	require.NoError(t, err)
	assert.Equal(t, model.MesaLivre, m.Status)

	_, err = e.comandas.Cancelar(ctx, uuid.MustParse(c.ID), dto.CancelarComandaRequest{})
	assert.ErrorIs(t, err, ErrComandaNaoAberta)
	e.requireLedgerConsistente(t)
}

func TestComanda_ExcluirAbertaDevolveEstoque(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 3})
	require.NoError(t, err)

	id := uuid.MustParse(c.ID)
	require.NoError(t, e.comandas.Excluir(ctx, id))
	assert.Equal(t, 10, e.estoqueAtual(t, p.ID))

	_, err = e.comandas.Obter(ctx, id)
	assert.ErrorIs(t, err, ErrComandaNaoEncontrada)

	movs, err := e.movimentoRepo.ListByProduto(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	require.Len(t, movs, 3) // inicial, venda, cancelamento
	for _, m := range movs {
		assert.Nil(t, m.ComandaID)
	}
	e.requireLedgerConsistente(t)

	assert.ErrorIs(t, e.comandas.Excluir(ctx, id), ErrComandaNaoEncontrada)
}

func TestComanda_ExcluirFechadaRemoveMovimentoDeCaixa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorAbertura: decimal.Zero})
	require.NoError(t, err)
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)
	_, err = e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 1})
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)
	_, err = e.comandas.Fechar(ctx, id, dto.FecharComandaRequest{FormaPagamento: model.PagamentoCredito})
	require.NoError(t, err)

	require.NoError(t, e.comandas.Excluir(ctx, id))

	turno, err := e.caixa.Atual(ctx)
	require.NoError(t, err)
	assert.Empty(t, turno.Movimentos)
	assert.True(t, turno.SaldoEsperado.IsZero())
	// A closed order keeps its sale: stock is not restored.
	assert.Equal(t, 9, e.estoqueAtual(t, p.ID))
	e.requireLedgerConsistente(t)
}

func TestComanda_RemoverItemDeOutraComanda(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	a := e.abrirBalcao(t)
	b := e.abrirBalcao(t)
	a, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: a.ID, ProdutoID: p.ID, Quantidade: 1})
	require.NoError(t, err)

	_, err = e.comandas.RemoverItem(ctx, uuid.MustParse(b.ID), dto.RemoverItemRequest{ItemID: a.Itens[0].ID})
	assert.ErrorIs(t, err, ErrItemNaoEncontrado)
	assert.Equal(t, 9, e.estoqueAtual(t, p.ID))
}

func TestComanda_ListarEAbertaPorMesa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mesa := e.criarMesa(t, 1)
	c, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
	require.NoError(t, err)
	e.abrirBalcao(t)

	aberta, err := e.comandas.AbertaPorMesa(ctx, uuid.MustParse(mesa.ID))
	require.NoError(t, err)
	assert.Equal(t, c.ID, aberta.ID)

	list, err := e.comandas.Listar(ctx, dto.ComandaFilter{Status: model.ComandaAberta})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, 2, list.Data[0].Numero)

	list, err = e.comandas.Listar(ctx, dto.ComandaFilter{Tipo: model.TipoMesa})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	_, err = e.comandas.Listar(ctx, dto.ComandaFilter{Data: "19/10/2026"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestComanda_FecharArredondaDescontoParaCentavos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 2})
	require.NoError(t, err)

	c, err = e.comandas.Fechar(ctx, uuid.MustParse(c.ID), dto.FecharComandaRequest{
		FormaPagamento: model.PagamentoPix, Desconto: dec("0.005"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.01", c.Desconto.String())
	assert.Equal(t, "15.99", c.Total.String())

	var movs []model.MovimentoCaixa
	require.NoError(t, e.db.Where("comanda_id = ?", uuid.MustParse(c.ID)).Find(&movs).Error)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Valor.Equal(c.Subtotal.Sub(c.Desconto)), "entrada %s", movs[0].Valor)
	assert.True(t, movs[0].Valor.Equal(c.Total))
}

// numeroRepetido hands out a numero that is already taken.
type numeroRepetido struct{ repository.ComandaRepository }

func (numeroRepetido) NextNumeroTx(*gorm.DB) (int, error) { return 1, nil }

func TestComanda_AbrirDistingueConflitoDeNumeroEDeMesa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.abrirBalcao(t)

	t.Run("numero repetido", func(t *testing.T) {
		mesa := e.criarMesa(t, 1)
		comandas := NewComandaService(numeroRepetido{e.comandaRepo}, e.mesaRepo, e.produtoRepo,
			repository.NewClienteRepository(e.db), e.caixaRepo, e.movimentoRepo, e.estoque, nil)

		_, err := comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
		assert.ErrorIs(t, err, ErrConflitoConcorrente)

		m, err := e.mesaRepo.FindByID(ctx, uuid.MustParse(mesa.ID))
		require.NoError(t, err)
		assert.Equal(t, model.MesaLivre, m.Status)
	})

	t.Run("mesa ja tem comanda aberta", func(t *testing.T) {
		mesa := e.criarMesa(t, 2)
		_, err := e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
		require.NoError(t, err)
		// Table flagged free while its order is still open: only the index catches it.
		require.NoError(t, e.db.Model(&model.Mesa{}).Where("id = ?", uuid.MustParse(mesa.ID)).
			Update("status", model.MesaLivre).Error)

		_, err = e.comandas.Abrir(ctx, dto.AbrirComandaRequest{Tipo: model.TipoMesa, MesaID: &mesa.ID})
		assert.ErrorIs(t, err, ErrMesaIndisponivel)
	})
}

func TestComanda_CancelarAposTentarDesligarControleDevolveEstoque(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)
	c := e.abrirBalcao(t)
	_, err := e.comandas.AdicionarItem(ctx, dto.AdicionarItemRequest{ComandaID: c.ID, ProdutoID: p.ID, Quantidade: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, e.estoqueAtual(t, p.ID))

	sem := false
	_, err = e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, ControlaEstoque: &sem})
	assert.ErrorIs(t, err, ErrProdutoEmComandaAberta)

	_, err = e.comandas.Cancelar(ctx, uuid.MustParse(c.ID), dto.CancelarComandaRequest{})
	require.NoError(t, err)
	assert.Equal(t, 10, e.estoqueAtual(t, p.ID))
	e.requireLedgerConsistente(t)

	// With no open order left the flag may change.
	got, err := e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, ControlaEstoque: &sem})
	require.NoError(t, err)
	assert.False(t, got.ControlaEstoque)
}
