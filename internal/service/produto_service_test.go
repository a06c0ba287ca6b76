package service

import (
	"context"
	"testing"

	"comanda/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduto_CriarRegistraEstoqueInicial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "  Espetinho  ", "8.005", 10)
	assert.Equal(t, "Espetinho", p.Nome)
	assert.Equal(t, "8.01", p.Preco.StringFixed(2))
	assert.Equal(t, 10, p.EstoqueAtual)
	assert.True(t, p.ControlaEstoque)

	movs, err := e.movimentoRepo.ListByProduto(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 10, movs[0].Quantidade)

	_, err = e.produtos.Criar(ctx, dto.CriarProdutoRequest{Nome: "Grátis", Preco: dec("0"), Categoria: "x"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestProduto_AtualizarNaoMexeNoEstoque(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)

	nome := "Espetinho de carne"
	minimo := 5
	got, err := e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, Nome: &nome, EstoqueMinimo: &minimo})
	require.NoError(t, err)
	assert.Equal(t, nome, got.Nome)
	assert.Equal(t, 10, e.estoqueAtual(t, p.ID))

	_, err = e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: uuid.NewString(), Nome: &nome})
	assert.ErrorIs(t, err, ErrProdutoNaoEncontrado)
}

func TestProduto_ExcluirSemHistoricoRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Novo", "3.00", 0)

	removido, err := e.produtos.Excluir(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.True(t, removido)

	_, err = e.produtos.Obter(ctx, uuid.MustParse(p.ID))
	assert.ErrorIs(t, err, ErrProdutoNaoEncontrado)
}

func TestProduto_ExcluirComHistoricoDesativa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Espetinho", "8.00", 10)

	removido, err := e.produtos.Excluir(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.False(t, removido)

	got, err := e.produtos.Obter(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.False(t, got.Ativo)
	assert.Equal(t, 10, got.EstoqueAtual)

	list, err := e.produtos.Listar(ctx, dto.ProdutoFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	list, err = e.produtos.Listar(ctx, dto.ProdutoFilter{Ativo: "all"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestProduto_ListarFiltraEPagina(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.criarProduto(t, "Espetinho de frango", "8.00", 1)
	e.criarProduto(t, "Espetinho de carne", "9.00", 1)
	e.criarProduto(t, "Pão de alho", "6.00", 1)

	list, err := e.produtos.Listar(ctx, dto.ProdutoFilter{Nome: "espetinho", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Espetinho de carne", list.Data[0].Nome)
}

func TestProduto_CriarSemControleRejeitaEstoqueInicial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sem := false

	_, err := e.produtos.Criar(ctx, dto.CriarProdutoRequest{
		Nome: "Porção", Preco: dec("30"), Categoria: "Cozinha", ControlaEstoque: &sem, EstoqueInicial: 5,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Msg, "estoque_inicial")

	p, err := e.produtos.Criar(ctx, dto.CriarProdutoRequest{
		Nome: "Porção", Preco: dec("30"), Categoria: "Cozinha", ControlaEstoque: &sem,
	})
	require.NoError(t, err)
	assert.False(t, p.ControlaEstoque)
}

func TestProduto_AtualizarControleBloqueadoComComandaAberta(t *testing.T) {
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

	com := true
	_, err = e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, ControlaEstoque: &com})
	assert.ErrorIs(t, err, ErrProdutoEmComandaAberta)

	// Other fields and an unchanged flag still go through.
	nome := "Porção grande"
	got, err := e.produtos.Atualizar(ctx, dto.AtualizarProdutoRequest{ID: p.ID, Nome: &nome, ControlaEstoque: &sem})
	require.NoError(t, err)
	assert.Equal(t, nome, got.Nome)

	_, err = e.comandas.Cancelar(ctx, uuid.MustParse(c.ID), dto.CancelarComandaRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, e.estoqueAtual(t, p.ID))
	e.requireLedgerConsistente(t)
}
