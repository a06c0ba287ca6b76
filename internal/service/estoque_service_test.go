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

func TestEstoque_EntradaESaida(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Carvão", "25.00", 4)

	mov, err := e.estoque.Entrada(ctx, dto.EntradaEstoqueRequest{ProdutoID: p.ID, Quantidade: 6})
	require.NoError(t, err)
	assert.Equal(t, model.EstoqueEntrada, mov.Tipo)
	assert.Equal(t, 4, mov.EstoqueAnterior)
	assert.Equal(t, 10, mov.EstoquePosterior)
	assert.Equal(t, "Entrada de estoque", mov.Motivo)

	mov, err = e.estoque.RegistrarMovimento(ctx, dto.MovimentoEstoqueRequest{
		ProdutoID: p.ID, Tipo: model.EstoqueSaida, Quantidade: 3, Motivo: "quebra",
	})
	require.NoError(t, err)
	assert.Equal(t, -3, mov.Quantidade)
	assert.Equal(t, 7, e.estoqueAtual(t, p.ID))
	e.requireLedgerConsistente(t)
}

func TestEstoque_AjusteGravaDelta(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Carvão", "25.00", 10)

	mov, err := e.estoque.Ajuste(ctx, dto.AjusteEstoqueRequest{ProdutoID: p.ID, NovaQuantidade: 7, Motivo: "contagem"})
	require.NoError(t, err)
	assert.Equal(t, -3, mov.Quantidade)
	assert.Equal(t, 10, mov.EstoqueAnterior)
	assert.Equal(t, 7, mov.EstoquePosterior)
	assert.Equal(t, 7, e.estoqueAtual(t, p.ID))

	_, err = e.estoque.Ajuste(ctx, dto.AjusteEstoqueRequest{ProdutoID: p.ID, NovaQuantidade: 7, Motivo: "  "})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	e.requireLedgerConsistente(t)
}

func TestEstoque_ProdutoSemControle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sem := false
	p, err := e.produtos.Criar(ctx, dto.CriarProdutoRequest{Nome: "Taxa", Preco: dec("5"), Categoria: "Serviço", ControlaEstoque: &sem})
	require.NoError(t, err)

	_, err = e.estoque.Entrada(ctx, dto.EntradaEstoqueRequest{ProdutoID: p.ID, Quantidade: 1})
	assert.ErrorIs(t, err, ErrProdutoSemControle)

	_, err = e.estoque.Entrada(ctx, dto.EntradaEstoqueRequest{ProdutoID: uuid.NewString(), Quantidade: 1})
	assert.ErrorIs(t, err, ErrProdutoNaoEncontrado)
}

func TestEstoque_ReconciliarDetectaECorrige(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.criarProduto(t, "Carvão", "25.00", 10)
	ok := e.criarProduto(t, "Sal grosso", "4.00", 3)

	// Drift the counter behind the ledger's back.
	require.NoError(t, e.db.Model(&model.Produto{}).Where("id = ?", uuid.MustParse(p.ID)).
		Update("estoque_atual", 13).Error)

	r, err := e.estoque.Reconciliar(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Verificados)
	require.Len(t, r.Divergencias, 1)
	d := r.Divergencias[0]
	assert.Equal(t, p.ID, d.ProdutoID)
	assert.Equal(t, 13, d.EstoqueAtual)
	assert.Equal(t, 10, d.EstoqueLedger)
	assert.Equal(t, 3, d.Diferenca)
	assert.False(t, r.Corrigido)
	assert.Equal(t, 13, e.estoqueAtual(t, p.ID))

	r, err = e.estoque.Reconciliar(ctx, true)
	require.NoError(t, err)
	assert.True(t, r.Corrigido)
	assert.Equal(t, 10, e.estoqueAtual(t, p.ID))
	assert.Equal(t, 3, e.estoqueAtual(t, ok.ID))

	n, err := e.movimentoRepo.CountByProduto(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "correction must not append a movement")
	e.requireLedgerConsistente(t)
}

func TestEstoque_AlertasEMovimentos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	baixo := e.criarProduto(t, "Limão", "1.00", 1)
	e.criarProduto(t, "Cebola", "1.00", 50)

	alertas, err := e.estoque.Alertas(ctx)
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, baixo.ID, alertas[0].ProdutoID)

	list, err := e.estoque.ListarMovimentos(ctx, dto.MovimentoEstoqueFilter{ProdutoID: baixo.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, "Limão", list.Data[0].Produto)
	assert.Equal(t, "Estoque inicial", list.Data[0].Motivo)

	list, err = e.estoque.ListarMovimentos(ctx, dto.MovimentoEstoqueFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
}
