package repository

import (
	"context"
	"testing"
	"time"

	"comanda/internal/model"
	"comanda/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func novaComanda(numero int, mesaID *uuid.UUID, status string) *model.Comanda {
	return &model.Comanda{
		Numero:      numero,
		Tipo:        model.TipoMesa,
		MesaID:      mesaID,
		Status:      status,
		Subtotal:    decimal.Zero,
		Desconto:    decimal.Zero,
		TaxaServico: decimal.Zero,
		Total:       decimal.Zero,
		AbertaEm:    time.Now(),
	}
}

func TestComandaRepo_NextNumero(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewComandaRepository(db)

	n, err := repo.NextNumeroTx(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.CreateTx(db, novaComanda(41, nil, model.ComandaFechada)))
	n, err = repo.NextNumeroTx(db)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	err = repo.CreateTx(db, novaComanda(41, nil, model.ComandaAberta))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestComandaRepo_UmaComandaAbertaPorMesa(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewComandaRepository(db)
	mesa := uuid.New()

	require.NoError(t, repo.CreateTx(db, novaComanda(1, &mesa, model.ComandaAberta)))
	err := repo.CreateTx(db, novaComanda(2, &mesa, model.ComandaAberta))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Closed orders on the same table are unrestricted.
	require.NoError(t, repo.CreateTx(db, novaComanda(3, &mesa, model.ComandaFechada)))
	require.NoError(t, repo.CreateTx(db, novaComanda(4, &mesa, model.ComandaCancelada)))

	n, err := repo.CountByMesa(context.Background(), mesa)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestComandaRepo_ListEncerradasEntre(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewComandaRepository(db)
	ctx := context.Background()
	agora := time.Now()
	ontem := agora.Add(-24 * time.Hour)

	fechadaHoje := novaComanda(1, nil, model.ComandaFechada)
	fechadaHoje.FechadaEm = &agora
	fechadaOntem := novaComanda(2, nil, model.ComandaFechada)
	fechadaOntem.FechadaEm = &ontem
	canceladaHoje := novaComanda(3, nil, model.ComandaCancelada)
	canceladaHoje.FechadaEm = &agora
	for _, c := range []*model.Comanda{fechadaHoje, fechadaOntem, canceladaHoje, novaComanda(4, nil, model.ComandaAberta)} {
		require.NoError(t, repo.CreateTx(db, c))
	}

	got, err := repo.ListEncerradasEntre(ctx, agora.Add(-time.Hour), agora.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []uuid.UUID{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{fechadaHoje.ID, canceladaHoje.ID}, ids)
}

func TestProdutoRepo_UpdatePreservaEstoque(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProdutoRepository(db)
	ctx := context.Background()

	p := &model.Produto{Nome: "Espetinho", Preco: decimal.NewFromInt(8), Categoria: "Espetos", ControlaEstoque: true, Ativo: true}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.SetEstoqueTx(db, p.ID, 10))

	// p still carries the stale counter (0).
	p.Nome = "Espetinho de carne"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espetinho de carne", got.Nome)
	assert.Equal(t, 10, got.EstoqueAtual)
}

func TestMovimentoEstoqueRepo_SomasEDetach(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovimentoEstoqueRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	comanda := uuid.New()

	movs := []*model.MovimentoEstoque{
		{ProdutoID: a, Tipo: model.EstoqueEntrada, Quantidade: 10},
		{ProdutoID: a, Tipo: model.EstoqueVenda, Quantidade: -3, ComandaID: &comanda},
		{ProdutoID: b, Tipo: model.EstoqueEntrada, Quantidade: 4},
	}
	for _, m := range movs {
		require.NoError(t, repo.CreateTx(db, m))
	}

	somas, err := repo.SomaPorProduto(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, somas[a])
	assert.Equal(t, 4, somas[b])

	soma, err := repo.SomaProdutoTx(db, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, soma)

	require.NoError(t, repo.DetachComandaTx(db, comanda))
	list, total, err := repo.List(ctx, MovimentoEstoqueFilter{ProdutoID: &a})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, m := range list {
		assert.Nil(t, m.ComandaID)
	}
}

func TestUsuarioRepo_EmailSemCaixaEList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUsuarioRepository(db)
	ctx := context.Background()

	admin := &model.Usuario{Email: "Admin@Bar.com", Nome: "Admin", PasswordHash: "x", Papel: model.PapelAdmin, Ativo: true}
	garcom := &model.Usuario{Email: "garcom@bar.com", Nome: "Garçom", PasswordHash: "x", Papel: model.PapelGarcom, Ativo: true}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, garcom))

	u, err := repo.FindByEmail(ctx, "admin@bar.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)

	_, err = repo.FindByEmail(ctx, "ninguem@bar.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	todos, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)
	garcons, err := repo.List(ctx, model.PapelGarcom)
	require.NoError(t, err)
	require.Len(t, garcons, 1)
	assert.Equal(t, "garcom@bar.com", garcons[0].Email)

	garcom.Ativo = false
	require.NoError(t, repo.Update(ctx, garcom))
	u, err = repo.FindByID(ctx, garcom.ID)
	require.NoError(t, err)
	assert.False(t, u.Ativo)
}
