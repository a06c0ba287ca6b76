package service

import (
	"context"
	"sync"
	"testing"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"
	"comanda/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Test environment ──────────────────────────────────────────────────────────

type fakeEnqueuer struct {
	mu     sync.Mutex
	turnos []uuid.UUID
}

func (f *fakeEnqueuer) EnqueueRelatorioTurno(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnos = append(f.turnos, id)
	return nil
}

type env struct {
	db *gorm.DB

	produtoRepo   repository.ProdutoRepository
	movimentoRepo repository.MovimentoEstoqueRepository
	comandaRepo   repository.ComandaRepository
	caixaRepo     repository.CaixaRepository
	mesaRepo      repository.MesaRepository

	estoque    EstoqueService
	produtos   ProdutoService
	comandas   ComandaService
	caixa      CaixaService
	mesas      MesaService
	clientes   ClienteService
	empresa    EmpresaService
	relatorios RelatorioService
	enqueuer   *fakeEnqueuer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)

	e := &env{
		db:            db,
		produtoRepo:   repository.NewProdutoRepository(db),
		movimentoRepo: repository.NewMovimentoEstoqueRepository(db),
		comandaRepo:   repository.NewComandaRepository(db),
		caixaRepo:     repository.NewCaixaRepository(db),
		mesaRepo:      repository.NewMesaRepository(db),
		enqueuer:      &fakeEnqueuer{},
	}
	clienteRepo := repository.NewClienteRepository(db)
	empresaRepo := repository.NewEmpresaRepository(db)

	e.estoque = NewEstoqueService(e.produtoRepo, e.movimentoRepo, nil)
	e.produtos = NewProdutoService(e.produtoRepo, e.comandaRepo, e.movimentoRepo, e.estoque, nil)
	e.comandas = NewComandaService(e.comandaRepo, e.mesaRepo, e.produtoRepo, clienteRepo, e.caixaRepo, e.movimentoRepo, e.estoque, nil)
	e.caixa = NewCaixaService(e.caixaRepo, e.enqueuer)
	e.mesas = NewMesaService(e.mesaRepo, e.comandaRepo)
	e.clientes = NewClienteService(clienteRepo)
	e.empresa = NewEmpresaService(empresaRepo)
	e.relatorios = NewRelatorioService(e.comandaRepo, e.caixaRepo, empresaRepo)
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func (e *env) criarProduto(t *testing.T, nome, preco string, estoque int) *dto.ProdutoResponse {
	t.Helper()
	p, err := e.produtos.Criar(context.Background(), dto.CriarProdutoRequest{
		Nome:           nome,
		Preco:          dec(preco),
		Categoria:      "Espetos",
		EstoqueInicial: estoque,
		EstoqueMinimo:  2,
	})
	require.NoError(t, err)
	return p
}

func (e *env) criarMesa(t *testing.T, numero int) *dto.MesaResponse {
	t.Helper()
	m, err := e.mesas.Criar(context.Background(), dto.CriarMesaRequest{Numero: numero, Capacidade: 4})
	require.NoError(t, err)
	return m
}

func (e *env) abrirBalcao(t *testing.T) *dto.ComandaResponse {
	t.Helper()
	c, err := e.comandas.Abrir(context.Background(), dto.AbrirComandaRequest{Tipo: model.TipoBalcao})
	require.NoError(t, err)
	return c
}

func (e *env) estoqueAtual(t *testing.T, id string) int {
	t.Helper()
	p, err := e.produtoRepo.FindByID(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	return p.EstoqueAtual
}

// requireLedgerConsistente replays the stock ledger and compares it with every
// product counter.
func (e *env) requireLedgerConsistente(t *testing.T) {
	t.Helper()
	r, err := e.estoque.Reconciliar(context.Background(), false)
	require.NoError(t, err)
	require.Empty(t, r.Divergencias)
}
