package repository

import (
	"context"

	"comanda/internal/dto"
	"comanda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via fakes.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	ListControlados(ctx context.Context) ([]model.Produto, error)
	ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Produto) error
	// FindByIDTx locks the row (FOR UPDATE) until the transaction ends.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	SetEstoqueTx(tx *gorm.DB, id uuid.UUID, quantidade int) error
	UpdateTx(tx *gorm.DB, p *model.Produto) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) CreateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *produtoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = ?", false)
	case "all":
		// no filter
	default:
		q = q.Where("ativo = ?", true)
	}
	if filter.Nome != "" {
		q = q.Where("LOWER(nome) LIKE LOWER(?)", "%"+filter.Nome+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("categoria ASC, nome ASC").Limit(filter.Limit).Offset(offset).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) ListControlados(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).Where("controla_estoque = ?", true).Order("nome ASC").Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("ativo = ? AND controla_estoque = ? AND estoque_atual <= estoque_minimo", true, true).
		Order("estoque_atual ASC, nome ASC").
		Find(&produtos).Error
	return produtos, err
}

// Update writes catalog fields only; estoque_atual belongs to the stock ledger.
func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.UpdateTx(r.db.WithContext(ctx), p)
}

func (r *produtoRepo) UpdateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Omit("estoque_atual").Save(p).Error
}

func (r *produtoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Produto{}).Error
}

func (r *produtoRepo) SetEstoqueTx(tx *gorm.DB, id uuid.UUID, quantidade int) error {
	return tx.Model(&model.Produto{}).Where("id = ?", id).Update("estoque_atual", quantidade).Error
}
