package repository

import (
	"context"

	"comanda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimentoEstoqueFilter defines filters for listing stock movements.
type MovimentoEstoqueFilter struct {
	ProdutoID *uuid.UUID
	Tipo      string
	Page      int
	Limit     int
}

type MovimentoEstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error
	List(ctx context.Context, filter MovimentoEstoqueFilter) ([]model.MovimentoEstoque, int64, error)
	ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.MovimentoEstoque, error)
	// SomaPorProduto returns Σ quantidade per product over the whole ledger.
	SomaPorProduto(ctx context.Context) (map[uuid.UUID]int, error)
	SomaProdutoTx(tx *gorm.DB, produtoID uuid.UUID) (int, error)
	CountByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error)
	// DetachComandaTx clears comanda_id on the movements of a purged order.
	DetachComandaTx(tx *gorm.DB, comandaID uuid.UUID) error
}

type movimentoEstoqueRepo struct{ db *gorm.DB }

func NewMovimentoEstoqueRepository(db *gorm.DB) MovimentoEstoqueRepository {
	return &movimentoEstoqueRepo{db: db}
}

func (r *movimentoEstoqueRepo) CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error {
	return tx.Create(m).Error
}

func (r *movimentoEstoqueRepo) List(ctx context.Context, filter MovimentoEstoqueFilter) ([]model.MovimentoEstoque, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimentoEstoque{})
	if filter.ProdutoID != nil {
		q = q.Where("produto_id = ?", *filter.ProdutoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimentos []model.MovimentoEstoque
	err := q.Preload("Produto").Order("created_at DESC").Offset(offset).Limit(limit).Find(&movimentos).Error
	return movimentos, total, err
}

func (r *movimentoEstoqueRepo) ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.MovimentoEstoque, error) {
	var movimentos []model.MovimentoEstoque
	err := r.db.WithContext(ctx).Where("produto_id = ?", produtoID).Order("created_at ASC").Find(&movimentos).Error
	return movimentos, err
}

func (r *movimentoEstoqueRepo) SomaPorProduto(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ProdutoID uuid.UUID
		Soma      int
	}
	err := r.db.WithContext(ctx).Model(&model.MovimentoEstoque{}).
		Select("produto_id, SUM(quantidade) AS soma").
		Group("produto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	somas := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		somas[row.ProdutoID] = row.Soma
	}
	return somas, nil
}

func (r *movimentoEstoqueRepo) SomaProdutoTx(tx *gorm.DB, produtoID uuid.UUID) (int, error) {
	var soma int
	err := tx.Model(&model.MovimentoEstoque{}).
		Select("COALESCE(SUM(quantidade), 0)").
		Where("produto_id = ?", produtoID).
		Scan(&soma).Error
	return soma, err
}

func (r *movimentoEstoqueRepo) CountByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MovimentoEstoque{}).Where("produto_id = ?", produtoID).Count(&n).Error
	return n, err
}

func (r *movimentoEstoqueRepo) DetachComandaTx(tx *gorm.DB, comandaID uuid.UUID) error {
	return tx.Model(&model.MovimentoEstoque{}).Where("comanda_id = ?", comandaID).Update("comanda_id", nil).Error
}
