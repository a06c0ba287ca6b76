package repository

import (
	"context"
	"time"

	"comanda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComandaFilter narrows order listings. Zero values mean "no filter".
type ComandaFilter struct {
	Status string
	Tipo   string
	// De/Ate bound aberta_em as a half-open interval [De, Ate).
	De    *time.Time
	Ate   *time.Time
	Page  int
	Limit int
}

type ComandaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error)
	FindAbertaByMesa(ctx context.Context, mesaID uuid.UUID) (*model.Comanda, error)
	ListAbertas(ctx context.Context) ([]model.Comanda, error)
	List(ctx context.Context, filter ComandaFilter) ([]model.Comanda, int64, error)
	// ListEncerradasEntre returns closed and cancelled orders whose fechada_em
	// falls in [de, ate), with their lines and products.
	ListEncerradasEntre(ctx context.Context, de, ate time.Time) ([]model.Comanda, error)
	CountByMesa(ctx context.Context, mesaID uuid.UUID) (int64, error)
	CountItensByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, c *model.Comanda) error
	NextNumeroTx(tx *gorm.DB) (int, error)
	// CountItensAbertosByProdutoTx counts lines of product on orders still open.
	CountItensAbertosByProdutoTx(tx *gorm.DB, produtoID uuid.UUID) (int64, error)
	// FindByIDTx locks the order row and loads its lines.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error)
	UpdateTx(tx *gorm.DB, c *model.Comanda) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	CreateItemTx(tx *gorm.DB, it *model.ComandaItem) error
	ListItensTx(tx *gorm.DB, comandaID uuid.UUID) ([]model.ComandaItem, error)
	DeleteItemTx(tx *gorm.DB, id uuid.UUID) error
	DeleteItensTx(tx *gorm.DB, comandaID uuid.UUID) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type comandaRepo struct{ db *gorm.DB }

func NewComandaRepository(db *gorm.DB) ComandaRepository { return &comandaRepo{db: db} }

func (r *comandaRepo) DB() *gorm.DB { return r.db }

func (r *comandaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Itens.Produto").
		Preload("Mesa").
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *comandaRepo) FindAbertaByMesa(ctx context.Context, mesaID uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := r.db.WithContext(ctx).
		Where("mesa_id = ? AND status = ?", mesaID, model.ComandaAberta).
		First(&c).Error
	return &c, err
}

func (r *comandaRepo) ListAbertas(ctx context.Context) ([]model.Comanda, error) {
	var comandas []model.Comanda
	err := r.db.WithContext(ctx).Where("status = ?", model.ComandaAberta).Order("numero ASC").Find(&comandas).Error
	return comandas, err
}

func (r *comandaRepo) List(ctx context.Context, filter ComandaFilter) ([]model.Comanda, int64, error) {
	var comandas []model.Comanda
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Comanda{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.De != nil {
		q = q.Where("aberta_em >= ?", *filter.De)
	}
	if filter.Ate != nil {
		q = q.Where("aberta_em < ?", *filter.Ate)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Itens.Produto").Preload("Mesa").
		Order("numero DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&comandas).Error
	return comandas, total, err
}

func (r *comandaRepo) ListEncerradasEntre(ctx context.Context, de, ate time.Time) ([]model.Comanda, error) {
	var comandas []model.Comanda
	err := r.db.WithContext(ctx).
		Where("status IN ? AND fechada_em >= ? AND fechada_em < ?",
			[]string{model.ComandaFechada, model.ComandaCancelada}, de, ate).
		Preload("Itens.Produto").
		Order("fechada_em ASC").
		Find(&comandas).Error
	return comandas, err
}

func (r *comandaRepo) CountByMesa(ctx context.Context, mesaID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Comanda{}).Where("mesa_id = ?", mesaID).Count(&n).Error
	return n, err
}

func (r *comandaRepo) CountItensByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ComandaItem{}).Where("produto_id = ?", produtoID).Count(&n).Error
	return n, err
}

func (r *comandaRepo) CountItensAbertosByProdutoTx(tx *gorm.DB, produtoID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.ComandaItem{}).
		Joins("JOIN comandas ON comandas.id = comanda_itens.comanda_id").
		Where("comanda_itens.produto_id = ? AND comandas.status = ?", produtoID, model.ComandaAberta).
		Count(&n).Error
	return n, err
}

func (r *comandaRepo) CreateTx(tx *gorm.DB, c *model.Comanda) error {
	return tx.Omit(clause.Associations).Create(c).Error
}

func (r *comandaRepo) NextNumeroTx(tx *gorm.DB) (int, error) {
	// The unique index on numero rejects a concurrent duplicate.
	var num int
	err := tx.Model(&model.Comanda{}).Select("COALESCE(MAX(numero), 0) + 1").Scan(&num).Error
	return num, err
}

func (r *comandaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	itens, err := r.ListItensTx(tx, id)
	if err != nil {
		return nil, err
	}
	c.Itens = itens
	return &c, nil
}

func (r *comandaRepo) UpdateTx(tx *gorm.DB, c *model.Comanda) error {
	return tx.Omit(clause.Associations).Save(c).Error
}

func (r *comandaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.Comanda{}).Error
}

func (r *comandaRepo) CreateItemTx(tx *gorm.DB, it *model.ComandaItem) error {
	return tx.Omit(clause.Associations).Create(it).Error
}

func (r *comandaRepo) ListItensTx(tx *gorm.DB, comandaID uuid.UUID) ([]model.ComandaItem, error) {
	var itens []model.ComandaItem
	err := tx.Where("comanda_id = ?", comandaID).Order("created_at ASC").Find(&itens).Error
	return itens, err
}

func (r *comandaRepo) DeleteItemTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.ComandaItem{}).Error
}

func (r *comandaRepo) DeleteItensTx(tx *gorm.DB, comandaID uuid.UUID) error {
	return tx.Where("comanda_id = ?", comandaID).Delete(&model.ComandaItem{}).Error
}
