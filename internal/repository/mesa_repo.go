package repository

import (
	"context"

	"comanda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MesaRepository interface {
	Create(ctx context.Context, m *model.Mesa) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Mesa, error)
	List(ctx context.Context) ([]model.Mesa, error)
	Update(ctx context.Context, m *model.Mesa) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
}

type mesaRepo struct{ db *gorm.DB }

func NewMesaRepository(db *gorm.DB) MesaRepository { return &mesaRepo{db: db} }

func (r *mesaRepo) Create(ctx context.Context, m *model.Mesa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mesaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *mesaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *mesaRepo) List(ctx context.Context) ([]model.Mesa, error) {
	var mesas []model.Mesa
	err := r.db.WithContext(ctx).Order("numero ASC").Find(&mesas).Error
	return mesas, err
}

func (r *mesaRepo) Update(ctx context.Context, m *model.Mesa) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *mesaRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Mesa{}).Where("id = ?", id).Update("status", status).Error
}

func (r *mesaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Mesa{}).Error
}
