package repository

import (
	"context"

	"comanda/internal/model"

	"gorm.io/gorm"
)

// EmpresaRepository manages the single company profile row.
type EmpresaRepository interface {
	// Get returns gorm.ErrRecordNotFound until the profile is first saved.
	Get(ctx context.Context) (*model.Empresa, error)
	Save(ctx context.Context, e *model.Empresa) error
}

type empresaRepo struct{ db *gorm.DB }

func NewEmpresaRepository(db *gorm.DB) EmpresaRepository { return &empresaRepo{db: db} }

func (r *empresaRepo) Get(ctx context.Context) (*model.Empresa, error) {
	var e model.Empresa
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *empresaRepo) Save(ctx context.Context, e *model.Empresa) error {
	return r.db.WithContext(ctx).Save(e).Error
}
