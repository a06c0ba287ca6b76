package repository

import (
	"context"

	"comanda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaixaRepository interface {
	CreateTurno(ctx context.Context, t *model.CaixaTurno) error
	// FindTurnoAberto returns gorm.ErrRecordNotFound when no shift is open.
	FindTurnoAberto(ctx context.Context) (*model.CaixaTurno, error)
	FindTurnoAbertoTx(tx *gorm.DB) (*model.CaixaTurno, error)
	FindTurnoByID(ctx context.Context, id uuid.UUID) (*model.CaixaTurno, error)
	// FindTurnoByIDTx locks the shift row and loads its movements.
	FindTurnoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CaixaTurno, error)
	UpdateTurnoTx(tx *gorm.DB, t *model.CaixaTurno) error
	ListTurnos(ctx context.Context, page, limit int) ([]model.CaixaTurno, int64, error)

	CreateMovimento(ctx context.Context, m *model.MovimentoCaixa) error
	CreateMovimentoTx(tx *gorm.DB, m *model.MovimentoCaixa) error
	ListMovimentos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimentoCaixa, error)
	DeleteMovimentosByComandaTx(tx *gorm.DB, comandaID uuid.UUID) error

	DB() *gorm.DB
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CreateTurno(ctx context.Context, t *model.CaixaTurno) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *caixaRepo) FindTurnoAberto(ctx context.Context) (*model.CaixaTurno, error) {
	return r.FindTurnoAbertoTx(r.db.WithContext(ctx))
}

func (r *caixaRepo) FindTurnoAbertoTx(tx *gorm.DB) (*model.CaixaTurno, error) {
	var t model.CaixaTurno
	err := tx.Where("status = ?", model.CaixaAberto).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *caixaRepo) FindTurnoByID(ctx context.Context, id uuid.UUID) (*model.CaixaTurno, error) {
	return findTurno(r.db.WithContext(ctx), id)
}

func (r *caixaRepo) FindTurnoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CaixaTurno, error) {
	return findTurno(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func findTurno(q *gorm.DB, id uuid.UUID) (*model.CaixaTurno, error) {
	var t model.CaixaTurno
	err := q.
		Preload("Movimentos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *caixaRepo) UpdateTurnoTx(tx *gorm.DB, t *model.CaixaTurno) error {
	return tx.Omit("Movimentos").Save(t).Error
}

func (r *caixaRepo) ListTurnos(ctx context.Context, page, limit int) ([]model.CaixaTurno, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CaixaTurno{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var turnos []model.CaixaTurno
	err := q.Preload("Movimentos").
		Order("aberto_em DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&turnos).Error
	return turnos, total, err
}

func (r *caixaRepo) CreateMovimento(ctx context.Context, m *model.MovimentoCaixa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *caixaRepo) CreateMovimentoTx(tx *gorm.DB, m *model.MovimentoCaixa) error {
	return tx.Create(m).Error
}

func (r *caixaRepo) ListMovimentos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimentoCaixa, error) {
	var movs []model.MovimentoCaixa
	err := r.db.WithContext(ctx).Where("turno_id = ?", turnoID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) DeleteMovimentosByComandaTx(tx *gorm.DB, comandaID uuid.UUID) error {
	return tx.Where("comanda_id = ?", comandaID).Delete(&model.MovimentoCaixa{}).Error
}
