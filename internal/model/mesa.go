package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table status values.
const (
	MesaLivre     = "livre"
	MesaOcupada   = "ocupada"
	MesaReservada = "reservada"
)

// Mesa is a physical table. Status follows the order lifecycle: opening a
// table order occupies it, closing or cancelling frees it.
type Mesa struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Numero     int       `gorm:"uniqueIndex;not null"`
	Status     string    `gorm:"type:varchar(20);not null"`
	Capacidade int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (m *Mesa) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
