package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is reference data for delivery orders.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome      string    `gorm:"index;not null"`
	Telefone  *string
	Endereco  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Empresa is the single-row company profile printed on reports.
type Empresa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome      string    `gorm:"not null"`
	CNPJ      *string   `gorm:"column:cnpj"`
	Telefone  *string
	Endereco  *string
	Email     *string
	LogoURL   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Empresa) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
