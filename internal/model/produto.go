package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Produto is a catalog entry. EstoqueAtual is a materialized counter kept in
// step with the movimentos_estoque ledger; it is never edited directly.
type Produto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nome      string          `gorm:"index;not null"`
	Preco     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Categoria string          `gorm:"index;not null"`
	// EstoqueAtual may go negative: a sale is never blocked by stock.
	EstoqueAtual    int  `gorm:"not null;default:0"`
	EstoqueMinimo   int  `gorm:"not null;default:0"`
	ControlaEstoque bool `gorm:"not null"`
	Ativo           bool `gorm:"not null"`
	FotoURL         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Produto) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// EstoqueBaixo reports whether the product should show up in low-stock alerts.
func (p *Produto) EstoqueBaixo() bool {
	return p.Ativo && p.ControlaEstoque && p.EstoqueAtual <= p.EstoqueMinimo
}
