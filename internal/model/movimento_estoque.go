package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock movement types.
const (
	EstoqueEntrada      = "entrada"
	EstoqueSaida        = "saida"
	EstoqueVenda        = "venda"
	EstoqueCancelamento = "cancelamento"
	EstoqueAjuste       = "ajuste"
)

// MovimentoEstoque registra cada mudança de estoque de um produto.
// Rows are append-only. Replaying Quantidade for a product from zero, in
// created_at order, reproduces Produto.EstoqueAtual.
type MovimentoEstoque struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProdutoID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo             string    `gorm:"type:varchar(20);not null"`
	Quantidade       int       `gorm:"not null"` // signed delta
	EstoqueAnterior  int       `gorm:"not null"`
	EstoquePosterior int       `gorm:"not null"`
	Motivo           string
	// ComandaID is cleared, not cascaded, when the order is purged.
	ComandaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"index"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// TableName overrides GORM's default pluralization (movimento_estoques → movimentos_estoque).
func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }

func (m *MovimentoEstoque) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
