package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order status values. aberta → fechada | cancelada; both are terminal.
const (
	ComandaAberta    = "aberta"
	ComandaFechada   = "fechada"
	ComandaCancelada = "cancelada"
)

// Order types.
const (
	TipoMesa     = "mesa"
	TipoBalcao   = "balcao"
	TipoDelivery = "delivery"
)

// Comanda is an order tab attached to a table, a counter sale or a delivery.
// While aberta, Subtotal == Total == Σ itens.subtotal. On close
// Total = Subtotal − Desconto.
type Comanda struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Numero         int             `gorm:"uniqueIndex;not null"`
	Tipo           string          `gorm:"type:varchar(20);not null"`
	MesaID         *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID      *uuid.UUID      `gorm:"type:uuid;index"`
	NomeCliente    *string
	Status         string          `gorm:"type:varchar(20);not null;index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxaServico    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FormaPagamento *string         `gorm:"type:varchar(20)"`
	Observacao     *string
	AbertaEm       time.Time `gorm:"not null;index"`
	FechadaEm      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Itens   []ComandaItem `gorm:"foreignKey:ComandaID"`
	Mesa    *Mesa         `gorm:"foreignKey:MesaID"`
	Cliente *Cliente      `gorm:"foreignKey:ClienteID"`
}

func (c *Comanda) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Aberta reports whether the order still accepts changes.
func (c *Comanda) Aberta() bool { return c.Status == ComandaAberta }

// ComandaItem is one order line. PrecoUnitario is a snapshot taken when the
// line was added; later price changes do not touch existing lines.
type ComandaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ComandaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacao    *string
	CreatedAt     time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// TableName overrides GORM's default pluralization (comanda_items → comanda_itens).
func (ComandaItem) TableName() string { return "comanda_itens" }

func (i *ComandaItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// SomaItens returns Σ subtotal over the given lines.
func SomaItens(itens []ComandaItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range itens {
		total = total.Add(it.Subtotal)
	}
	return total
}
