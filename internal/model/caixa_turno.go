package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cash shift status values.
const (
	CaixaAberto  = "aberto"
	CaixaFechado = "fechado"
)

// Cash movement types.
const (
	CaixaEntrada = "entrada"
	CaixaSaida   = "saida"
)

// CaixaTurno represents a cash register shift. At most one row may be aberto;
// a partial unique index enforces it (see infra.applySchemaPatches).
type CaixaTurno struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ValorAbertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ValorFechamento is the amount counted by the operator on close.
	ValorFechamento      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status               string           `gorm:"type:varchar(20);not null"`
	ObservacaoAbertura   *string
	ObservacaoFechamento *string
	AbertoPor            *uuid.UUID `gorm:"type:uuid"`
	AbertoEm             time.Time  `gorm:"not null"`
	FechadoEm            *time.Time

	Movimentos []MovimentoCaixa `gorm:"foreignKey:TurnoID"`
}

func (t *CaixaTurno) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// MovimentoCaixa is an entry in the cash ledger. Valor is always positive;
// Tipo gives the sign.
type MovimentoCaixa struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TurnoID        *uuid.UUID      `gorm:"type:uuid;index"`
	Tipo           string          `gorm:"type:varchar(20);not null"`
	Valor          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descricao      string          `gorm:"not null"`
	FormaPagamento string          `gorm:"type:varchar(20);not null"`
	ComandaID      *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt      time.Time
}

// TableName overrides GORM's default pluralization.
func (MovimentoCaixa) TableName() string { return "movimentos_caixa" }

func (m *MovimentoCaixa) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Assinado returns the movement value with the sign implied by its type.
func (m MovimentoCaixa) Assinado() decimal.Decimal {
	if m.Tipo == CaixaSaida {
		return m.Valor.Neg()
	}
	return m.Valor
}

// SaldoEsperado recomputes a shift's expected balance from its movements:
// abertura + Σentrada − Σsaida. It is never stored.
func SaldoEsperado(abertura decimal.Decimal, movs []MovimentoCaixa) decimal.Decimal {
	saldo := abertura
	for _, m := range movs {
		saldo = saldo.Add(m.Assinado())
	}
	return saldo
}
