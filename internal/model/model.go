// Package model holds the GORM entities of the order, stock and cash ledgers.
package model

import "github.com/google/uuid"

// Payment methods accepted on order close and cash movements.
const (
	PagamentoDinheiro = "dinheiro"
	PagamentoDebito   = "debito"
	PagamentoCredito  = "credito"
	PagamentoPix      = "pix"
)

// FormasPagamento lists every accepted payment method, in display order.
var FormasPagamento = []string{PagamentoDinheiro, PagamentoDebito, PagamentoCredito, PagamentoPix}

// ensureID assigns a random UUID before insert when none was set, so the
// schema does not depend on a database-side generator.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&Usuario{},
		&Empresa{},
		&Mesa{},
		&Cliente{},
		&Produto{},
		&CaixaTurno{},
		&Comanda{},
		&ComandaItem{},
		&MovimentoEstoque{},
		&MovimentoCaixa{},
	}
}
