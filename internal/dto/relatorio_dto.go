package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type RelatorioVendasFilter struct {
	De  string `form:"de"`  // YYYY-MM-DD, inclusive; defaults to today
	Ate string `form:"ate"` // YYYY-MM-DD, inclusive; defaults to De
}

type ProdutoVendido struct {
	ProdutoID  string          `json:"produto_id"`
	Nome       string          `json:"nome"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
}

type RelatorioVendasResponse struct {
	De                 string                     `json:"de"`
	Ate                string                     `json:"ate"`
	ComandasFechadas   int                        `json:"comandas_fechadas"`
	ComandasCanceladas int                        `json:"comandas_canceladas"`
	Bruto              decimal.Decimal            `json:"bruto"`
	Descontos          decimal.Decimal            `json:"descontos"`
	Liquido            decimal.Decimal            `json:"liquido"`
	TicketMedio        decimal.Decimal            `json:"ticket_medio"`
	PorFormaPagamento  map[string]decimal.Decimal `json:"por_forma_pagamento"`
	PorTipo            map[string]int             `json:"por_tipo"`
	MaisVendidos       []ProdutoVendido           `json:"mais_vendidos"`
}

// RelatorioTurnoResponse is the shift-close report: the shift summary plus
// what was sold while it was open.
type RelatorioTurnoResponse struct {
	Empresa            *EmpresaResponse `json:"empresa,omitempty"`
	Turno              TurnoResponse    `json:"turno"`
	ComandasFechadas   int              `json:"comandas_fechadas"`
	ComandasCanceladas int              `json:"comandas_canceladas"`
	MaisVendidos       []ProdutoVendido `json:"mais_vendidos"`
	GeradoEm           string           `json:"gerado_em"`
}

// ─── Write gateway envelope ──────────────────────────────────────────────────

type GatewayRequest struct {
	Action string          `json:"action" validate:"required"`
	Params json.RawMessage `json:"params"`
}

type GatewayResponse struct {
	Result interface{} `json:"result"`
}
