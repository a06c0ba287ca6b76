package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorAbertura decimal.Decimal `json:"valor_abertura" validate:"min=0"`
	Observacao    *string         `json:"observacao"     validate:"omitempty,max=500"`
}

type MovimentoCaixaRequest struct {
	Tipo           string          `json:"tipo"            validate:"required,oneof=entrada saida"`
	Valor          decimal.Decimal `json:"valor"           validate:"required,gt=0"`
	Descricao      string          `json:"descricao"       validate:"required,min=2,max=255"`
	FormaPagamento string          `json:"forma_pagamento" validate:"required,oneof=dinheiro debito credito pix"`
}

type FecharCaixaRequest struct {
	// TurnoID defaults to the currently open shift when empty.
	TurnoID         string          `json:"turno_id"         validate:"omitempty,uuid"`
	ValorFechamento decimal.Decimal `json:"valor_fechamento" validate:"min=0"`
	Observacao      *string         `json:"observacao"       validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentoCaixaResponse struct {
	ID             string          `json:"id"`
	TurnoID        *string         `json:"turno_id"`
	Tipo           string          `json:"tipo"`
	Valor          decimal.Decimal `json:"valor"`
	Descricao      string          `json:"descricao"`
	FormaPagamento string          `json:"forma_pagamento"`
	ComandaID      *string         `json:"comanda_id"`
	CreatedAt      string          `json:"created_at"`
}

type TurnoResponse struct {
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	ValorAbertura decimal.Decimal  `json:"valor_abertura"`
	TotalEntradas decimal.Decimal  `json:"total_entradas"`
	TotalSaidas   decimal.Decimal  `json:"total_saidas"`
	SaldoEsperado decimal.Decimal  `json:"saldo_esperado"`
	// ValorFechamento and Diferenca are only set once the shift is closed.
	// Diferenca = ValorFechamento − SaldoEsperado, display only.
	ValorFechamento      *decimal.Decimal           `json:"valor_fechamento"`
	Diferenca            *decimal.Decimal           `json:"diferenca"`
	PorFormaPagamento    map[string]decimal.Decimal `json:"por_forma_pagamento"`
	ObservacaoAbertura   *string                    `json:"observacao_abertura"`
	ObservacaoFechamento *string                    `json:"observacao_fechamento"`
	AbertoEm             string                     `json:"aberto_em"`
	FechadoEm            *string                    `json:"fechado_em"`
	Movimentos           []MovimentoCaixaResponse   `json:"movimentos,omitempty"`
}

type TurnoListResponse struct {
	Data  []TurnoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
