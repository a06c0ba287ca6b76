package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirComandaRequest struct {
	Tipo        string  `json:"tipo"         validate:"required,oneof=mesa balcao delivery"`
	MesaID      *string `json:"mesa_id"      validate:"omitempty,uuid"`
	ClienteID   *string `json:"cliente_id"   validate:"omitempty,uuid"`
	NomeCliente *string `json:"nome_cliente" validate:"omitempty,max=120"`
	Observacao  *string `json:"observacao"   validate:"omitempty,max=500"`
}

type AdicionarItemRequest struct {
	ComandaID  string  `json:"comanda_id" validate:"required,uuid"`
	ProdutoID  string  `json:"produto_id" validate:"required,uuid"`
	Quantidade int     `json:"quantidade" validate:"required,min=1"`
	Observacao *string `json:"observacao" validate:"omitempty,max=255"`
}

type RemoverItemRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
}

type FecharComandaRequest struct {
	FormaPagamento string          `json:"forma_pagamento" validate:"required,oneof=dinheiro debito credito pix"`
	Desconto       decimal.Decimal `json:"desconto"        validate:"min=0"`
}

type CancelarComandaRequest struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=255"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ComandaFilter struct {
	Status string `form:"status"`
	Tipo   string `form:"tipo"`
	Data   string `form:"data"` // YYYY-MM-DD, filters by aberta_em
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComandaItemResponse struct {
	ID            string          `json:"id"`
	ProdutoID     string          `json:"produto_id"`
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Observacao    *string         `json:"observacao"`
}

type ComandaResponse struct {
	ID             string                `json:"id"`
	Numero         int                   `json:"numero"`
	Tipo           string                `json:"tipo"`
	MesaID         *string               `json:"mesa_id"`
	MesaNumero     *int                  `json:"mesa_numero"`
	ClienteID      *string               `json:"cliente_id"`
	NomeCliente    *string               `json:"nome_cliente"`
	Status         string                `json:"status"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	Desconto       decimal.Decimal       `json:"desconto"`
	TaxaServico    decimal.Decimal       `json:"taxa_servico"`
	Total          decimal.Decimal       `json:"total"`
	FormaPagamento *string               `json:"forma_pagamento"`
	Observacao     *string               `json:"observacao"`
	Itens          []ComandaItemResponse `json:"itens"`
	AbertaEm       string                `json:"aberta_em"`
	FechadaEm      *string               `json:"fechada_em"`
}

type ComandaListResponse struct {
	Data  []ComandaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
