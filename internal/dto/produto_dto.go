package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Nome            string          `json:"nome"            validate:"required,min=2,max=120"`
	Preco           decimal.Decimal `json:"preco"           validate:"required,gt=0"`
	Categoria       string          `json:"categoria"       validate:"required,max=60"`
	EstoqueInicial  int             `json:"estoque_inicial" validate:"min=0"`
	EstoqueMinimo   int             `json:"estoque_minimo"  validate:"min=0"`
	ControlaEstoque *bool           `json:"controla_estoque"` // defaults to true
	FotoURL         *string         `json:"foto_url"        validate:"omitempty,url"`
}

// AtualizarProdutoRequest never touches estoque_atual: stock only moves
// through the ledger.
type AtualizarProdutoRequest struct {
	ID              string           `json:"id"               validate:"required,uuid"`
	Nome            *string          `json:"nome"             validate:"omitempty,min=2,max=120"`
	Preco           *decimal.Decimal `json:"preco"`
	Categoria       *string          `json:"categoria"        validate:"omitempty,max=60"`
	EstoqueMinimo   *int             `json:"estoque_minimo"   validate:"omitempty,min=0"`
	ControlaEstoque *bool            `json:"controla_estoque"`
	Ativo           *bool            `json:"ativo"`
	FotoURL         *string          `json:"foto_url"         validate:"omitempty,url"`
}

type ExcluirProdutoRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProdutoFilter struct {
	Nome      string `form:"nome"`
	Categoria string `form:"categoria"`
	// Ativo: "false" = inactive only, "all" = everything, default = active only
	Ativo string `form:"ativo"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID              string          `json:"id"`
	Nome            string          `json:"nome"`
	Preco           decimal.Decimal `json:"preco"`
	Categoria       string          `json:"categoria"`
	EstoqueAtual    int             `json:"estoque_atual"`
	EstoqueMinimo   int             `json:"estoque_minimo"`
	ControlaEstoque bool            `json:"controla_estoque"`
	EstoqueBaixo    bool            `json:"estoque_baixo"`
	Ativo           bool            `json:"ativo"`
	FotoURL         *string         `json:"foto_url"`
}

type ProdutoListResponse struct {
	Data       []ProdutoResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
