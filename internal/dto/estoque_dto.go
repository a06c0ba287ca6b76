package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EntradaEstoqueRequest struct {
	ProdutoID  string  `json:"produto_id" validate:"required,uuid"`
	Quantidade int     `json:"quantidade" validate:"required,min=1"`
	Motivo     *string `json:"motivo"     validate:"omitempty,max=255"`
}

type AjusteEstoqueRequest struct {
	ProdutoID      string `json:"produto_id"      validate:"required,uuid"`
	NovaQuantidade int    `json:"nova_quantidade" validate:"min=0"`
	Motivo         string `json:"motivo"          validate:"required,min=3,max=255"`
}

type MovimentoEstoqueRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Tipo       string `json:"tipo"       validate:"required,oneof=entrada saida"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
	Motivo     string `json:"motivo"     validate:"required,min=3,max=255"`
}

type ReconciliarEstoqueRequest struct {
	Corrigir bool `json:"corrigir"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type MovimentoEstoqueFilter struct {
	ProdutoID string `form:"produto_id"`
	Tipo      string `form:"tipo"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentoEstoqueResponse struct {
	ID               string  `json:"id"`
	ProdutoID        string  `json:"produto_id"`
	Produto          string  `json:"produto"`
	Tipo             string  `json:"tipo"`
	Quantidade       int     `json:"quantidade"`
	EstoqueAnterior  int     `json:"estoque_anterior"`
	EstoquePosterior int     `json:"estoque_posterior"`
	Motivo           string  `json:"motivo"`
	ComandaID        *string `json:"comanda_id"`
	CreatedAt        string  `json:"created_at"`
}

type MovimentoEstoqueListResponse struct {
	Data  []MovimentoEstoqueResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

type AlertaEstoqueResponse struct {
	ProdutoID     string `json:"produto_id"`
	Nome          string `json:"nome"`
	Categoria     string `json:"categoria"`
	EstoqueAtual  int    `json:"estoque_atual"`
	EstoqueMinimo int    `json:"estoque_minimo"`
}

type DivergenciaEstoque struct {
	ProdutoID     string `json:"produto_id"`
	Nome          string `json:"nome"`
	EstoqueAtual  int    `json:"estoque_atual"`
	EstoqueLedger int    `json:"estoque_ledger"`
	Diferenca     int    `json:"diferenca"` // estoque_atual − estoque_ledger
}

type ReconciliacaoResponse struct {
	Verificados  int                  `json:"verificados"`
	Divergencias []DivergenciaEstoque `json:"divergencias"`
	Corrigido    bool                 `json:"corrigido"`
}
