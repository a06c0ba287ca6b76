package dto

// Reference data: tables, clients and the company profile.

// ─── Mesas ───────────────────────────────────────────────────────────────────

type CriarMesaRequest struct {
	Numero     int `json:"numero"     validate:"required,min=1"`
	Capacidade int `json:"capacidade" validate:"min=0"`
}

type AtualizarMesaRequest struct {
	ID         string  `json:"id"         validate:"required,uuid"`
	Numero     *int    `json:"numero"     validate:"omitempty,min=1"`
	Capacidade *int    `json:"capacidade" validate:"omitempty,min=0"`
	Status     *string `json:"status"     validate:"omitempty,oneof=livre ocupada reservada"`
}

type ExcluirMesaRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type MesaResponse struct {
	ID              string  `json:"id"`
	Numero          int     `json:"numero"`
	Status          string  `json:"status"`
	Capacidade      int     `json:"capacidade"`
	ComandaAbertaID *string `json:"comanda_aberta_id"`
}

// ─── Clientes ────────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	Telefone *string `json:"telefone" validate:"omitempty,max=30"`
	Endereco *string `json:"endereco" validate:"omitempty,max=255"`
}

type AtualizarClienteRequest struct {
	ID       string  `json:"id"       validate:"required,uuid"`
	Nome     *string `json:"nome"     validate:"omitempty,min=2,max=120"`
	Telefone *string `json:"telefone" validate:"omitempty,max=30"`
	Endereco *string `json:"endereco" validate:"omitempty,max=255"`
}

type ClienteFilter struct {
	Busca string `form:"busca"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
}

type ClienteResponse struct {
	ID       string  `json:"id"`
	Nome     string  `json:"nome"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
}

// ─── Empresa ─────────────────────────────────────────────────────────────────

type AtualizarEmpresaRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	CNPJ     *string `json:"cnpj"     validate:"omitempty,max=18"`
	Telefone *string `json:"telefone" validate:"omitempty,max=30"`
	Endereco *string `json:"endereco" validate:"omitempty,max=255"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	LogoURL  *string `json:"logo_url" validate:"omitempty,url"`
}

type EmpresaResponse struct {
	Nome     string  `json:"nome"`
	CNPJ     *string `json:"cnpj"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
	Email    *string `json:"email"`
	LogoURL  *string `json:"logo_url"`
}
