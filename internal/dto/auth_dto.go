package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=4"`
}

// LoginGarcomRequest carries the shared waiter password derived from the
// backend's public URL.
type LoginGarcomRequest struct {
	Senha string `json:"senha" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CriarUsuarioRequest struct {
	Email string `json:"email" validate:"required,email"`
	Nome  string `json:"nome"  validate:"required,min=2,max=100"`
	Senha string `json:"senha" validate:"required,min=8"`
	Papel string `json:"papel" validate:"required,oneof=admin garcom"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Papel string `json:"papel"`
	Ativo bool   `json:"ativo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	Usuario      UsuarioResponse `json:"usuario"`
}
