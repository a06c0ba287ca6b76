package handler

import (
	"net/http"

	"comanda/internal/apierror"
	"comanda/internal/dto"
	"comanda/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login com email e senha
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciais"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.unauthorized(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LoginGarcom godoc
// @Summary Login da conta compartilhada de garçom
// @Description A senha é derivada da URL pública do backend. A conta é criada no primeiro acesso.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginGarcomRequest true "Senha compartilhada"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/garcom [post]
func (h *AuthHandler) LoginGarcom(c *gin.Context) {
	var req dto.LoginGarcomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.LoginGarcom(c.Request.Context(), req)
	if err != nil {
		h.unauthorized(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Renova o par de tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.unauthorized(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) unauthorized(c *gin.Context, err error) {
	if service.IsClientError(err) {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	_ = c.Error(err)
}
