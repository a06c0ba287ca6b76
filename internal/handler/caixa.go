package handler

import (
	"net/http"
	"strconv"

	"comanda/internal/dto"
	"comanda/internal/middleware"
	"comanda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre um turno de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Valor de abertura"
// @Success 201 {object} dto.TurnoResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var usuarioID *uuid.UUID
	if claims := middleware.GetClaims(c); claims != nil {
		if uid, err := uuid.Parse(claims.UserID); err == nil {
			usuarioID = &uid
		}
	}

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Atual godoc
// @Summary Turno de caixa aberto com saldo esperado
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TurnoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/caixa/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	resp, err := h.svc.Atual(c.Request.Context())
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumo godoc
// @Summary Resumo de um turno de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do turno"
// @Success 200 {object} dto.TurnoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/caixa/{id}/resumo [get]
func (h *CaixaHandler) Resumo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico godoc
// @Summary Histórico de turnos de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param page  query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} dto.TurnoListResponse
// @Router /api/caixa/historico [get]
func (h *CaixaHandler) Historico(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Historico(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}
