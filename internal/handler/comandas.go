package handler

import (
	"net/http"

	"comanda/internal/dto"
	"comanda/internal/service"

	"github.com/gin-gonic/gin"
)

// ComandasHandler exposes the order transitions that are not gateway
// actions: close, remove item, cancel and hard delete, plus reads.
type ComandasHandler struct{ svc service.ComandaService }

func NewComandasHandler(svc service.ComandaService) *ComandasHandler {
	return &ComandasHandler{svc: svc}
}

// Fechar godoc
// @Summary      Fechar comanda
// @Description  Fecha a comanda com forma de pagamento e desconto, lança a entrada no caixa e libera a mesa.
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID da comanda"
// @Param        body body dto.FecharComandaRequest true "Pagamento"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/comandas/{id} [post]
func (h *ComandasHandler) Fechar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.FecharComandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoverItem godoc
// @Summary      Remover item da comanda
// @Description  Remove a linha, devolve o estoque e recalcula o total.
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "UUID da comanda"
// @Param        body body dto.RemoverItemRequest true "Item"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/comandas/{id} [put]
func (h *ComandasHandler) RemoverItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RemoverItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RemoverItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar comanda
// @Description  Cancela a comanda aberta, devolve o estoque de todos os itens e libera a mesa.
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true  "UUID da comanda"
// @Param        body body dto.CancelarComandaRequest false "Motivo"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/comandas/{id} [patch]
func (h *ComandasHandler) Cancelar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CancelarComandaRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excluir godoc
// @Summary      Excluir comanda
// @Description  Exclusão definitiva. Uma comanda aberta é cancelada antes; os lançamentos de caixa da comanda são removidos.
// @Tags         comandas
// @Security     BearerAuth
// @Param        id path string true "UUID da comanda"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /api/comandas/{id} [delete]
func (h *ComandasHandler) Excluir(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obter godoc
// @Summary      Obter comanda
// @Tags         comandas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da comanda"
// @Success      200 {object} dto.ComandaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/comandas/{id} [get]
func (h *ComandasHandler) Obter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar comandas
// @Tags         comandas
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "aberta | fechada | cancelada"
// @Param        tipo   query string false "mesa | balcao | delivery"
// @Param        data   query string false "AAAA-MM-DD (aberta_em)"
// @Param        page   query int    false "Página"
// @Param        limit  query int    false "Itens por página"
// @Success      200 {object} dto.ComandaListResponse
// @Router       /api/comandas [get]
func (h *ComandasHandler) Listar(c *gin.Context) {
	var filter dto.ComandaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, &service.ValidationError{Msg: "parâmetros inválidos"}, false)
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}
