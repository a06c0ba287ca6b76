package handler

import (
	"net/http"

	"comanda/internal/dto"
	"comanda/internal/gateway"
	"comanda/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminHandler struct{ gw *gateway.Gateway }

func NewAdminHandler(gw *gateway.Gateway) *AdminHandler { return &AdminHandler{gw: gw} }

// Executar godoc
// @Summary      Gateway de escrita
// @Description  Executa uma ação nomeada. Ações disponíveis ao garçom: criar_comanda, adicionar_item, criar_cliente, movimento_caixa. As demais exigem papel admin.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GatewayRequest true "Ação e parâmetros"
// @Success      200  {object} dto.GatewayResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /api/admin [post]
func (h *AdminHandler) Executar(c *gin.Context) {
	var req dto.GatewayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if claims == nil {
		respondError(c, gateway.ErrSemPermissao, false)
		return
	}

	result, err := h.gw.Execute(c.Request.Context(), claims.Papel, req.Action, req.Params)
	if err != nil {
		log.Debug().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("action", req.Action).
			Err(err).
			Msg("ação do gateway falhou")
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, dto.GatewayResponse{Result: result})
}
