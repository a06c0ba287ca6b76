package handler

import (
	"net/http"

	"comanda/internal/dto"
	"comanda/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultasHandler serves the read-only endpoints used by the dashboard and
// the waiter devices. Writes go through the admin gateway.
type ConsultasHandler struct {
	mesas      service.MesaService
	produtos   service.ProdutoService
	clientes   service.ClienteService
	estoque    service.EstoqueService
	relatorios service.RelatorioService
	empresa    service.EmpresaService
}

func NewConsultasHandler(
	mesas service.MesaService,
	produtos service.ProdutoService,
	clientes service.ClienteService,
	estoque service.EstoqueService,
	relatorios service.RelatorioService,
	empresa service.EmpresaService,
) *ConsultasHandler {
	return &ConsultasHandler{
		mesas:      mesas,
		produtos:   produtos,
		clientes:   clientes,
		estoque:    estoque,
		relatorios: relatorios,
		empresa:    empresa,
	}
}

func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		respondError(c, &service.ValidationError{Msg: "parâmetros de consulta inválidos"}, false)
		return false
	}
	return true
}

// ListarMesas godoc
// @Summary Lista as mesas com a comanda aberta de cada uma
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MesaResponse
// @Router /api/mesas [get]
func (h *ConsultasHandler) ListarMesas(c *gin.Context) {
	resp, err := h.mesas.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarProdutos godoc
// @Summary Lista produtos
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Param nome      query string false "Busca por nome"
// @Param categoria query string false "Categoria"
// @Param ativo     query string false "false | all"
// @Param page      query int    false "Página"
// @Param limit     query int    false "Itens por página"
// @Success 200 {object} dto.ProdutoListResponse
// @Router /api/produtos [get]
func (h *ConsultasHandler) ListarProdutos(c *gin.Context) {
	var filter dto.ProdutoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.produtos.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterProduto godoc
// @Summary Obtém um produto
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID do produto"
// @Success 200 {object} dto.ProdutoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/produtos/{id} [get]
func (h *ConsultasHandler) ObterProduto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.produtos.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarClientes godoc
// @Summary Lista clientes
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Param busca query string false "Nome ou telefone"
// @Param page  query int    false "Página"
// @Param limit query int    false "Itens por página"
// @Success 200 {object} map[string]interface{}
// @Router /api/clientes [get]
func (h *ConsultasHandler) ListarClientes(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQuery(c, &filter) {
		return
	}
	data, total, err := h.clientes.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total})
}

// Alertas godoc
// @Summary Produtos com estoque no mínimo ou abaixo
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AlertaEstoqueResponse
// @Router /api/estoque/alertas [get]
func (h *ConsultasHandler) Alertas(c *gin.Context) {
	resp, err := h.estoque.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimentos godoc
// @Summary Movimentações de estoque
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Param produto_id query string false "UUID do produto"
// @Param tipo       query string false "entrada | saida | venda | cancelamento | ajuste"
// @Param page       query int    false "Página"
// @Param limit      query int    false "Itens por página"
// @Success 200 {object} dto.MovimentoEstoqueListResponse
// @Router /api/estoque/movimentos [get]
func (h *ConsultasHandler) ListarMovimentos(c *gin.Context) {
	var filter dto.MovimentoEstoqueFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.estoque.ListarMovimentos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RelatorioVendas godoc
// @Summary Relatório de vendas por período
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Param de  query string false "AAAA-MM-DD (padrão: hoje)"
// @Param ate query string false "AAAA-MM-DD (padrão: de)"
// @Success 200 {object} dto.RelatorioVendasResponse
// @Router /api/relatorios/vendas [get]
func (h *ConsultasHandler) RelatorioVendas(c *gin.Context) {
	var filter dto.RelatorioVendasFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.relatorios.Vendas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Empresa godoc
// @Summary Perfil da empresa
// @Tags consultas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EmpresaResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/empresa [get]
func (h *ConsultasHandler) Empresa(c *gin.Context) {
	resp, err := h.empresa.Obter(c.Request.Context())
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, resp)
}
