package handler

import (
	"errors"
	"net/http"

	"comanda/internal/apierror"
	"comanda/internal/dto"
	"comanda/internal/gateway"
	"comanda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := dto.Validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation(dto.FieldErrors(err)))
		return false
	}
	return true
}

// pathID parses the :id route parameter, answering 400 when malformed.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps a service error to the JSON envelope. Missing records are
// 404 only when notFoundAs404 is set (REST reads); every other client error
// is 400. Anything else is handed to middleware.ErrorHandler, which logs it
// and answers with a generic 500.
func respondError(c *gin.Context, err error, notFoundAs404 bool) {
	var pe *gateway.ParamsError
	switch {
	case dto.FieldErrors(err) != nil:
		c.JSON(http.StatusBadRequest, apierror.NewValidation(dto.FieldErrors(err)))
	case errors.Is(err, gateway.ErrSemPermissao):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, gateway.ErrAcaoDesconhecida), errors.As(err, &pe):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case notFoundAs404 && service.IsNotFound(err):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case service.IsClientError(err):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
