package dto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DecimalTags(t *testing.T) {
	ok := MovimentoCaixaRequest{
		Tipo:           "entrada",
		Valor:          decimal.RequireFromString("10.50"),
		Descricao:      "troco",
		FormaPagamento: "dinheiro",
	}
	assert.NoError(t, Validate.Struct(ok))

	zero := ok
	zero.Valor = decimal.Zero
	err := Validate.Struct(zero)
	require.Error(t, err)
	assert.Contains(t, FieldErrors(err), "Valor")

	neg := FecharComandaRequest{FormaPagamento: "pix", Desconto: decimal.NewFromInt(-1)}
	err = Validate.Struct(neg)
	require.Error(t, err)
	assert.Equal(t, "min", FieldErrors(err)["Desconto"])
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate.Struct(AbrirComandaRequest{Tipo: "viagem"})
	require.Error(t, err)
	assert.Equal(t, "oneof", FieldErrors(err)["Tipo"])

	assert.NoError(t, Validate.Struct(AbrirComandaRequest{Tipo: "balcao"}))
}

func TestFieldErrors_NotValidation(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}

func TestPage(t *testing.T) {
	p, l := Page(0, 0, 50, 200)
	assert.Equal(t, 1, p)
	assert.Equal(t, 50, l)

	p, l = Page(3, 500, 50, 200)
	assert.Equal(t, 3, p)
	assert.Equal(t, 50, l)

	p, l = Page(2, 20, 50, 200)
	assert.Equal(t, 2, p)
	assert.Equal(t, 20, l)
}
