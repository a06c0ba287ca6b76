package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Lookup failures. Handlers map these to 404 on reads and 400 elsewhere.
var (
	ErrComandaNaoEncontrada  = errors.New("comanda não encontrada")
	ErrItemNaoEncontrado     = errors.New("item não pertence a esta comanda")
	ErrProdutoNaoEncontrado  = errors.New("produto não encontrado")
	ErrMesaNaoEncontrada     = errors.New("mesa não encontrada")
	ErrClienteNaoEncontrado  = errors.New("cliente não encontrado")
	ErrCaixaNaoEncontrado    = errors.New("turno de caixa não encontrado")
	ErrNenhumCaixaAberto     = errors.New("nenhum caixa aberto")
	ErrEmpresaNaoConfigurada = errors.New("dados da empresa ainda não configurados")
)

// State conflicts: the request is well formed but the current state forbids it.
var (
	ErrComandaNaoAberta     = errors.New("comanda não está aberta")
	ErrComandaSemItens      = errors.New("comanda sem itens não pode ser fechada")
	ErrProdutoInativo       = errors.New("produto inativo não pode ser vendido")
	ErrProdutoSemControle   = errors.New("produto não controla estoque")
	ErrMesaIndisponivel     = errors.New("mesa não está livre")
	ErrMesaOcupada          = errors.New("mesa possui comanda aberta")
	ErrMesaDuplicada        = errors.New("já existe uma mesa com este número")
	ErrMesaComHistorico     = errors.New("mesa possui comandas registradas")
	ErrCaixaJaAberto        = errors.New("já existe um caixa aberto")
	ErrCaixaFechado         = errors.New("turno de caixa já está fechado")
	ErrConflitoConcorrente  = errors.New("operação concorrente, tente novamente")
	ErrCredenciaisInvalidas = errors.New("credenciais inválidas")
	ErrTokenInvalido        = errors.New("token inválido ou expirado")
)

// ErrProdutoEmComandaAberta blocks toggling controla_estoque while open
// order lines still depend on the old value.
var ErrProdutoEmComandaAberta = errors.New("produto está em comanda aberta; feche ou cancele antes de alterar controla_estoque")

var naoEncontrados = []error{
	ErrComandaNaoEncontrada, ErrItemNaoEncontrado, ErrProdutoNaoEncontrado,
	ErrMesaNaoEncontrada, ErrClienteNaoEncontrado, ErrCaixaNaoEncontrado,
	ErrNenhumCaixaAberto, ErrEmpresaNaoConfigurada,
}

var conflitos = []error{
	ErrComandaNaoAberta, ErrComandaSemItens, ErrProdutoInativo, ErrProdutoSemControle, ErrProdutoEmComandaAberta,
	ErrMesaIndisponivel, ErrMesaOcupada, ErrMesaDuplicada, ErrMesaComHistorico,
	ErrCaixaJaAberto, ErrCaixaFechado, ErrConflitoConcorrente,
}

// ValidationError reports input the struct tags cannot express
// (cross-field rules, malformed ids).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalido(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	for _, target := range naoEncontrados {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsClientError reports whether err was caused by the request rather than by
// the server: validation failures, state conflicts and missing records.
func IsClientError(err error) bool {
	var ve *ValidationError
	var vErrs validator.ValidationErrors
	if errors.As(err, &ve) || errors.As(err, &vErrs) || IsNotFound(err) {
		return true
	}
	if errors.Is(err, ErrCredenciaisInvalidas) || errors.Is(err, ErrTokenInvalido) {
		return true
	}
	for _, target := range conflitos {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
