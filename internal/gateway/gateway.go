// Package gateway implements the privileged write endpoint: a single
// POST body {action, params} dispatched to a registry of named actions.
// Each action decodes its params into a DTO, validates it with the shared
// validator and calls one service operation.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/service"

	"github.com/google/uuid"
)

var (
	ErrAcaoDesconhecida = errors.New("ação desconhecida")
	ErrSemPermissao     = errors.New("permissão insuficiente para esta ação")
)

// ParamsError reports params that are not valid JSON for the action's DTO.
type ParamsError struct {
	Err error
}

func (e *ParamsError) Error() string { return "params inválidos: " + e.Err.Error() }
func (e *ParamsError) Unwrap() error { return e.Err }

// Services bundles every service an action may call.
type Services struct {
	Comandas service.ComandaService
	Produtos service.ProdutoService
	Estoque  service.EstoqueService
	Caixa    service.CaixaService
	Mesas    service.MesaService
	Clientes service.ClienteService
	Empresa  service.EmpresaService
}

type action struct {
	papeis map[string]bool
	run    func(ctx context.Context, raw json.RawMessage) (interface{}, error)
}

// Gateway routes named actions to services.
type Gateway struct {
	actions map[string]action
}

var (
	todos      = []string{model.PapelAdmin, model.PapelGarcom}
	somenteAdm = []string{model.PapelAdmin}
)

func New(s Services) *Gateway {
	g := &Gateway{actions: make(map[string]action)}

	register(g, "criar_comanda", todos, s.Comandas.Abrir)
	register(g, "adicionar_item", todos, s.Comandas.AdicionarItem)
	register(g, "criar_cliente", todos, s.Clientes.Criar)
	register(g, "movimento_caixa", todos, s.Caixa.RegistrarMovimento)

	register(g, "criar_produto", somenteAdm, s.Produtos.Criar)
	register(g, "atualizar_produto", somenteAdm, s.Produtos.Atualizar)
	register(g, "excluir_produto", somenteAdm, func(ctx context.Context, req dto.ExcluirProdutoRequest) (map[string]interface{}, error) {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, &service.ValidationError{Msg: "id inválido"}
		}
		removido, err := s.Produtos.Excluir(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"id": req.ID, "removido": removido, "desativado": !removido}, nil
	})
	register(g, "atualizar_cliente", somenteAdm, s.Clientes.Atualizar)
	register(g, "criar_mesa", somenteAdm, s.Mesas.Criar)
	register(g, "atualizar_mesa", somenteAdm, s.Mesas.Atualizar)
	register(g, "excluir_mesa", somenteAdm, func(ctx context.Context, req dto.ExcluirMesaRequest) (map[string]interface{}, error) {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, &service.ValidationError{Msg: "id inválido"}
		}
		if err := s.Mesas.Excluir(ctx, id); err != nil {
			return nil, err
		}
		return map[string]interface{}{"id": req.ID, "removido": true}, nil
	})
	register(g, "fechar_caixa", somenteAdm, s.Caixa.Fechar)
	register(g, "entrada_estoque", somenteAdm, s.Estoque.Entrada)
	register(g, "ajuste_estoque", somenteAdm, s.Estoque.Ajuste)
	register(g, "registrar_movimento_estoque", somenteAdm, s.Estoque.RegistrarMovimento)
	register(g, "reconciliar_estoque", somenteAdm, func(ctx context.Context, req dto.ReconciliarEstoqueRequest) (*dto.ReconciliacaoResponse, error) {
		return s.Estoque.Reconciliar(ctx, req.Corrigir)
	})
	register(g, "atualizar_empresa", somenteAdm, s.Empresa.Atualizar)

	return g
}

// register binds an action name to a typed service call. Params are decoded
// into Req and validated before fn runs.
func register[Req any, Resp any](g *Gateway, nome string, papeis []string, fn func(context.Context, Req) (Resp, error)) {
	permitidos := make(map[string]bool, len(papeis))
	for _, p := range papeis {
		permitidos[p] = true
	}
	g.actions[nome] = action{
		papeis: permitidos,
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req Req
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &req); err != nil {
					return nil, &ParamsError{Err: err}
				}
			}
			if err := dto.Validate.Struct(req); err != nil {
				return nil, err
			}
			return fn(ctx, req)
		},
	}
}

// Execute runs the named action on behalf of a caller holding papel.
func (g *Gateway) Execute(ctx context.Context, papel, nome string, params json.RawMessage) (interface{}, error) {
	a, ok := g.actions[nome]
	if !ok {
		return nil, ErrAcaoDesconhecida
	}
	if !a.papeis[papel] {
		return nil, ErrSemPermissao
	}
	return a.run(ctx, params)
}

// Actions lists the registered action names, sorted.
func (g *Gateway) Actions() []string {
	nomes := make([]string, 0, len(g.actions))
	for nome := range g.actions {
		nomes = append(nomes, nome)
	}
	sort.Strings(nomes)
	return nomes
}
