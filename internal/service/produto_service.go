package service

import (
	"context"
	"strings"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProdutoService defines the business logic contract for products.
// Stock is never edited here: initial stock becomes an entrada movement and
// later changes go through EstoqueService.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	// Excluir hard-deletes a product without history; otherwise it is only
	// deactivated. The returned bool reports whether the row was removed.
	Excluir(ctx context.Context, id uuid.UUID) (bool, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
}

type produtoService struct {
	repo          repository.ProdutoRepository
	comandaRepo   repository.ComandaRepository
	movimentoRepo repository.MovimentoEstoqueRepository
	estoque       EstoqueService
	cache         *ProdutoCache
}

func NewProdutoService(
	repo repository.ProdutoRepository,
	comandaRepo repository.ComandaRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	estoque EstoqueService,
	cache *ProdutoCache,
) ProdutoService {
	return &produtoService{
		repo:          repo,
		comandaRepo:   comandaRepo,
		movimentoRepo: movimentoRepo,
		estoque:       estoque,
		cache:         cache,
	}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if !req.Preco.IsPositive() {
		return nil, invalido("preco deve ser maior que zero")
	}
	if req.EstoqueInicial < 0 || req.EstoqueMinimo < 0 {
		return nil, invalido("estoque não pode ser negativo")
	}
	controla := true
	if req.ControlaEstoque != nil {
		controla = *req.ControlaEstoque
	}
	if !controla && req.EstoqueInicial > 0 {
		return nil, invalido("estoque_inicial exige controla_estoque")
	}

	p := &model.Produto{
		Nome:            strings.TrimSpace(req.Nome),
		Preco:           req.Preco.Round(2),
		Categoria:       strings.TrimSpace(req.Categoria),
		EstoqueMinimo:   req.EstoqueMinimo,
		ControlaEstoque: controla,
		Ativo:           true,
		FotoURL:         trimmed(req.FotoURL),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		if controla && req.EstoqueInicial > 0 {
			_, err := s.estoque.MovimentarTx(tx, p, model.EstoqueEntrada, req.EstoqueInicial, "Estoque inicial", nil)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("produto_id", p.ID.String()).Str("nome", p.Nome).Msg("produto criado")
	resp := produtoToResponse(p)
	return &resp, nil
}

// Atualizar edits catalog fields. controla_estoque cannot flip while the
// product sits on an open order: returning those lines to stock depends on
// the flag they were sold under.
func (s *produtoService) Atualizar(ctx context.Context, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	id, err := parseID(req.ID, "id")
	if err != nil {
		return nil, err
	}
	if req.Preco != nil && !req.Preco.IsPositive() {
		return nil, invalido("preco deve ser maior que zero")
	}
	if req.EstoqueMinimo != nil && *req.EstoqueMinimo < 0 {
		return nil, invalido("estoque_minimo não pode ser negativo")
	}

	var p *model.Produto
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, ErrProdutoNaoEncontrado)
		}
		if req.ControlaEstoque != nil && *req.ControlaEstoque != p.ControlaEstoque {
			abertos, err := s.comandaRepo.CountItensAbertosByProdutoTx(tx, id)
			if err != nil {
				return err
			}
			if abertos > 0 {
				return ErrProdutoEmComandaAberta
			}
			p.ControlaEstoque = *req.ControlaEstoque
		}

		if req.Nome != nil {
			p.Nome = strings.TrimSpace(*req.Nome)
		}
		if req.Preco != nil {
			p.Preco = req.Preco.Round(2)
		}
		if req.Categoria != nil {
			p.Categoria = strings.TrimSpace(*req.Categoria)
		}
		if req.EstoqueMinimo != nil {
			p.EstoqueMinimo = *req.EstoqueMinimo
		}
		if req.Ativo != nil {
			p.Ativo = *req.Ativo
		}
		if req.FotoURL != nil {
			p.FotoURL = trimmed(req.FotoURL)
		}
		return s.repo.UpdateTx(tx, p)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidar(ctx, p.ID)
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) Excluir(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, notFound(err, ErrProdutoNaoEncontrado)
	}
	linhas, err := s.comandaRepo.CountItensByProduto(ctx, id)
	if err != nil {
		return false, err
	}
	movimentos, err := s.movimentoRepo.CountByProduto(ctx, id)
	if err != nil {
		return false, err
	}
	defer s.cache.Invalidar(ctx, id)

	if linhas > 0 || movimentos > 0 {
		p.Ativo = false
		if err := s.repo.Update(ctx, p); err != nil {
			return false, err
		}
		log.Info().Str("produto_id", id.String()).Msg("produto com histórico desativado")
		return false, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	log.Info().Str("produto_id", id.String()).Msg("produto excluído")
	return true, nil
}

func (s *produtoService) Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProdutoNaoEncontrado)
	}
	resp := produtoToResponse(p)
	s.cache.Set(ctx, &resp)
	return &resp, nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	filter.Page, filter.Limit = dto.Page(filter.Page, filter.Limit, 50, 500)
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		data = append(data, produtoToResponse(&produtos[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProdutoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func produtoToResponse(p *model.Produto) dto.ProdutoResponse {
	return dto.ProdutoResponse{
		ID:              p.ID.String(),
		Nome:            p.Nome,
		Preco:           p.Preco,
		Categoria:       p.Categoria,
		EstoqueAtual:    p.EstoqueAtual,
		EstoqueMinimo:   p.EstoqueMinimo,
		ControlaEstoque: p.ControlaEstoque,
		EstoqueBaixo:    p.EstoqueBaixo(),
		Ativo:           p.Ativo,
		FotoURL:         p.FotoURL,
	}
}
