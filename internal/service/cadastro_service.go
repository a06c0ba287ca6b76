package service

import (
	"context"
	"errors"
	"strings"

	"comanda/internal/dto"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Mesas ─────────────────────────────────────────────────────────────────────

type MesaService interface {
	Criar(ctx context.Context, req dto.CriarMesaRequest) (*dto.MesaResponse, error)
	Atualizar(ctx context.Context, req dto.AtualizarMesaRequest) (*dto.MesaResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context) ([]dto.MesaResponse, error)
}

type mesaService struct {
	repo        repository.MesaRepository
	comandaRepo repository.ComandaRepository
}

func NewMesaService(repo repository.MesaRepository, comandaRepo repository.ComandaRepository) MesaService {
	return &mesaService{repo: repo, comandaRepo: comandaRepo}
}

func (s *mesaService) Criar(ctx context.Context, req dto.CriarMesaRequest) (*dto.MesaResponse, error) {
	if req.Numero < 1 {
		return nil, invalido("numero deve ser maior que zero")
	}
	m := &model.Mesa{Numero: req.Numero, Capacidade: req.Capacidade, Status: model.MesaLivre}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMesaDuplicada
		}
		return nil, err
	}
	return mesaToResponse(m, nil), nil
}

// Atualizar changes numero, capacity or status. A table holding an open
// order cannot be set livre by hand; closing or cancelling the order does it.
func (s *mesaService) Atualizar(ctx context.Context, req dto.AtualizarMesaRequest) (*dto.MesaResponse, error) {
	id, err := parseID(req.ID, "id")
	if err != nil {
		return nil, err
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMesaNaoEncontrada)
	}

	var aberta *uuid.UUID
	if c, err := s.comandaRepo.FindAbertaByMesa(ctx, id); err == nil {
		aberta = &c.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.Numero != nil {
		m.Numero = *req.Numero
	}
	if req.Capacidade != nil {
		m.Capacidade = *req.Capacidade
	}
	if req.Status != nil {
		switch *req.Status {
		case model.MesaLivre, model.MesaOcupada, model.MesaReservada:
		default:
			return nil, invalido("status de mesa inválido: %s", *req.Status)
		}
		if aberta != nil && *req.Status != model.MesaOcupada {
			return nil, ErrMesaOcupada
		}
		m.Status = *req.Status
	}

	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMesaDuplicada
		}
		return nil, err
	}
	return mesaToResponse(m, aberta), nil
}

func (s *mesaService) Excluir(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, ErrMesaNaoEncontrada)
	}
	if m.Status == model.MesaOcupada {
		return ErrMesaOcupada
	}
	n, err := s.comandaRepo.CountByMesa(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrMesaComHistorico
	}
	return s.repo.Delete(ctx, id)
}

func (s *mesaService) Listar(ctx context.Context) ([]dto.MesaResponse, error) {
	mesas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	abertas, err := s.comandaRepo.ListAbertas(ctx)
	if err != nil {
		return nil, err
	}
	porMesa := make(map[uuid.UUID]uuid.UUID, len(abertas))
	for _, c := range abertas {
		if c.MesaID != nil {
			porMesa[*c.MesaID] = c.ID
		}
	}

	resp := make([]dto.MesaResponse, 0, len(mesas))
	for i := range mesas {
		var aberta *uuid.UUID
		if cid, ok := porMesa[mesas[i].ID]; ok {
			aberta = &cid
		}
		resp = append(resp, *mesaToResponse(&mesas[i], aberta))
	}
	return resp, nil
}

func mesaToResponse(m *model.Mesa, comandaAberta *uuid.UUID) *dto.MesaResponse {
	return &dto.MesaResponse{
		ID:              m.ID.String(),
		Numero:          m.Numero,
		Status:          m.Status,
		Capacidade:      m.Capacidade,
		ComandaAbertaID: idPtrString(comandaAberta),
	}
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type ClienteService interface {
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	Atualizar(ctx context.Context, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) ([]dto.ClienteResponse, int64, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, invalido("nome é obrigatório")
	}
	c := &model.Cliente{Nome: nome, Telefone: trimmed(req.Telefone), Endereco: trimmed(req.Endereco)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Atualizar(ctx context.Context, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	id, err := parseID(req.ID, "id")
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClienteNaoEncontrado)
	}
	if req.Nome != nil {
		c.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Telefone != nil {
		c.Telefone = trimmed(req.Telefone)
	}
	if req.Endereco != nil {
		c.Endereco = trimmed(req.Endereco)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Obter(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClienteNaoEncontrado)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) ([]dto.ClienteResponse, int64, error) {
	page, limit := dto.Page(filter.Page, filter.Limit, 50, 200)
	clientes, total, err := s.repo.List(ctx, strings.TrimSpace(filter.Busca), page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		resp = append(resp, *clienteToResponse(&clientes[i]))
	}
	return resp, total, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{ID: c.ID.String(), Nome: c.Nome, Telefone: c.Telefone, Endereco: c.Endereco}
}

// ── Empresa ───────────────────────────────────────────────────────────────────

type EmpresaService interface {
	Obter(ctx context.Context) (*dto.EmpresaResponse, error)
	Atualizar(ctx context.Context, req dto.AtualizarEmpresaRequest) (*dto.EmpresaResponse, error)
}

type empresaService struct {
	repo repository.EmpresaRepository
}

func NewEmpresaService(repo repository.EmpresaRepository) EmpresaService {
	return &empresaService{repo: repo}
}

func (s *empresaService) Obter(ctx context.Context) (*dto.EmpresaResponse, error) {
	e, err := s.repo.Get(ctx)
	if err != nil {
		return nil, notFound(err, ErrEmpresaNaoConfigurada)
	}
	return empresaToResponse(e), nil
}

// Atualizar replaces the company profile, creating it on first use.
func (s *empresaService) Atualizar(ctx context.Context, req dto.AtualizarEmpresaRequest) (*dto.EmpresaResponse, error) {
	e, err := s.repo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e = &model.Empresa{}
	} else if err != nil {
		return nil, err
	}
	e.Nome = strings.TrimSpace(req.Nome)
	e.CNPJ = trimmed(req.CNPJ)
	e.Telefone = trimmed(req.Telefone)
	e.Endereco = trimmed(req.Endereco)
	e.Email = trimmed(req.Email)
	e.LogoURL = trimmed(req.LogoURL)
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return empresaToResponse(e), nil
}

func empresaToResponse(e *model.Empresa) *dto.EmpresaResponse {
	return &dto.EmpresaResponse{
		Nome:     e.Nome,
		CNPJ:     e.CNPJ,
		Telefone: e.Telefone,
		Endereco: e.Endereco,
		Email:    e.Email,
		LogoURL:  e.LogoURL,
	}
}
