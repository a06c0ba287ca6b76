package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"comanda/internal/config"
	"comanda/internal/dto"
	"comanda/internal/middleware"
	"comanda/internal/model"
	"comanda/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// garcomSalt is mixed into the public URL to derive the shared waiter
// password. Changing it invalidates every waiter device.
const garcomSalt = "comanda:garcom:v1"

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// LoginGarcom authenticates the shared waiter account, creating it on
	// first use.
	LoginGarcom(ctx context.Context, req dto.LoginGarcomRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// SenhaGarcom derives the shared waiter password from the backend's public
// URL: the first 24 hex chars of sha256(url + salt). It is a low-friction
// shared login for the floor staff, not a security boundary.
func SenhaGarcom(publicURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(publicURL, "/") + garcomSalt))
	return hex.EncodeToString(sum[:])[:24]
}

// EmailGarcom returns garcom@<host of publicURL>.
func EmailGarcom(publicURL string) string {
	host := "localhost"
	if u, err := url.Parse(publicURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return "garcom@" + host
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !user.Ativo {
		return nil, ErrCredenciaisInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Senha)); err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	return s.issue(user)
}

func (s *authService) LoginGarcom(ctx context.Context, req dto.LoginGarcomRequest) (*dto.LoginResponse, error) {
	esperada := SenhaGarcom(s.cfg.PublicURL)
	if subtle.ConstantTimeCompare([]byte(req.Senha), []byte(esperada)) != 1 {
		return nil, ErrCredenciaisInvalidas
	}

	email := EmailGarcom(s.cfg.PublicURL)
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.provisionarGarcom(ctx, email, esperada)
	}
	if err != nil {
		return nil, err
	}
	if !user.Ativo {
		return nil, ErrCredenciaisInvalidas
	}
	return s.issue(user)
}

func (s *authService) provisionarGarcom(ctx context.Context, email, senha string) (*model.Usuario, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:        email,
		Nome:         "Garçom",
		PasswordHash: string(hash),
		Papel:        model.PapelGarcom,
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Two devices raced on the first login.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.FindByEmail(ctx, email)
		}
		return nil, err
	}
	log.Info().Str("email", email).Msg("conta compartilhada de garçom criada")
	return user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := middleware.ParseToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.Tipo != middleware.TokenRefresh {
		return nil, ErrTokenInvalido
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalido
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Ativo {
		return nil, ErrTokenInvalido
	}
	return s.issue(user)
}

func (s *authService) CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if req.Papel != model.PapelAdmin && req.Papel != model.PapelGarcom {
		return nil, invalido("papel inválido: %s", req.Papel)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Nome:         strings.TrimSpace(req.Nome),
		PasswordHash: string(hash),
		Papel:        req.Papel,
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalido("email já cadastrado")
		}
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) issue(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, middleware.TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, middleware.TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Usuario:      usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	agora := time.Now()
	claims := middleware.JWTClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Papel:  user.Papel,
		Tipo:   tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(agora.Add(duration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Nome:  u.Nome,
		Papel: u.Papel,
		Ativo: u.Ativo,
	}
}
