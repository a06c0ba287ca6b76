package router

import (
	"time"

	"comanda/internal/config"
	"comanda/internal/gateway"
	"comanda/internal/handler"
	"comanda/internal/middleware"
	"comanda/internal/model"
	"comanda/internal/repository"
	"comanda/internal/service"
	"comanda/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Channels are the optional report delivery channels. Leave a field nil to
// disable it.
type Channels struct {
	Mailer   worker.Mailer
	Notifier worker.Notifier
}

// Background exposes what cmd/server needs to start async work.
type Background struct {
	Processors map[string]worker.Processor
	Estoque    service.EstoqueService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Gateway/Service ← Repository ← DB/Redis.
// rdb may be nil: the product cache is skipped and jobs run inline.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, ch Channels) (*gin.Engine, *Background) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	movimentoRepo := repository.NewMovimentoEstoqueRepository(db)
	comandaRepo := repository.NewComandaRepository(db)
	mesaRepo := repository.NewMesaRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	empresaRepo := repository.NewEmpresaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cache := service.NewProdutoCache(rdb)
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	estoqueSvc := service.NewEstoqueService(produtoRepo, movimentoRepo, cache)
	produtoSvc := service.NewProdutoService(produtoRepo, comandaRepo, movimentoRepo, estoqueSvc, cache)
	comandaSvc := service.NewComandaService(comandaRepo, mesaRepo, produtoRepo, clienteRepo, caixaRepo, movimentoRepo, estoqueSvc, cache)
	mesaSvc := service.NewMesaService(mesaRepo, comandaRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	empresaSvc := service.NewEmpresaService(empresaRepo)
	relatorioSvc := service.NewRelatorioService(comandaRepo, caixaRepo, empresaRepo)

	// Worker dispatcher, injected into the cash service for the shift report
	relatorioWorker := worker.NewRelatorioWorker(worker.RelatorioWorkerConfig{
		Relatorios:   relatorioSvc,
		Mailer:       ch.Mailer,
		Notifier:     ch.Notifier,
		StoragePath:  cfg.PDFStoragePath,
		Destinatario: cfg.RelatorioEmail,
	})
	processors := map[string]worker.Processor{
		worker.QueueRelatorioTurno: relatorioWorker,
	}
	dispatcher := worker.NewDispatcher(rdb, processors)
	caixaSvc := service.NewCaixaService(caixaRepo, dispatcher)

	gw := gateway.New(gateway.Services{
		Comandas: comandaSvc,
		Produtos: produtoSvc,
		Estoque:  estoqueSvc,
		Caixa:    caixaSvc,
		Mesas:    mesaSvc,
		Clientes: clienteSvc,
		Empresa:  empresaSvc,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	adminH := handler.NewAdminHandler(gw)
	comandasH := handler.NewComandasHandler(comandaSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	consultasH := handler.NewConsultasHandler(mesaSvc, produtoSvc, clienteSvc, estoqueSvc, relatorioSvc, empresaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, relatorioWorker.Circuitos()...))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/garcom", middleware.LoginRateLimiter(), authH.LoginGarcom)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Both roles reach every route below; the gateway and
	// the admin-only groups narrow it down.
	todos := middleware.RequireRole(model.PapelAdmin, model.PapelGarcom)
	adm := middleware.RequireRole(model.PapelAdmin)

	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Gateway: per-action role checks
		api.POST("/admin", todos, adminH.Executar)

		comandas := api.Group("/comandas", todos)
		{
			comandas.GET("", comandasH.Listar)
			comandas.GET("/:id", comandasH.Obter)
			comandas.POST("/:id", comandasH.Fechar)
			comandas.PUT("/:id", comandasH.RemoverItem)
			comandas.PATCH("/:id", comandasH.Cancelar)
			comandas.DELETE("/:id", adm, comandasH.Excluir)
		}

		caixa := api.Group("/caixa")
		{
			caixa.POST("/abrir", adm, caixaH.Abrir)
			caixa.GET("/atual", todos, caixaH.Atual)
			caixa.GET("/historico", adm, caixaH.Historico)
			caixa.GET("/:id/resumo", adm, caixaH.Resumo)
		}

		api.GET("/mesas", todos, consultasH.ListarMesas)
		api.GET("/produtos", todos, consultasH.ListarProdutos)
		api.GET("/produtos/:id", todos, consultasH.ObterProduto)
		api.GET("/clientes", todos, consultasH.ListarClientes)
		api.GET("/empresa", todos, consultasH.Empresa)

		api.GET("/estoque/alertas", adm, consultasH.Alertas)
		api.GET("/estoque/movimentos", adm, consultasH.ListarMovimentos)
		api.GET("/relatorios/vendas", adm, consultasH.RelatorioVendas)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Background{Processors: processors, Estoque: estoqueSvc}
}
