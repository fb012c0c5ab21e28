package router

import (
	"time"

	"clubpos/internal/config"
	"clubpos/internal/handler"
	"clubpos/internal/infra"
	"clubpos/internal/middleware"
	"clubpos/internal/repository"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/FlexDB/Redis
func New(cfg *config.Config, db, flexDB *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	cartStore := infra.NewRedisCartStore(rdb, time.Duration(cfg.CarroTTLMinutes)*time.Minute)
	var mailer service.Mailer
	if pool, err := infra.NewSenderPool(cfg); err != nil {
		log.Warn().Err(err).Msg("sender pool disabled, receipt emails off")
	} else {
		mailer = pool
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	permisoRepo := repository.NewPermisoRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	aperturaRepo := repository.NewAperturaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	medioPagoRepo := repository.NewMedioPagoRepository(db)
	flexRepo := repository.NewFlexRepository(flexDB)

	// ── Services ─────────────────────────────────────────────────────────────
	logger := log.Logger
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	cajaSvc := service.NewCajaService(cajaRepo, permisoRepo)
	catalogoSvc := service.NewCatalogoService(cajaSvc, catalogoRepo, flexRepo, cfg, logger)
	carroSvc := service.NewCarroService(cartStore, cajaSvc, cajaRepo, catalogoSvc, catalogoRepo, flexRepo, cfg, logger)
	aperturaSvc := service.NewAperturaService(aperturaRepo, ventaRepo, permisoRepo, cajaSvc, logger)
	ventaSvc := service.NewVentaService(ventaRepo, aperturaRepo, clienteRepo, medioPagoRepo, cajaSvc, carroSvc, mailer, logger)
	exportSvc := service.NewExportService(aperturaRepo, ventaRepo, cajaSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, catalogoSvc)
	carroH := handler.NewCarroHandler(carroSvc)
	aperturaH := handler.NewAperturaHandler(aperturaSvc, exportSvc)
	ventaH := handler.NewVentaHandler(ventaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, flexDB, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/cajas", cajaH.Listar)
		v1.GET("/cajas/:id/productos", cajaH.Productos)
		v1.GET("/cajas/:id/apertura", aperturaH.Activa)

		v1.POST("/cajas/:id/carro", carroH.Stage)
		v1.GET("/cajas/:id/carro", carroH.Restaurar)

		v1.POST("/aperturas", aperturaH.Abrir)
		v1.GET("/aperturas", aperturaH.Listar)
		v1.POST("/aperturas/:id/cierre", aperturaH.Cerrar)
		v1.GET("/aperturas/:id/total", aperturaH.Total)
		v1.GET("/aperturas/:id/export", aperturaH.Exportar)

		v1.POST("/ventas", ventaH.Registrar)
	}

	return r
}
