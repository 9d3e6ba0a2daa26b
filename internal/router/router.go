package router

import (
	"time"

	"cochera/internal/config"
	"cochera/internal/handler"
	"cochera/internal/infra"
	"cochera/internal/metrics"
	"cochera/internal/middleware"
	"cochera/internal/model"
	"cochera/internal/repository"
	"cochera/internal/service"
	"cochera/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Mailer     *infra.Mailer
	PDF        *infra.PDFRenderer
	Tokens     *infra.TokenStore
	Dispatcher *worker.Dispatcher
	Clock      service.Clock
}

// Services is shared by the HTTP layer and the worker pool.
type Services struct {
	Auth          service.AuthService
	Entradas      service.EntradaService
	Turnos        service.TurnoService
	Clientes      service.ClienteService
	Alertas       service.AlertaService
	Configuracion service.ConfiguracionService
	Dashboard     service.DashboardService
}

// NewServices wires Service ← Repository ← DB.
func NewServices(d Deps) *Services {
	trabajadorRepo := repository.NewTrabajadorRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	entradaRepo := repository.NewEntradaRepository(d.DB)
	cajaRepo := repository.NewCajaRepository(d.DB)
	turnoRepo := repository.NewTurnoRepository(d.DB)
	configRepo := repository.NewConfiguracionRepository(d.DB)

	configSvc := service.NewConfiguracionService(configRepo)
	return &Services{
		Auth:          service.NewAuthService(trabajadorRepo, turnoRepo, d.Tokens, d.Config, d.Clock),
		Entradas:      service.NewEntradaService(clienteRepo, entradaRepo, cajaRepo, turnoRepo, configSvc, d.Clock),
		Turnos:        service.NewTurnoService(turnoRepo, cajaRepo, entradaRepo, d.Dispatcher, d.Clock),
		Clientes:      service.NewClienteService(clienteRepo, entradaRepo, configSvc),
		Alertas:       service.NewAlertaService(entradaRepo, configSvc, d.Clock),
		Configuracion: configSvc,
		Dashboard:     service.NewDashboardService(cajaRepo, entradaRepo, clienteRepo, trabajadorRepo, d.Clock),
	}
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps, svc *Services) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.Middleware())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	usuariosH := handler.NewUsuariosHandler(svc.Auth)
	entradasH := handler.NewEntradasHandler(svc.Entradas, d.PDF)
	clientesH := handler.NewClientesHandler(svc.Clientes)
	turnosH := handler.NewTurnosHandler(svc.Turnos)
	alertasH := handler.NewAlertasHandler(svc.Alertas)
	adminH := handler.NewAdminHandler(svc.Dashboard, svc.Configuracion)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Mailer, worker.DLQKeys()...))
	r.GET("/metrics", metrics.Handler())

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. A worker whose shift was closed is logged out here.
	v1 := r.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret, d.Tokens),
		middleware.TurnoVigente(svc.Turnos),
	)
	{
		v1.POST("/auth/logout", authH.Logout)

		op := v1.Group("", middleware.RequireRole(model.RolTrabajador, model.RolAdmin))
		{
			op.GET("/clientes/placa/:placa", clientesH.Buscar)
			op.GET("/clientes/placa/:placa/historial", clientesH.Historial)

			entradas := op.Group("/entradas")
			{
				entradas.POST("", entradasH.Registrar)
				entradas.GET("/en-cochera", entradasH.EnCochera)
				entradas.POST("/salida", entradasH.Salida)
				entradas.POST("/autorizar-salida", entradasH.AutorizarSalida)
				entradas.GET("/:id", entradasH.Obtener)
				entradas.PUT("/:id", entradasH.Actualizar)
				entradas.GET("/:id/cobro", entradasH.Cobro)
				entradas.GET("/:id/ticket", entradasH.Ticket)
				entradas.GET("/:id/ticket.pdf", entradasH.TicketPDF)
			}

			op.GET("/capacidad", alertasH.Capacidad)
			op.GET("/alertas", alertasH.Alertas)
			op.GET("/historial", entradasH.Historial)

			turnos := op.Group("/turnos")
			{
				turnos.GET("/actual", turnosH.Actual)
				turnos.POST("/cerrar", turnosH.Cerrar)
				turnos.GET("/mis-reportes", turnosH.MisReportes)
				turnos.GET("/mis-reportes/:id", turnosH.DetalleMio)
			}
			op.GET("/movimientos/:id", turnosH.Movimiento)
		}

		admin := v1.Group("/admin", middleware.RequireRole(model.RolAdmin))
		{
			admin.GET("/dashboard", adminH.Dashboard)
			admin.GET("/configuracion", adminH.Configuracion)
			admin.PUT("/configuracion", adminH.GuardarConfiguracion)

			admin.GET("/turnos/activo", turnosH.Activo)
			admin.GET("/turnos", turnosH.Reportes)
			admin.GET("/turnos/:id", turnosH.Detalle)

			admin.GET("/historial/export", entradasH.ExportarHistorial)

			usuarios := admin.Group("/usuarios")
			{
				usuarios.POST("", usuariosH.Crear)
				usuarios.GET("", usuariosH.Listar)
				usuarios.PUT("/:id", usuariosH.Actualizar)
				usuarios.DELETE("/:id", usuariosH.Desactivar)
				usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
			}

			clientes := admin.Group("/clientes")
			{
				clientes.GET("", clientesH.Listar)
				clientes.POST("", clientesH.Crear)
				clientes.PUT("/:id", clientesH.Actualizar)
				clientes.DELETE("/:id", clientesH.Eliminar)
			}
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
