package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	"github.com/neoledsrlbolivia/neopos/internal/authorization"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"github.com/neoledsrlbolivia/neopos/internal/observability/logger"
	"github.com/neoledsrlbolivia/neopos/internal/observability/metrics"
	"github.com/neoledsrlbolivia/neopos/internal/observability/tracing"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg          config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	AuthSvc      authdomain.Service
	AuthzSvc     authorization.Service
	QuotationSvc quotationdomain.Service
	CatalogSvc   catalogdomain.Service
	SaleSvc      saledomain.Service
	DrawerSvc    cashdomain.Service
	CarouselSvc  carouseldomain.Service
	AuditRec     *audit.Recorder
}

type Server struct {
	cfg          config.Config
	log          *zap.Logger
	db           *gorm.DB
	authSvc      authdomain.Service
	authzSvc     authorization.Service
	quotationSvc quotationdomain.Service
	catalogSvc   catalogdomain.Service
	saleSvc      saledomain.Service
	drawerSvc    cashdomain.Service
	carouselSvc  carouseldomain.Service
	auditRec     *audit.Recorder
	loginLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		db:           p.DB,
		authSvc:      p.AuthSvc,
		authzSvc:     p.AuthzSvc,
		quotationSvc: p.QuotationSvc,
		catalogSvc:   p.CatalogSvc,
		saleSvc:      p.SaleSvc,
		drawerSvc:    p.DrawerSvc,
		carouselSvc:  p.CarouselSvc,
		auditRec:     p.AuditRec,
		loginLimiter: newRateLimiter(p.Cfg.RateLimit.LoginLimit, p.Cfg.RateLimit.LoginWindow),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidations()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	if cfg.Tracing.Enabled {
		engine.Use(tracing.GinMiddleware(cfg.Tracing.ServiceName))
	}
	httpMetrics, err := metrics.NewHTTPMetrics(cfg.Tracing.ServiceName)
	if err != nil {
		return nil, err
	}
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine, nil
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)

	api := engine.Group("/api")
	api.POST("/auth/login", s.Login)

	protected := api.Group("")
	protected.Use(s.AuthRequired())
	{
		protected.POST("/auth/logout", s.Logout)
		protected.GET("/auth/me", s.Me)

		protected.GET("/users", s.RequireAction(authorization.ActionUserManage), s.ListUsers)
		protected.POST("/users", s.RequireAction(authorization.ActionUserManage), s.CreateUser)
		protected.DELETE("/users/:id", s.RequireAction(authorization.ActionUserManage), s.DeactivateUser)

		protected.GET("/products", s.ListProducts)
		protected.POST("/products", s.CreateProduct)
		protected.GET("/products/:id", s.GetProduct)
		protected.PATCH("/products/:id", s.UpdateProduct)
		protected.DELETE("/products/:id", s.RequireAction(authorization.ActionProductArchive), s.ArchiveProduct)
		protected.POST("/variants/:id/stock", s.AdjustStock)
		protected.GET("/attributes/:kind", s.ListAttributes)
		protected.POST("/attributes/:kind", s.AddAttribute)

		protected.POST("/quotations", s.CreateQuotation)
		protected.GET("/quotations", s.ListQuotations)
		protected.GET("/quotations/:id", s.GetQuotation)
		protected.POST("/quotations/:id/sold", s.MarkQuotationSold)
		protected.POST("/quotations/:id/void", s.RequireAction(authorization.ActionQuotationVoid), s.VoidQuotation)
		protected.GET("/quotations/:id/pdf", s.DownloadQuotationPDF)

		protected.POST("/sales", s.CreateSale)
		protected.GET("/sales", s.ListSales)
		protected.GET("/sales/:id", s.GetSale)
		protected.GET("/sales/export", s.RequireAction(authorization.ActionSalesExport), s.ExportSales)

		protected.POST("/cash-drawer/open", s.OpenDrawer)
		protected.POST("/cash-drawer/:id/close", s.RequireAction(authorization.ActionDrawerClose), s.CloseDrawer)
		protected.GET("/cash-drawer/current", s.CurrentDrawer)
		protected.GET("/cash-drawer/:id/balance", s.DrawerBalance)
		protected.POST("/cash-drawer/movements", s.RegisterMovement)
		protected.GET("/cash-drawer/movements", s.ListMovements)

		protected.GET("/carousel", s.ListCarousel)
		protected.POST("/carousel", s.RequireAction(authorization.ActionCarouselManage), s.UpsertCarouselSlot)
		protected.POST("/carousel/reorder", s.RequireAction(authorization.ActionCarouselManage), s.ReorderCarousel)
		protected.DELETE("/carousel/:id", s.RequireAction(authorization.ActionCarouselManage), s.DeactivateCarouselSlot)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, s *Server, cfg config.Config, log *zap.Logger) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
