package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	"github.com/hashyield/powergrid/internal/config"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
	positiondomain "github.com/hashyield/powergrid/internal/position/domain"
	"github.com/hashyield/powergrid/internal/scheduler"
	userdomain "github.com/hashyield/powergrid/internal/user/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	userSvc      userdomain.Service
	catalogSvc   catalogdomain.Service
	orderSvc     orderdomain.Service
	ledgerSvc    ledgerdomain.Service
	positionRepo positiondomain.Repository
	scheduler    *scheduler.Manager
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	UserSvc      userdomain.Service
	CatalogSvc   catalogdomain.Service
	OrderSvc     orderdomain.Service
	LedgerSvc    ledgerdomain.Service
	PositionRepo positiondomain.Repository
	Scheduler    *scheduler.Manager `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		userSvc:      p.UserSvc,
		catalogSvc:   p.CatalogSvc,
		orderSvc:     p.OrderSvc,
		ledgerSvc:    p.LedgerSvc,
		positionRepo: p.PositionRepo,
		scheduler:    p.Scheduler,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(UserRequired())

	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/upgrade", s.UpgradeOrder)
	api.POST("/orders/:order_no/cancel", s.CancelOrder)
	api.POST("/orders/:order_no/paid", s.MarkOrderPaid)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:order_no", s.GetOrder)

	api.GET("/packages", s.ListPackages)
	api.GET("/packages/:id", s.GetPackage)

	api.GET("/assets", s.GetAssets)
	api.GET("/transactions", s.ListTransactions)
	api.GET("/positions", s.ListPositions)

	cron := api.Group("/cron")
	cron.POST("/start", s.StartCron)
	cron.POST("/stop", s.StopCron)
	cron.POST("/run", s.RunCronOnce)
	cron.GET("/status", s.CronStatus)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
