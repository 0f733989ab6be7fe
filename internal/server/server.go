package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/faktur/internal/auth/domain"
	customerdomain "github.com/smallbiznis/faktur/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	reminderdomain "github.com/smallbiznis/faktur/internal/reminder/domain"
	reportingdomain "github.com/smallbiznis/faktur/internal/reporting/domain"
)

type Server struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	authSvc     authdomain.Service
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	reminderSvc reminderdomain.Service
	reportSvc   reportingdomain.Service
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	AuthSvc     authdomain.Service
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	ReminderSvc reminderdomain.Service
	ReportSvc   reportingdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:         p.Config,
		log:         p.Log.Named("server"),
		db:          p.DB,
		authSvc:     p.AuthSvc,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		reminderSvc: p.ReminderSvc,
		reportSvc:   p.ReportSvc,
	}
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)

	api := engine.Group("/api")
	api.POST("/auth/login", s.Login)

	authed := api.Group("")
	authed.Use(s.AuthRequired())

	authed.POST("/customers", s.CreateCustomer)
	authed.GET("/customers", s.ListCustomers)
	authed.GET("/customers/:id", s.GetCustomer)
	authed.PUT("/customers/:id", s.UpdateCustomer)
	authed.DELETE("/customers/:id", s.DeleteCustomer)

	authed.POST("/invoices", s.CreateInvoice)
	authed.GET("/invoices", s.ListInvoices)
	authed.GET("/invoices/overdue", s.ListOverdueInvoices)
	authed.GET("/invoices/:id", s.GetInvoice)
	authed.PUT("/invoices/:id", s.UpdateInvoice)
	authed.DELETE("/invoices/:id", s.DeleteInvoice)
	authed.POST("/invoices/:id/mark-paid", s.MarkInvoicePaid)
	authed.POST("/invoices/:id/mark-unpaid", s.MarkInvoiceUnpaid)
	authed.POST("/invoices/sweep-overdue", s.RunOverdueSweep)

	authed.GET("/reports/summary", s.ReportSummary)
	authed.GET("/reports/revenue", s.ReportRevenue)
	authed.GET("/reports/top-customers", s.ReportTopCustomers)

	authed.POST("/reminders/run", s.RunReminders)
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP ties the HTTP listener to the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, s *Server, log *zap.Logger, cfg config.Config) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine, NewServer),
	fx.Invoke(RunHTTP),
)
