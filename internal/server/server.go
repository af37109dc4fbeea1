// Package server exposes the parking API over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/parkwise/internal/config"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type ServerParam struct {
	fx.In

	Config     config.Config
	Log        *zap.Logger
	DB         *gorm.DB            `optional:"true"`
	Gatherer   prometheus.Gatherer `optional:"true"`
	FeeSvc     feedomain.Service
	ZoneSvc    zonedomain.Service
	VehicleSvc vehicledomain.Service
	SessionSvc sessiondomain.Service
}

type Server struct {
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	engine *gin.Engine

	gatherer   prometheus.Gatherer
	feeSvc     feedomain.Service
	zoneSvc    zonedomain.Service
	vehicleSvc vehicledomain.Service
	sessionSvc sessiondomain.Service
}

func NewServer(p ServerParam) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := p.Log.Named("http")
	engine := gin.New()
	engine.Use(RequestID(), Recovery(log), AccessLog(log))

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:        p.Config,
		log:        log,
		db:         p.DB,
		engine:     engine,
		gatherer:   gatherer,
		feeSvc:     p.FeeSvc,
		zoneSvc:    p.ZoneSvc,
		vehicleSvc: p.VehicleSvc,
		sessionSvc: p.SessionSvc,
	}
	s.RegisterSystemRoutes()
	s.RegisterAPIRoutes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RegisterSystemRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/quotes", s.CreateQuote)

	api.POST("/zones", s.CreateZone)
	api.GET("/zones", s.ListZones)
	api.GET("/zones/:code", s.GetZone)
	api.PUT("/zones/:code", s.UpdateZone)

	api.POST("/vehicles", s.RegisterVehicle)
	api.GET("/vehicles", s.ListVehicles)
	api.GET("/vehicles/:id", s.GetVehicle)

	api.POST("/sessions", s.StartSession)
	api.GET("/sessions/active", s.GetActiveSession)
	api.GET("/sessions/:id/fee", s.GetSessionFee)
	api.POST("/sessions/:id/end", s.EndSession)
}

// Health reports liveness and, when a database is wired, whether it answers.
func (s *Server) Health(c *gin.Context) {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP binds the listener on start and drains in-flight requests on stop.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if timeout := s.cfg.HTTP.ShutdownTimeout; timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return srv.Shutdown(ctx)
		},
	})
}
