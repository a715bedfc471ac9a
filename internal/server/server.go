package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tambiyash/image-lizard/internal/checkout"
	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/generation"
	generationdomain "github.com/tambiyash/image-lizard/internal/generation/domain"
	"github.com/tambiyash/image-lizard/internal/image"
	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
	"github.com/tambiyash/image-lizard/internal/ledger"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	"github.com/tambiyash/image-lizard/internal/observability"
	obsmiddleware "github.com/tambiyash/image-lizard/internal/observability/logger"
	obsmetrics "github.com/tambiyash/image-lizard/internal/observability/metrics"
	"github.com/tambiyash/image-lizard/internal/profile"
	profiledomain "github.com/tambiyash/image-lizard/internal/profile/domain"
	"github.com/tambiyash/image-lizard/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	profile.Module,
	ledger.Module,
	checkout.Module,
	generation.Module,
	image.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	profileSvc      profiledomain.Service
	ledgerSvc       ledgerdomain.Service
	checkoutSvc     checkoutdomain.Service
	generationSvc   generationdomain.Service
	imageSvc        imagedomain.Service
	generateLimiter *ratelimit.GenerateLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	ProfileSvc      profiledomain.Service
	LedgerSvc       ledgerdomain.Service
	CheckoutSvc     checkoutdomain.Service
	GenerationSvc   generationdomain.Service
	ImageSvc        imagedomain.Service
	GenerateLimiter *ratelimit.GenerateLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http"),
		genID:           p.GenID,
		profileSvc:      p.ProfileSvc,
		ledgerSvc:       p.LedgerSvc,
		checkoutSvc:     p.CheckoutSvc,
		generationSvc:   p.GenerationSvc,
		imageSvc:        p.ImageSvc,
		generateLimiter: p.GenerateLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerHealthRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Transactions --------
	api.POST("/transactions", s.CreateTransaction)
	api.GET("/transactions", s.ListTransactions)

	// -------- Profiles --------
	api.POST("/profiles", s.CreateProfile)
	api.GET("/profiles/:id", s.GetProfileByID)

	// -------- Checkout --------
	api.GET("/checkout/packages", s.ListCreditPackages)
	api.POST("/checkout/sessions", s.CreateCheckoutSession)
	api.POST("/checkout/complete", s.CompleteCheckoutSession)

	// -------- Images --------
	api.GET("/images/models", s.ListModels)
	api.POST("/images/generate", s.GenerateRateLimit(), s.GenerateImage)
	api.GET("/images", s.ListImages)
}
