package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/rtb-12/StorySentinel-sub000/internal/http/handlers"
	httpMW "github.com/rtb-12/StorySentinel-sub000/internal/http/middleware"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	// AuthMiddleware guards mutating routes; nil leaves them open.
	AuthMiddleware *httpMW.AuthMiddleware

	IPAssetHandler *httpH.IPAssetHandler
	AlertHandler   *httpH.AlertHandler
	DisputeHandler *httpH.DisputeHandler
	UtilsHandler   *httpH.UtilsHandler
	HealthHandler  *httpH.HealthHandler
}

const metricsPath = "/metrics"

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck", "/readyz", metricsPath))
	r.Use(httpMW.Metrics(cfg.Metrics, metricsPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET(metricsPath, gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// IP assets
	if cfg.IPAssetHandler != nil {
		api.POST("/ip-assets/validate", cfg.IPAssetHandler.Validate)
		api.GET("/ip-assets", cfg.IPAssetHandler.List)
		api.GET("/ip-assets/:id", cfg.IPAssetHandler.Get)
		api.GET("/ip-assets/:id/infringements", cfg.IPAssetHandler.Infringements)

		protected.POST("/ip-assets", cfg.IPAssetHandler.Register)
		protected.POST("/ip-assets/:id/chain", cfg.IPAssetHandler.ImportFromChain)
		protected.POST("/monitoring/refresh", cfg.IPAssetHandler.Refresh)
	}

	// Alerts
	if cfg.AlertHandler != nil {
		api.GET("/alerts", cfg.AlertHandler.List)
		protected.PATCH("/alerts/:id", cfg.AlertHandler.UpdateStatus)
	}

	// Disputes
	if cfg.DisputeHandler != nil {
		api.GET("/disputes", cfg.DisputeHandler.List)
		api.GET("/disputes/:id/chain", cfg.DisputeHandler.ChainStatus)
		protected.POST("/disputes", cfg.DisputeHandler.Create)
		protected.PATCH("/disputes/:id", cfg.DisputeHandler.UpdateStatus)
	}

	// Utils
	if cfg.UtilsHandler != nil {
		api.POST("/utils/coerce-address", cfg.UtilsHandler.CoerceAddress)
		api.POST("/utils/synthesize-hash", cfg.UtilsHandler.SynthesizeHash)
	}

	return r
}
