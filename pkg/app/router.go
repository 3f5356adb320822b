package app

import (
	"net/http"

	"hunt-sales-api/pkg/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
}

// Routes はルーターに登録するハンドラー群です。
type Routes struct {
	Info       *handlers.InfoHandler
	Sales      *handlers.SalesHandler
	Monitoring *handlers.MonitoringHandler
	Access     gin.HandlerFunc
	Metrics    http.Handler
}

// NewRouter registers middleware and every route of the service.
func NewRouter(cfg RouterConfig, routes Routes) *gin.Engine {
	r := gin.New()

	// ミドルウェアの登録
	r.Use(gin.Recovery())
	if routes.Access != nil {
		r.Use(routes.Access)
	}
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	// 概要・ヘルスチェック（モデルには触れない）
	r.GET("/", routes.Info.Root)
	r.GET("/health", routes.Info.HealthCheck)
	r.GET("/health/", routes.Info.HealthCheck)

	// 売上予測API
	sales := r.Group("/sales")
	{
		sales.GET("/stores/items", routes.Sales.PredictStoreItemSales)
		sales.GET("/stores/items/", routes.Sales.PredictStoreItemSales)
		sales.GET("/national", routes.Sales.ForecastNationalSales)
		sales.GET("/national/", routes.Sales.ForecastNationalSales)
		sales.GET("/national/export", routes.Sales.ExportNationalForecast)
	}

	// モニタリングAPI
	if routes.Monitoring != nil {
		r.GET("/monitoring/logs", routes.Monitoring.GetLogs)
	}
	if routes.Metrics != nil {
		r.GET("/metrics", gin.WrapH(routes.Metrics))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}
