package handler

import (
	"context"
	"net/http"
	"sync"

	config "hunt-sales-api/configs"
	"hunt-sales-api/pkg/app"
	"hunt-sales-api/pkg/logging"
	"hunt-sales-api/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/sirupsen/logrus"
)

var (
	router   http.Handler
	setupErr error
	once     sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// モデルの読み込みに失敗した場合はその理由を保持し、以降のリクエストは503で拒否します。
func setupApp() (http.Handler, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		application, err := app.New(context.Background(), cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Serverless app initialization failed")
			setupErr = err
			return
		}

		logger.WithFields(logrus.Fields{
			"predictive_model": application.Models.PredictiveVersion,
			"forecast_model":   application.Models.ForecastVersion,
		}).Info("Serverless app initialized")
		router = application.Router
	})
	return router, setupErr
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	engine, err := setupApp()
	if err != nil {
		body := render.JSON{Data: models.ErrorResponse{Detail: "service unavailable: " + err.Error()}}
		body.WriteContentType(w)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = body.Render(w)
		return
	}

	// Ginにリクエストを処理させる
	engine.ServeHTTP(w, r)
}
