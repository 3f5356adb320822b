package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Port                 string
	Environment          string
	LogLevel             string
	LogFormat            string
	PredictiveModelPath  string
	ForecastModelPath    string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	PredictionCacheTTL   time.Duration
	TracingEnabled       bool
	ServiceName          string
	AllowedOrigins       []string
	RepositoryURL        string
	MonitoringMaxEntries int
	ShutdownTimeout      time.Duration
}

// LoadConfig loads configuration from environment variables, falling back to
// configs/config.yaml and then to defaults.
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// 設定ファイルは任意（見つからなければデフォルトと環境変数のみ）
	_ = v.ReadInConfig()

	return &Config{
		Port:                 v.GetString("port"),
		Environment:          strings.ToLower(v.GetString("environment")),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		PredictiveModelPath:  v.GetString("predictive_model_path"),
		ForecastModelPath:    v.GetString("forecast_model_path"),
		RedisAddr:            v.GetString("redis_addr"),
		RedisPassword:        v.GetString("redis_password"),
		RedisDB:              v.GetInt("redis_db"),
		PredictionCacheTTL:   v.GetDuration("prediction_cache_ttl"),
		TracingEnabled:       v.GetBool("tracing_enabled"),
		ServiceName:          v.GetString("service_name"),
		AllowedOrigins:       splitList(v.GetString("allowed_origins")),
		RepositoryURL:        v.GetString("repository_url"),
		MonitoringMaxEntries: v.GetInt("monitoring_max_entries"),
		ShutdownTimeout:      v.GetDuration("shutdown_timeout"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("predictive_model_path", "models/Predictive/xgb_pipeline.json")
	v.SetDefault("forecast_model_path", "models/Forecasting/prophet_model.json")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("prediction_cache_ttl", "1h")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("service_name", "sales-prediction-api")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("repository_url", "https://github.com/Paiynthalir/Retail_API")
	v.SetDefault("monitoring_max_entries", 10000)
	v.SetDefault("shutdown_timeout", "10s")
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + c.Port
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
