package ml

import (
	"context"
	"time"
)

// Regressor は表形式の入力から数値を予測するモデルの最小インターフェースです。
// 返却するスライスは入力フレームの行と同じ順序・長さです。
type Regressor interface {
	Predict(ctx context.Context, frame *Frame) ([]float64, error)
}

// ForecastRow は予測モデルが返す1日分の結果です。
type ForecastRow struct {
	Date  time.Time `json:"ds"`
	Trend float64   `json:"trend"`
	Yhat  float64   `json:"yhat"`
}

// Forecaster は日付列に対して将来値を予測するモデルの最小インターフェースです。
// 入力1日につき1行を入力と同じ順序で返します。
type Forecaster interface {
	Predict(ctx context.Context, dates []time.Time) ([]ForecastRow, error)
}

// ModelSet is the pair of model handles shared by every request.
// It is built once at startup and never mutated afterwards.
type ModelSet struct {
	Regressor         Regressor
	Forecaster        Forecaster
	PredictiveVersion string
	ForecastVersion   string
}
