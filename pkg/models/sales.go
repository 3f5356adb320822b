package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateLayout はAPIで受け付ける日付形式 (YYYY-MM-DD) です。
const DateLayout = "2006-01-02"

// StoreItemQuery is the raw query string of the store/item prediction endpoint.
type StoreItemQuery struct {
	ItemID  string `form:"item_id"`
	StoreID string `form:"store_id"`
	Date    string `form:"date"`
}

// StoreItemRequest は検証済みの店舗・商品予測リクエストです。
type StoreItemRequest struct {
	ItemID  string
	DeptID  string
	StoreID string
	Date    time.Time
}

// FeatureRecord is the single-row feature table fed to the prediction
// pipeline. Every column holds exactly one value.
type FeatureRecord struct {
	DeptID    []string `json:"dept_id"`
	StoreID   []string `json:"store_id"`
	DayName   []string `json:"day_name"`
	MonthName []string `json:"month_name"`
	Year      []string `json:"year"`
}

// FeatureColumns は予測パイプラインの学習時カラム順です。
var FeatureColumns = []string{"dept_id", "store_id", "day_name", "month_name", "year"}

// Columns returns the record keyed by column name.
func (r FeatureRecord) Columns() map[string][]string {
	return map[string][]string{
		"dept_id":    r.DeptID,
		"store_id":   r.StoreID,
		"day_name":   r.DayName,
		"month_name": r.MonthName,
		"year":       r.Year,
	}
}

// StoreItemPrediction 店舗・商品単位の売上予測レスポンス
type StoreItemPrediction struct {
	Prediction float64 `json:"prediction"`
}

// NationalForecastQuery is the raw query string of the national forecast endpoint.
type NationalForecastQuery struct {
	Date string `form:"date"`
}

// ForecastPoint 1日分の全国売上予測
type ForecastPoint struct {
	Date        time.Time
	SalesAmount float64
}

// ForecastSeries is an ordered run of daily forecasts. It marshals to a JSON
// object keyed by YYYY-MM-DD in slice order.
type ForecastSeries []ForecastPoint

// MarshalJSON writes the series as {"YYYY-MM-DD": amount, ...}.
func (s ForecastSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, point := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(point.Date.Format(DateLayout))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(point.SalesAmount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dates returns the YYYY-MM-DD keys in order.
func (s ForecastSeries) Dates() []string {
	dates := make([]string, len(s))
	for i, point := range s {
		dates[i] = point.Date.Format(DateLayout)
	}
	return dates
}

// ErrorResponse 400/500 エラー時のレスポンスボディ
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse ヘルスチェックのレスポンス
type HealthResponse struct {
	Message string `json:"message"`
}

// ServiceInfo describes the API on the root endpoint.
type ServiceInfo struct {
	Description             string            `json:"description"`
	Endpoints               map[string]string `json:"endpoints"`
	ExpectedInputParameters map[string]string `json:"expected_input_parameters"`
	OutputFormat            OutputFormat      `json:"output_format"`
	GithubRepo              string            `json:"github_repo"`
}

// OutputFormat documents the response shapes on the root endpoint.
type OutputFormat struct {
	National    map[string]string `json:"national"`
	StoresItems map[string]string `json:"stores_items"`
}
