package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hunt-sales-api/pkg/ml"
	"hunt-sales-api/pkg/models"
	"hunt-sales-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubRegressor struct {
	value float64
	err   error
	calls int
}

func (s *stubRegressor) Predict(_ context.Context, frame *ml.Frame) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, frame.Len())
	for i := range out {
		out[i] = s.value
	}
	return out, nil
}

type stubForecaster struct {
	err error
}

func (s *stubForecaster) Predict(_ context.Context, dates []time.Time) ([]ml.ForecastRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]ml.ForecastRow, len(dates))
	for i, d := range dates {
		rows[i] = ml.ForecastRow{Date: d, Yhat: 30000 + 1000*float64(i) + 0.456}
	}
	return rows, nil
}

func setupSalesRouter(regressor ml.Regressor, forecaster ml.Forecaster) *gin.Engine {
	// Ginのテストモードに設定
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	handler := NewSalesHandler(
		services.NewSalesPredictionService(regressor, "xgb@test", nil, nil, logger),
		services.NewSalesForecastService(forecaster, "prophet@test", nil, logger),
	)

	router := gin.New()
	router.GET("/sales/stores/items/", handler.PredictStoreItemSales)
	router.GET("/sales/national/", handler.ForecastNationalSales)
	router.GET("/sales/national/export", handler.ExportNationalForecast)
	return router
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestPredictStoreItemSales(t *testing.T) {
	regressor := &stubRegressor{value: 4.5678}
	router := setupSalesRouter(regressor, &stubForecaster{})

	w := get(router, "/sales/stores/items/?item_id=FOODS_3_090&store_id=CA_3&date=2016-01-01")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prediction": 4.57}`, w.Body.String())
}

func TestPredictStoreItemSalesInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		target string
		detail string
	}{
		{
			"impossible date",
			"/sales/stores/items/?item_id=FOODS_3_090&store_id=CA_3&date=2023-02-29",
			"Invalid date format. Use YYYY-mm-dd.",
		},
		{
			"bad item",
			"/sales/stores/items/?item_id=FOODS-3-090&store_id=CA_3&date=2016-01-01",
			"Invalid item ID format. Expected format is <characters>_<singledigit>_<3digits>.",
		},
		{
			"item without separators",
			"/sales/stores/items/?item_id=BADID&store_id=CA_1&date=2016-01-05",
			"Invalid item ID format. Expected format is <characters>_<singledigit>_<3digits>.",
		},
		{
			"bad store",
			"/sales/stores/items/?item_id=FOODS_3_090&store_id=NY_1&date=2016-01-01",
			"Invalid store ID. Expected values CA_#, TX_#, and WI_#",
		},
		{
			"missing store",
			"/sales/stores/items/?item_id=FOODS_3_090&date=2016-01-01",
			"Missing required query parameter: store_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regressor := &stubRegressor{value: 1}
			router := setupSalesRouter(regressor, &stubForecaster{})

			w := get(router, tt.target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.detail, decodeDetail(t, w))
			assert.Equal(t, 0, regressor.calls)
		})
	}
}

func TestPredictStoreItemSalesModelFailure(t *testing.T) {
	router := setupSalesRouter(&stubRegressor{err: errors.New("columns are missing")}, &stubForecaster{})

	w := get(router, "/sales/stores/items/?item_id=FOODS_3_090&store_id=CA_3&date=2016-01-01")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "columns are missing", decodeDetail(t, w))
}

func TestForecastNationalSales(t *testing.T) {
	router := setupSalesRouter(&stubRegressor{}, &stubForecaster{})

	w := get(router, "/sales/national/?date=2016-01-01")

	assert.Equal(t, http.StatusOK, w.Code)
	// キーの順序まで含めて検証する
	assert.Equal(t,
		`{"2016-01-02":30000.46,"2016-01-03":31000.46,"2016-01-04":32000.46,"2016-01-05":33000.46,"2016-01-06":34000.46,"2016-01-07":35000.46,"2016-01-08":36000.46}`,
		w.Body.String())
}

func TestForecastNationalSalesErrors(t *testing.T) {
	router := setupSalesRouter(&stubRegressor{}, &stubForecaster{})

	w := get(router, "/sales/national/?date=01-01-2016")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD.", decodeDetail(t, w))

	w = get(router, "/sales/national/")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required query parameter: date", decodeDetail(t, w))

	failing := setupSalesRouter(&stubRegressor{}, &stubForecaster{err: errors.New("forecaster unavailable")})
	w = get(failing, "/sales/national/?date=2016-01-01")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "forecaster unavailable", decodeDetail(t, w))
}

func TestExportNationalForecast(t *testing.T) {
	router := setupSalesRouter(&stubRegressor{}, &stubForecaster{})

	w := get(router, "/sales/national/export?date=2016-01-01")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="national_forecast_2016-01-01.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(services.ForecastSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 8)
	assert.Equal(t, "2016-01-08", rows[7][0])
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInfoHandler("https://github.com/example/sales-api")
	router := gin.New()
	router.GET("/health/", handler.HealthCheck)

	w := get(router, "/health/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Hi there! Welcome to Sales Prediction API"}`, w.Body.String())
}

func TestRoot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInfoHandler("https://github.com/example/sales-api")
	router := gin.New()
	router.GET("/", handler.Root)

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var info models.ServiceInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "https://github.com/example/sales-api", info.GithubRepo)
	assert.Contains(t, info.Endpoints, "/sales/national/")
	assert.Contains(t, info.Endpoints, "/sales/stores/items/")
	assert.Equal(t, map[string]string{"date": "sales_amount"}, info.OutputFormat.National)
	assert.Equal(t, "YYYY-MM-DD format", info.ExpectedInputParameters["date"])
}

func TestGetLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	service := services.NewMonitoringService(10, logger)
	service.LogRequest(services.LogEntry{Timestamp: time.Now(), Path: "/health", StatusCode: 200})

	handler := NewMonitoringHandler(service)
	router := gin.New()
	router.GET("/monitoring/logs", handler.GetLogs)

	w := get(router, "/monitoring/logs?period=1h")
	require.Equal(t, http.StatusOK, w.Code)
	var data services.DashboardData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Len(t, data.RequestsOverTime, 1)
	assert.Equal(t, 1, data.Endpoints["/health"])

	w = get(router, "/monitoring/logs?period=30d")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid period. Expected one of 1h, 24h, 7d.", decodeDetail(t, w))
}
