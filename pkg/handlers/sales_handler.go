package handlers

import (
	"fmt"
	"net/http"

	"hunt-sales-api/pkg/models"
	"hunt-sales-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SalesHandler 売上予測・全国予測エンドポイントのハンドラー
type SalesHandler struct {
	predictionService *services.SalesPredictionService
	forecastService   *services.SalesForecastService
}

// NewSalesHandler は新しいSalesHandlerを生成します。
func NewSalesHandler(predictionService *services.SalesPredictionService, forecastService *services.SalesForecastService) *SalesHandler {
	return &SalesHandler{
		predictionService: predictionService,
		forecastService:   forecastService,
	}
}

// PredictStoreItemSales は店舗・商品・日付を指定して売上を予測します。
// GET /sales/stores/items/?item_id=FOODS_3_090&store_id=CA_1&date=2016-01-05
func (h *SalesHandler) PredictStoreItemSales(c *gin.Context) {
	if err := requireQuery(c, "item_id", "store_id", "date"); err != nil {
		writeError(c, err)
		return
	}

	var query models.StoreItemQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, services.NewInvalidInput(err.Error()))
		return
	}

	prediction, err := h.predictionService.PredictStoreItem(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// ForecastNationalSales は指定日の翌日から7日間の全国売上を予測します。
// GET /sales/national/?date=2016-01-01
func (h *SalesHandler) ForecastNationalSales(c *gin.Context) {
	series, ok := h.forecast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, series)
}

// ExportNationalForecast returns the same forecast as an xlsx attachment.
func (h *SalesHandler) ExportNationalForecast(c *gin.Context) {
	series, ok := h.forecast(c)
	if !ok {
		return
	}

	workbook, err := services.ExportForecastWorkbook(series)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("national_forecast_%s.xlsx", c.Query("date"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

func (h *SalesHandler) forecast(c *gin.Context) (models.ForecastSeries, bool) {
	if err := requireQuery(c, "date"); err != nil {
		writeError(c, err)
		return nil, false
	}

	var query models.NationalForecastQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, services.NewInvalidInput(err.Error()))
		return nil, false
	}

	series, err := h.forecastService.ForecastNational(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return series, true
}
