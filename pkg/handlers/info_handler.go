package handlers

import (
	"net/http"

	"hunt-sales-api/pkg/models"

	"github.com/gin-gonic/gin"
)

// HealthMessage は /health が返す固定メッセージです。
const HealthMessage = "Hi there! Welcome to Sales Prediction API"

// InfoHandler serves the static root description and the liveness probe.
// Neither endpoint touches the models.
type InfoHandler struct {
	info models.ServiceInfo
}

// NewInfoHandler は新しいInfoHandlerを生成します。
func NewInfoHandler(repositoryURL string) *InfoHandler {
	return &InfoHandler{
		info: models.ServiceInfo{
			Description: "This API provides two models deployed in production: " +
				"1. A predictive model using a Machine Learning algorithm to predict sales revenue for a given item in a specific store on a given date. " +
				"2. A forecasting model using a time-series analysis algorithm to forecast total sales revenue across all stores and items for the next 7 days.",
			Endpoints: map[string]string{
				"/":                      "Brief description of the project objectives",
				"/health/":               "Returns a status code 200 with a welcome message",
				"/sales/national/":       "Forecasts total sales revenue for the next 7 days.",
				"/sales/national/export": "Downloads the 7-day national forecast as an Excel workbook.",
				"/sales/stores/items/":   "Predicts sales revenue for a specific store and item.",
			},
			ExpectedInputParameters: map[string]string{
				"date":     "YYYY-MM-DD format",
				"store_id": "Identifier of the store",
				"item_id":  "Identifier of the item",
			},
			OutputFormat: models.OutputFormat{
				National:    map[string]string{"date": "sales_amount"},
				StoresItems: map[string]string{"prediction": "sales_amount"},
			},
			GithubRepo: repositoryURL,
		},
	}
}

// Root はAPIの概要を返します。
func (h *InfoHandler) Root(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, h.info)
}

// HealthCheck は外部のヘルスチェッカーからのリクエストに応答します。
func (h *InfoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Message: HealthMessage})
}
