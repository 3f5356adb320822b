package handlers

import (
	"net/http"

	"hunt-sales-api/pkg/models"
	"hunt-sales-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// writeError はエラー種別をHTTPステータスに変換して {"detail": ...} を返します。
// 入力エラーのみ400、それ以外はすべて500です。
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if services.KindOf(err) == services.KindInvalidInput {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: err.Error()})
}

// requireQuery fails with an invalid input error naming the first absent
// query parameter.
func requireQuery(c *gin.Context, names ...string) error {
	for _, name := range names {
		if _, ok := c.GetQuery(name); !ok {
			return services.NewInvalidInput("Missing required query parameter: " + name)
		}
	}
	return nil
}
