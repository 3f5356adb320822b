package services

import (
	"bytes"
	"testing"
	"time"

	"hunt-sales-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportForecastWorkbook(t *testing.T) {
	series := models.ForecastSeries{
		{Date: time.Date(2016, 1, 2, 0, 0, 0, 0, time.UTC), SalesAmount: 35012.5},
		{Date: time.Date(2016, 1, 3, 0, 0, 0, 0, time.UTC), SalesAmount: 36890.07},
	}

	data, err := ExportForecastWorkbook(series)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ForecastSheetName}, f.GetSheetList())

	rows, err := f.GetRows(ForecastSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "sales_amount"}, rows[0])
	assert.Equal(t, "2016-01-02", rows[1][0])
	assert.Equal(t, "35012.5", rows[1][1])
	assert.Equal(t, "2016-01-03", rows[2][0])
	assert.Equal(t, "36890.07", rows[2][1])
}

func TestExportForecastWorkbookEmpty(t *testing.T) {
	data, err := ExportForecastWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ForecastSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
