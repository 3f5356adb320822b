package services

import (
	"fmt"

	"hunt-sales-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ForecastSheetName は出力するExcelシート名です。
const ForecastSheetName = "Forecast"

// ExportForecastWorkbook writes the series to an xlsx workbook with a
// date / sales_amount header row.
func ExportForecastWorkbook(series models.ForecastSeries) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ForecastSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(ForecastSheetName, "A1", &[]interface{}{"date", "sales_amount"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, point := range series {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{point.Date.Format(models.DateLayout), point.SalesAmount}
		if err := f.SetSheetRow(ForecastSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
