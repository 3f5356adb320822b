package services

import (
	"context"
	"fmt"
	"time"

	"hunt-sales-api/pkg/ml"
	"hunt-sales-api/pkg/models"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ForecastHorizonDays は全国売上予測の対象日数です。
const ForecastHorizonDays = 7

const msgInvalidForecastDate = "Invalid date format. Use YYYY-MM-DD."

// SalesForecastService 全国売上の時系列予測サービス
type SalesForecastService struct {
	forecaster   ml.Forecaster
	modelVersion string
	metrics      *Metrics
	logger       logrus.FieldLogger
}

// NewSalesForecastService creates the service. metrics may be nil.
func NewSalesForecastService(forecaster ml.Forecaster, modelVersion string, metrics *Metrics, logger logrus.FieldLogger) *SalesForecastService {
	return &SalesForecastService{
		forecaster:   forecaster,
		modelVersion: modelVersion,
		metrics:      metrics,
		logger:       logger.WithField("component", "sales_forecast"),
	}
}

// ForecastDates returns the horizon consecutive calendar dates that follow
// anchor.
func ForecastDates(anchor time.Time, horizon int) []time.Time {
	dates := make([]time.Time, horizon)
	for i := range dates {
		dates[i] = anchor.AddDate(0, 0, i+1)
	}
	return dates
}

// ForecastNational forecasts total sales for the 7 days after the anchor date.
func (s *SalesForecastService) ForecastNational(ctx context.Context, query models.NationalForecastQuery) (series models.ForecastSeries, err error) {
	defer func() { s.metrics.ObserveOutcome(endpointNational, err) }()

	anchor, ok := ParseSalesDate(query.Date)
	if !ok {
		return nil, NewInvalidInput(msgInvalidForecastDate)
	}

	log := s.logger.WithField("date", query.Date)
	targets := ForecastDates(anchor, ForecastHorizonDays)

	rows, err := s.invoke(ctx, targets)
	if err != nil {
		log.WithError(err).Error("Forecasting model invocation failed")
		return nil, NewUpstreamFailure(err)
	}

	series = make(models.ForecastSeries, len(targets))
	for i, row := range rows {
		amount, err := Round2(row.Yhat)
		if err != nil {
			return nil, NewUpstreamFailure(err)
		}
		series[i] = models.ForecastPoint{Date: targets[i], SalesAmount: amount}
	}

	log.WithField("days", len(series)).Info("National sales forecast computed")
	return series, nil
}

func (s *SalesForecastService) invoke(ctx context.Context, targets []time.Time) ([]ml.ForecastRow, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "forecaster.predict",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("model.version", s.modelVersion),
			attribute.Int("forecast.horizon", len(targets)),
		),
	)
	defer span.End()

	start := time.Now()
	rows, err := s.forecaster.Predict(ctx, targets)
	s.metrics.ObserveModel("forecaster", time.Since(start))

	if err == nil && len(rows) != len(targets) {
		err = fmt.Errorf("forecasting model returned %d rows for %d dates", len(rows), len(targets))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}
