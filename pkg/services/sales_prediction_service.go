package services

import (
	"context"
	"errors"
	"time"

	"hunt-sales-api/pkg/ml"
	"hunt-sales-api/pkg/models"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "hunt-sales-api/services"

	endpointStoreItem = "stores_items"
	endpointNational  = "national"
)

// SalesPredictionService 店舗・商品単位の売上予測サービス
type SalesPredictionService struct {
	regressor    ml.Regressor
	modelVersion string
	cache        PredictionCache
	metrics      *Metrics
	logger       logrus.FieldLogger
}

// NewSalesPredictionService creates the service. cache and metrics may be nil.
func NewSalesPredictionService(
	regressor ml.Regressor,
	modelVersion string,
	cache PredictionCache,
	metrics *Metrics,
	logger logrus.FieldLogger,
) *SalesPredictionService {
	return &SalesPredictionService{
		regressor:    regressor,
		modelVersion: modelVersion,
		cache:        cache,
		metrics:      metrics,
		logger:       logger.WithField("component", "sales_prediction"),
	}
}

// PredictStoreItem validates the query, runs the pipeline on a one-row frame
// and returns the first prediction rounded to two decimals.
func (s *SalesPredictionService) PredictStoreItem(ctx context.Context, query models.StoreItemQuery) (result models.StoreItemPrediction, err error) {
	defer func() { s.metrics.ObserveOutcome(endpointStoreItem, err) }()

	// 1. 入力検証（モデル呼び出しより前に必ず行う）
	req, err := ParseStoreItemQuery(query)
	if err != nil {
		return models.StoreItemPrediction{}, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"item_id":  req.ItemID,
		"store_id": req.StoreID,
		"date":     req.Date.Format(models.DateLayout),
	})

	// 2. キャッシュ確認
	key := s.cacheKey(req)
	if s.cache != nil {
		if value, ok := s.cache.Get(ctx, key); ok {
			s.metrics.ObserveCache(true)
			log.Debug("Prediction served from cache")
			return models.StoreItemPrediction{Prediction: value}, nil
		}
		s.metrics.ObserveCache(false)
	}

	// 3. 特徴量を1行のフレームに変換してモデルを呼び出す
	features := BuildFeatures(req)
	frame, err := ml.NewFrame(models.FeatureColumns, features.Columns())
	if err != nil {
		return models.StoreItemPrediction{}, NewUpstreamFailure(err)
	}

	raw, err := s.invoke(ctx, frame)
	if err != nil {
		log.WithError(err).Error("Prediction model invocation failed")
		return models.StoreItemPrediction{}, NewUpstreamFailure(err)
	}

	prediction, err := Round2(raw)
	if err != nil {
		log.WithError(err).Error("Prediction model returned an unusable value")
		return models.StoreItemPrediction{}, NewUpstreamFailure(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, prediction)
	}

	log.WithField("prediction", prediction).Info("Sales prediction computed")
	return models.StoreItemPrediction{Prediction: prediction}, nil
}

func (s *SalesPredictionService) invoke(ctx context.Context, frame *ml.Frame) (float64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.predict",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("model.version", s.modelVersion),
			attribute.Int("frame.rows", frame.Len()),
		),
	)
	defer span.End()

	start := time.Now()
	predictions, err := s.regressor.Predict(ctx, frame)
	s.metrics.ObserveModel("pipeline", time.Since(start))

	if err == nil && len(predictions) == 0 {
		err = errors.New("prediction model returned no values")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return predictions[0], nil
}

func (s *SalesPredictionService) cacheKey(req models.StoreItemRequest) string {
	return s.modelVersion + ":" + req.ItemID + ":" + req.StoreID + ":" + req.Date.Format(models.DateLayout)
}
