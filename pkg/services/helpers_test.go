package services

import (
	"context"
	"sync"
	"time"

	"hunt-sales-api/pkg/ml"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeRegressor は呼び出し回数と受け取ったフレームを記録します。
type fakeRegressor struct {
	mu     sync.Mutex
	value  []float64
	err    error
	calls  int
	frames []*ml.Frame
}

func (f *fakeRegressor) Predict(_ context.Context, frame *ml.Frame) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.frames = append(f.frames, frame)
	if f.err != nil {
		return nil, f.err
	}
	return f.value, nil
}

func (f *fakeRegressor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeForecaster returns yhat = base + index for each requested date.
type fakeForecaster struct {
	base     float64
	err      error
	dropLast bool
	calls    int
	dates    []time.Time
}

func (f *fakeForecaster) Predict(_ context.Context, dates []time.Time) ([]ml.ForecastRow, error) {
	f.calls++
	f.dates = dates
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]ml.ForecastRow, 0, len(dates))
	for i, d := range dates {
		rows = append(rows, ml.ForecastRow{Date: d, Trend: f.base, Yhat: f.base + float64(i)})
	}
	if f.dropLast {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func newTestLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}
