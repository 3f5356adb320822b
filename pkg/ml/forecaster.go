package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

const (
	// ModeAdditive は季節成分をトレンドに加算します。
	ModeAdditive = "additive"
	// ModeMultiplicative は季節成分をトレンドに乗算します。
	ModeMultiplicative = "multiplicative"

	artifactDateLayout = "2006-01-02"
	secondsPerDay      = 24 * 60 * 60
)

// TrendParams describes a piecewise-linear trend in scaled time.
// Changepoints are positions in scaled time and Deltas the rate change
// applied at each of them.
type TrendParams struct {
	K            float64   `json:"k"`
	M            float64   `json:"m"`
	Changepoints []float64 `json:"changepoints"`
	Deltas       []float64 `json:"deltas"`
}

// Seasonality はフーリエ級数で表現された周期成分です。
// Beta は次数ごとに sin, cos の順で並びます。
type Seasonality struct {
	Name         string    `json:"name"`
	PeriodDays   float64   `json:"period_days"`
	FourierOrder int       `json:"fourier_order"`
	Mode         string    `json:"mode"`
	Beta         []float64 `json:"beta"`
}

// ForecasterArtifact is the on-disk form of an AdditiveForecaster.
type ForecasterArtifact struct {
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	Start         string        `json:"start"`
	TScaleDays    float64       `json:"t_scale_days"`
	YScale        float64       `json:"y_scale"`
	Trend         TrendParams   `json:"trend"`
	Seasonalities []Seasonality `json:"seasonalities"`
}

// AdditiveForecaster は区分線形トレンドとフーリエ季節性からなる時系列モデルです。
type AdditiveForecaster struct {
	name          string
	version       string
	start         time.Time
	tScaleDays    float64
	yScale        float64
	trend         TrendParams
	seasonalities []Seasonality
}

// LoadForecaster reads and validates a forecaster artifact from path.
func LoadForecaster(path string) (*AdditiveForecaster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecaster artifact: %w", err)
	}

	var artifact ForecasterArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode forecaster artifact %s: %w", path, err)
	}

	return NewForecaster(artifact)
}

// NewForecaster validates an artifact.
func NewForecaster(artifact ForecasterArtifact) (*AdditiveForecaster, error) {
	start, err := time.Parse(artifactDateLayout, artifact.Start)
	if err != nil {
		return nil, fmt.Errorf("forecaster %q: invalid start date: %w", artifact.Name, err)
	}
	if artifact.TScaleDays <= 0 {
		return nil, fmt.Errorf("forecaster %q: t_scale_days must be positive", artifact.Name)
	}
	if artifact.YScale <= 0 {
		return nil, fmt.Errorf("forecaster %q: y_scale must be positive", artifact.Name)
	}
	if len(artifact.Trend.Changepoints) != len(artifact.Trend.Deltas) {
		return nil, fmt.Errorf("forecaster %q: %d changepoints but %d deltas",
			artifact.Name, len(artifact.Trend.Changepoints), len(artifact.Trend.Deltas))
	}

	seasonalities := make([]Seasonality, len(artifact.Seasonalities))
	for i, s := range artifact.Seasonalities {
		if s.PeriodDays <= 0 {
			return nil, fmt.Errorf("seasonality %q: period_days must be positive", s.Name)
		}
		if len(s.Beta) != 2*s.FourierOrder {
			return nil, fmt.Errorf("seasonality %q: expected %d coefficients, got %d", s.Name, 2*s.FourierOrder, len(s.Beta))
		}
		switch s.Mode {
		case "":
			s.Mode = ModeAdditive
		case ModeAdditive, ModeMultiplicative:
		default:
			return nil, fmt.Errorf("seasonality %q: unknown mode %q", s.Name, s.Mode)
		}
		seasonalities[i] = s
	}

	return &AdditiveForecaster{
		name:          artifact.Name,
		version:       artifact.Version,
		start:         start,
		tScaleDays:    artifact.TScaleDays,
		yScale:        artifact.YScale,
		trend:         artifact.Trend,
		seasonalities: seasonalities,
	}, nil
}

// Name returns the artifact name.
func (f *AdditiveForecaster) Name() string { return f.name }

// Version returns the artifact version.
func (f *AdditiveForecaster) Version() string { return f.version }

// Predict は各日付のトレンドと予測値を入力順に返します。
func (f *AdditiveForecaster) Predict(ctx context.Context, dates []time.Time) ([]ForecastRow, error) {
	rows := make([]ForecastRow, len(dates))
	for i, ds := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trend := f.trendAt(ds) * f.yScale
		additive, multiplicative := f.seasonalAt(ds)
		rows[i] = ForecastRow{
			Date:  ds,
			Trend: trend,
			Yhat:  trend*(1+multiplicative) + additive*f.yScale,
		}
	}
	return rows, nil
}

func (f *AdditiveForecaster) trendAt(ds time.Time) float64 {
	t := ds.Sub(f.start).Hours() / 24 / f.tScaleDays

	k, m := f.trend.K, f.trend.M
	for i, cp := range f.trend.Changepoints {
		if t >= cp {
			k += f.trend.Deltas[i]
			m -= cp * f.trend.Deltas[i]
		}
	}
	return k*t + m
}

// seasonalAt returns the summed additive and multiplicative components.
// Seasonal time is measured in days since the Unix epoch.
func (f *AdditiveForecaster) seasonalAt(ds time.Time) (additive, multiplicative float64) {
	days := float64(ds.Unix()) / secondsPerDay
	for _, s := range f.seasonalities {
		var value float64
		for order := 1; order <= s.FourierOrder; order++ {
			x := 2 * math.Pi * float64(order) * days / s.PeriodDays
			value += s.Beta[2*(order-1)]*math.Sin(x) + s.Beta[2*(order-1)+1]*math.Cos(x)
		}
		if s.Mode == ModeMultiplicative {
			multiplicative += value
		} else {
			additive += value
		}
	}
	return additive, multiplicative
}
