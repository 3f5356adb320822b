package ml

import (
	"fmt"
)

// LoadModelSet loads both artifacts. Any failure means the service cannot
// start; callers treat the returned error as fatal.
func LoadModelSet(predictivePath, forecastPath string) (*ModelSet, error) {
	pipeline, err := LoadPipeline(predictivePath)
	if err != nil {
		return nil, fmt.Errorf("load predictive model: %w", err)
	}

	forecaster, err := LoadForecaster(forecastPath)
	if err != nil {
		return nil, fmt.Errorf("load forecasting model: %w", err)
	}

	return &ModelSet{
		Regressor:         pipeline,
		Forecaster:        forecaster,
		PredictiveVersion: versionOf(pipeline.Name(), pipeline.Version()),
		ForecastVersion:   versionOf(forecaster.Name(), forecaster.Version()),
	}, nil
}

func versionOf(name, version string) string {
	if version == "" {
		return name
	}
	return name + "@" + version
}
