package estimator

import (
	"fmt"

	"solar-prediction-api/apperr"
	"solar-prediction-api/logger"
	"solar-prediction-api/models"
)

const (
	FallbackModelType = "FallbackCalculation"
	FallbackSource    = "Fallback Calculation"
	ModelSource       = "Gujarat Solar Dataset"
	Units             = "kW"

	SentinelCity          = 0
	SentinelDate          = "2025-03-15"
	SentinelTime          = "12:00"
	SentinelPowerConsumed = 0.0
)

// Context carries the training-row fields that are not part of the validated feature set.
type Context struct {
	City          interface{}
	Date          string
	Time          string
	PowerConsumed float64
}

func ContextFromRaw(raw map[string]interface{}) Context {
	c := Context{
		City:          SentinelCity,
		Date:          SentinelDate,
		Time:          SentinelTime,
		PowerConsumed: SentinelPowerConsumed,
	}
	if v, ok := raw["city"]; ok && v != nil {
		c.City = v
	}
	if v, ok := raw["date"].(string); ok && v != "" {
		c.Date = v
	}
	if v, ok := raw["time"].(string); ok && v != "" {
		c.Time = v
	}
	if v, ok := raw["power_consumed"]; ok {
		if f, err := encode(ColPowerConsumed, v); err == nil {
			c.PowerConsumed = f
		}
	}
	return c
}

// Estimator is built once at startup and shared read-only across requests.
type Estimator struct {
	model           Model
	fallbackEnabled bool
}

func New(model Model, fallbackEnabled bool) *Estimator {
	return &Estimator{model: model, fallbackEnabled: fallbackEnabled}
}

// Load attempts the artifact exactly once. A missing or broken artifact is not fatal.
func Load(path string, fallbackEnabled bool, log *logger.Logger) *Estimator {
	m, err := LoadLinearModel(path)
	if err != nil {
		log.Error("Failed to load solar power model", "path", path, "error", err)
		return New(nil, fallbackEnabled)
	}
	log.Info("Solar power model loaded", "path", path, "model_type", m.Name())
	return New(m, fallbackEnabled)
}

func (e *Estimator) Available() bool {
	return e.model != nil
}

func (e *Estimator) ModelType() string {
	if e.model != nil {
		return e.model.Name()
	}
	return FallbackModelType
}

func (e *Estimator) Source() string {
	if e.model != nil {
		return ModelSource
	}
	return FallbackSource
}

func (e *Estimator) Estimate(fs models.FeatureSet, c Context) (models.PredictionResult, error) {
	var (
		power float64
		err   error
	)
	switch {
	case e.model != nil:
		power, err = e.model.Predict(BuildRow(fs, c))
		if err != nil {
			return models.PredictionResult{}, fmt.Errorf("model predict: %w", err)
		}
	case e.fallbackEnabled:
		power = Fallback(fs)
	default:
		return models.PredictionResult{}, apperr.New(apperr.ErrEstimationUnavailable, "",
			"no model artifact loaded and fallback calculation is disabled")
	}

	return models.PredictionResult{
		PredictedPowerGenerated: power,
		InputParameters:         fs,
		ModelInfo: models.ModelInfo{
			ModelType:       e.ModelType(),
			PredictionUnits: Units,
			DatasetSource:   e.Source(),
		},
	}, nil
}

func BuildRow(fs models.FeatureSet, c Context) Row {
	return Row{
		ColCity:          c.City,
		ColDate:          c.Date,
		ColTime:          c.Time,
		ColPanelArea:     fs.PanelArea,
		ColTilt:          fs.Tilt,
		ColAzimuth:       fs.Azimuth,
		ColIrradiance:    fs.GHI,
		ColDNI:           fs.DNI,
		ColTemperature:   fs.Temperature,
		ColHumidity:      fs.Humidity,
		ColWindSpeed:     fs.WindSpeed,
		ColPowerConsumed: c.PowerConsumed,
		ColCloudCover:    fs.CloudCover,
	}
}

// Fallback is part of the public contract: clients rely on these exact values
// when no artifact is deployed.
func Fallback(fs models.FeatureSet) float64 {
	base := (fs.GHI / 1000) * fs.PanelArea * 0.20
	temperatureFactor := 1 - (fs.Temperature-25)*0.004
	humidityFactor := 1 - (fs.Humidity/100)*0.10
	return base * temperatureFactor * humidityFactor
}
