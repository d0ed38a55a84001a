package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeatureSet is the validated, typed input consumed by estimation.
type FeatureSet struct {
	PanelArea   float64 `json:"panel_area"`
	Tilt        float64 `json:"tilt"`
	Azimuth     float64 `json:"azimuth"`
	GHI         float64 `json:"ghi"`
	DNI         float64 `json:"dni"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	CloudCover  string  `json:"cloud_cover"`
}

type ModelInfo struct {
	ModelType       string `json:"model_type"`
	PredictionUnits string `json:"prediction_units"`
	DatasetSource   string `json:"dataset_source"`
}

type PredictionResult struct {
	PredictedPowerGenerated float64    `json:"predicted_power_generated"`
	InputParameters         FeatureSet `json:"input_parameters"`
	ModelInfo               ModelInfo  `json:"model_info"`
}

// InputSnapshot echoes the submitted form, including fields the validator ignores.
// Every field is a string so stored documents keep the shape existing clients read.
type InputSnapshot struct {
	Location        string `json:"location"`
	Humidity        string `json:"humidity"`
	Temperature     string `json:"temperature"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	SolarIrradiance string `json:"solarIrradiance"`
	WindSpeed       string `json:"windSpeed"`
	CloudCover      string `json:"cloudCover"`
	PanelArea       string `json:"panelArea"`
	Tilt            string `json:"tilt"`
	Azimuth         string `json:"azimuth"`
}

type PredictionRecord struct {
	ID             string                               `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID        string                               `gorm:"column:owner_id;index:idx_predictions_owner_created,priority:1;not null" json:"owner_id"`
	InputSnapshot  datatypes.JSONType[InputSnapshot]    `gorm:"column:input_snapshot" json:"input_snapshot"`
	Prediction     datatypes.JSONType[PredictionResult] `gorm:"column:prediction" json:"prediction"`
	PredictedPower float64                              `gorm:"column:predicted_power" json:"-"`
	CreatedAt      time.Time                            `gorm:"column:created_at;index:idx_predictions_owner_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time                            `gorm:"column:updated_at" json:"updated_at"`
}

func (PredictionRecord) TableName() string { return "predictions" }

type AggregateStats struct {
	TotalPredictions     int64      `json:"total_predictions"`
	LatestPredictionDate *time.Time `json:"latest_prediction_date"`
	AveragePower         float64    `json:"average_power"`
	MaxPower             float64    `json:"max_power"`
	MinPower             float64    `json:"min_power"`
}
