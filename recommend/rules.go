package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"solar-prediction-api/models"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	LowPowerThresholdKW = 2.0
	HighTemperatureC    = 45.0
	HighHumidityPct     = 80.0
	OptimalTilt         = 32.0
	TiltToleranceDeg    = 2.0
	OptimalAzimuth      = 180.0
	AzimuthToleranceDeg = 5.0
)

type Item struct {
	Title       string   `json:"title"`
	Current     string   `json:"current"`
	Recommended string   `json:"recommended"`
	Improvement string   `json:"improvement"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Snapshot is the immutable view of the latest prediction that rules evaluate.
type Snapshot struct {
	PredictedPower float64
	Params         models.FeatureSet
}

func SnapshotOf(rec *models.PredictionRecord) *Snapshot {
	if rec == nil {
		return nil
	}
	p := rec.Prediction.Data()
	return &Snapshot{PredictedPower: p.PredictedPowerGenerated, Params: p.InputParameters}
}

type Rule struct {
	Name    string
	Applies func(Snapshot) bool
	Build   func(Snapshot) Item
}

// Rules are evaluated in order; every rule that applies contributes an item.
var Rules = []Rule{
	{
		Name:    "low_power",
		Applies: func(s Snapshot) bool { return s.PredictedPower < LowPowerThresholdKW },
		Build: func(s Snapshot) Item {
			return Item{
				Title:       "Increase Panel Area",
				Current:     formatNumber(s.Params.PanelArea),
				Recommended: "Consider adding more panels",
				Improvement: "+20% potential output",
				Description: "Your predicted power is low. Increasing the panel area can significantly boost your energy generation.",
				Priority:    PriorityHigh,
			}
		},
	},
	{
		Name:    "high_temperature",
		Applies: func(s Snapshot) bool { return s.Params.Temperature > HighTemperatureC },
		Build: func(s Snapshot) Item {
			return Item{
				Title:       "High Temperature Detected",
				Current:     formatNumber(s.Params.Temperature) + "°C",
				Recommended: "Improve ventilation or shading",
				Improvement: "+5% efficiency",
				Description: "High temperatures can reduce panel efficiency. Consider improving airflow or partial shading during peak heat.",
				Priority:    PriorityMedium,
			}
		},
	},
	{
		Name:    "high_humidity",
		Applies: func(s Snapshot) bool { return s.Params.Humidity > HighHumidityPct },
		Build: func(s Snapshot) Item {
			return Item{
				Title:       "High Humidity Detected",
				Current:     formatNumber(s.Params.Humidity) + "%",
				Recommended: "Regular panel cleaning",
				Improvement: "+3% efficiency",
				Description: "High humidity can cause dust and grime to stick to panels. Clean panels more frequently for optimal performance.",
				Priority:    PriorityMedium,
			}
		},
	},
	{
		Name:    "tilt",
		Applies: func(s Snapshot) bool { return math.Abs(s.Params.Tilt-OptimalTilt) > TiltToleranceDeg },
		Build: func(s Snapshot) Item {
			return Item{
				Title:       "Optimal Tilt Angle",
				Current:     formatNumber(s.Params.Tilt) + "°",
				Recommended: fmt.Sprintf("%d°", int(OptimalTilt)),
				Improvement: "+14% efficiency",
				Description: fmt.Sprintf("Adjusting your panel tilt to %d° will maximize solar exposure throughout the year.", int(OptimalTilt)),
				Priority:    PriorityHigh,
			}
		},
	},
	{
		Name:    "azimuth",
		Applies: func(s Snapshot) bool { return math.Abs(s.Params.Azimuth-OptimalAzimuth) > AzimuthToleranceDeg },
		Build: func(s Snapshot) Item {
			return Item{
				Title:       "Azimuth Orientation",
				Current:     formatNumber(s.Params.Azimuth) + "°",
				Recommended: fmt.Sprintf("%d°", int(OptimalAzimuth)),
				Improvement: "+8% efficiency",
				Description: "Rotating panels more towards true south will increase energy capture.",
				Priority:    PriorityMedium,
			}
		},
	},
	{
		Name:    "seasonal",
		Applies: func(s Snapshot) bool { return s.Params.Tilt == s.Params.Azimuth },
		Build: func(Snapshot) Item {
			return Item{
				Title:       "Seasonal Adjustment",
				Current:     "Fixed",
				Recommended: "Bi-annual",
				Improvement: "+12% efficiency",
				Description: "Adjusting tilt twice yearly (winter: +15°, summer: -15°) optimizes performance.",
				Priority:    PriorityMedium,
			}
		},
	},
}

var (
	greatJob = Item{
		Title:       "Great Job!",
		Current:     "All key parameters optimal",
		Recommended: "Maintain current setup",
		Improvement: "Max efficiency achieved",
		Description: "Your solar system is configured for maximum efficiency based on your latest prediction. Keep monitoring for seasonal or environmental changes.",
		Priority:    PriorityLow,
	}
	noData = Item{
		Title:       "No Prediction Data",
		Current:     "-",
		Recommended: "Submit a prediction",
		Improvement: "-",
		Description: "No prediction data found. Please generate a prediction to receive personalized recommendations.",
		Priority:    PriorityMedium,
	}
)

// Evaluate always returns at least one item. A nil snapshot means no history.
func Evaluate(latest *Snapshot) []Item {
	if latest == nil {
		return []Item{noData}
	}
	s := *latest
	var items []Item
	for _, r := range Rules {
		if r.Applies(s) {
			items = append(items, r.Build(s))
		}
	}
	if len(items) == 0 {
		return []Item{greatJob}
	}
	return items
}

// formatNumber renders whole numbers with a trailing ".0" so 45 reads as "45.0".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eInfNa") {
		s += ".0"
	}
	return s
}
