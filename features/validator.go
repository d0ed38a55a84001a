package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"solar-prediction-api/apperr"
	"solar-prediction-api/models"
)

const (
	KeyPanelArea   = "panel_area"
	KeyTilt        = "tilt"
	KeyAzimuth     = "azimuth"
	KeyGHI         = "ghi"
	KeyDNI         = "dni"
	KeyTemperature = "temperature"
	KeyHumidity    = "humidity"
	KeyWindSpeed   = "wind_speed"
	KeyCloudCover  = "cloud_cover"
)

// RequiredParams is the canonical order used for presence checks and error listings.
var RequiredParams = []string{
	KeyPanelArea, KeyTilt, KeyAzimuth, KeyGHI, KeyDNI,
	KeyTemperature, KeyHumidity, KeyWindSpeed, KeyCloudCover,
}

var CloudCoverTypes = []string{
	"Fluffy white clouds",
	"Mid-level clouds",
	"Thin high clouds",
	"Thick low clouds",
}

func Validate(raw map[string]interface{}) (models.FeatureSet, error) {
	var missing []string
	for _, key := range RequiredParams {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return models.FeatureSet{}, &apperr.MissingParameterError{Params: missing}
	}

	numbers := make(map[string]float64, len(RequiredParams)-1)
	for _, key := range RequiredParams {
		if key == KeyCloudCover {
			continue
		}
		v, err := toFloat(raw[key])
		if err != nil {
			return models.FeatureSet{}, apperr.Invalid(key, "Invalid parameter value: %s: %v", key, err)
		}
		numbers[key] = v
	}

	cloud, ok := raw[KeyCloudCover].(string)
	if !ok || !isCloudCover(cloud) {
		return models.FeatureSet{}, apperr.Invalid(KeyCloudCover,
			"Invalid cloud cover type. Must be one of: [%s]", strings.Join(CloudCoverTypes, ", "))
	}

	humidity := numbers[KeyHumidity]
	if humidity < 0 || humidity > 100 {
		return models.FeatureSet{}, apperr.Invalid(KeyHumidity, "Humidity must be between 0 and 100")
	}

	return models.FeatureSet{
		PanelArea:   numbers[KeyPanelArea],
		Tilt:        numbers[KeyTilt],
		Azimuth:     numbers[KeyAzimuth],
		GHI:         numbers[KeyGHI],
		DNI:         numbers[KeyDNI],
		Temperature: numbers[KeyTemperature],
		Humidity:    humidity,
		WindSpeed:   numbers[KeyWindSpeed],
		CloudCover:  cloud,
	}, nil
}

func isCloudCover(v string) bool {
	for _, c := range CloudCoverTypes {
		if v == c {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("could not convert %q to float", t.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", t)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite")
	}
	return f, nil
}

// Snapshot echoes the submitted form. Location, date and time pass through untouched.
func Snapshot(raw map[string]interface{}, fs models.FeatureSet) models.InputSnapshot {
	return models.InputSnapshot{
		Location:        stringField(raw, "location"),
		Humidity:        echoNumber(fs.Humidity),
		Temperature:     echoNumber(fs.Temperature),
		Date:            stringField(raw, "date"),
		Time:            stringField(raw, "time"),
		SolarIrradiance: echoNumber(fs.GHI),
		WindSpeed:       echoNumber(fs.WindSpeed),
		CloudCover:      fs.CloudCover,
		PanelArea:       echoNumber(fs.PanelArea),
		Tilt:            echoNumber(fs.Tilt),
		Azimuth:         echoNumber(fs.Azimuth),
	}
}

// echoNumber renders a validated value the way the form history has always stored
// it: whole numbers keep a trailing ".0".
func echoNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func stringField(raw map[string]interface{}, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
