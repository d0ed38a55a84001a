package estimator

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Training-row column names. They must match the artifact byte for byte.
const (
	ColCity          = "City"
	ColDate          = "Date"
	ColTime          = "Time"
	ColPanelArea     = "Panel area (m^2)"
	ColTilt          = "Tilt (deg)"
	ColAzimuth       = "Azimuth (deg)"
	ColIrradiance    = "Solar Irradiance (W/m^2)"
	ColDNI           = "DNI (W/m^2)"
	ColTemperature   = "Temperature (C)"
	ColHumidity      = "Humidity (%)"
	ColWindSpeed     = "Wind Speed (m/s)"
	ColPowerConsumed = "Power Consumed (kW)"
	ColCloudCover    = "Cloud Cover"
)

type Row map[string]interface{}

// Model is the opaque regression artifact: one scalar per row.
type Model interface {
	Name() string
	Predict(row Row) (float64, error)
}

// LinearModel is a serialised linear regression with one-hot categorical terms.
// Date is encoded as day of year and Time as fractional hours before weighting.
type LinearModel struct {
	ModelType    string                        `json:"model_type"`
	Intercept    float64                       `json:"intercept"`
	Coefficients map[string]float64            `json:"coefficients"`
	Categories   map[string]map[string]float64 `json:"categories"`

	columns []string
	weights *mat.VecDense
}

func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return &m, nil
}

func NewLinearModel(modelType string, intercept float64, coefficients map[string]float64, categories map[string]map[string]float64) (*LinearModel, error) {
	m := &LinearModel{
		ModelType:    modelType,
		Intercept:    intercept,
		Coefficients: coefficients,
		Categories:   categories,
	}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LinearModel) compile() error {
	if len(m.Coefficients) == 0 && len(m.Categories) == 0 {
		return fmt.Errorf("model artifact has no terms")
	}
	m.columns = make([]string, 0, len(m.Coefficients))
	for col := range m.Coefficients {
		m.columns = append(m.columns, col)
	}
	sort.Strings(m.columns)

	w := make([]float64, len(m.columns))
	for i, col := range m.columns {
		w[i] = m.Coefficients[col]
	}
	if len(w) > 0 {
		m.weights = mat.NewVecDense(len(w), w)
	}
	return nil
}

func (m *LinearModel) Name() string {
	if m.ModelType != "" {
		return m.ModelType
	}
	return "LinearModel"
}

func (m *LinearModel) Predict(row Row) (float64, error) {
	if len(m.Coefficients) != len(m.columns) {
		return 0, fmt.Errorf("model artifact not compiled")
	}
	out := m.Intercept

	if m.weights != nil {
		x := make([]float64, len(m.columns))
		for i, col := range m.columns {
			v, err := encode(col, row[col])
			if err != nil {
				return 0, fmt.Errorf("column %q: %w", col, err)
			}
			x[i] = v
		}
		out += mat.Dot(m.weights, mat.NewVecDense(len(x), x))
	}

	for col, levels := range m.Categories {
		level := fmt.Sprint(row[col])
		out += levels[level]
	}
	return out, nil
}

func encode(col string, v interface{}) (float64, error) {
	switch col {
	case ColDate:
		s, _ := v.(string)
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			d, _ = time.Parse("2006-01-02", SentinelDate)
		}
		return float64(d.YearDay()), nil
	case ColTime:
		s, _ := v.(string)
		return hourOfDay(s), nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported value %T", v)
	}
}

func hourOfDay(s string) float64 {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
		}
	}
	return 12
}
