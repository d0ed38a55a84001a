package features

import (
	"encoding/json"
	"errors"
	"testing"

	"solar-prediction-api/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"panel_area":  50.0,
		"tilt":        30.0,
		"azimuth":     180.0,
		"ghi":         800.0,
		"dni":         600.0,
		"temperature": 25.0,
		"humidity":    60.0,
		"wind_speed":  3.5,
		"cloud_cover": "Thin high clouds",
	}
}

func TestValidateAcceptsCompleteInput(t *testing.T) {
	fs, err := Validate(validInput())
	require.NoError(t, err)

	assert.Equal(t, 50.0, fs.PanelArea)
	assert.Equal(t, 800.0, fs.GHI)
	assert.Equal(t, 600.0, fs.DNI)
	assert.Equal(t, 3.5, fs.WindSpeed)
	assert.Equal(t, "Thin high clouds", fs.CloudCover)
}

func TestValidateListsEveryMissingParameter(t *testing.T) {
	raw := validInput()
	delete(raw, "tilt")
	delete(raw, "humidity")
	delete(raw, "cloud_cover")

	_, err := Validate(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrMissingParameter))

	var missing *apperr.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"tilt", "humidity", "cloud_cover"}, missing.Params)
}

func TestValidateEmptyInputListsAllNine(t *testing.T) {
	_, err := Validate(map[string]interface{}{})

	var missing *apperr.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, RequiredParams, missing.Params)
}

func TestValidateCoercion(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr bool
		want    float64
	}{
		{"numeric string", "panel_area", "42.5", false, 42.5},
		{"padded string", "tilt", " 30 ", false, 30},
		{"int", "azimuth", 175, false, 175},
		{"json number", "ghi", json.Number("950"), false, 950},
		{"non numeric string", "temperature", "hot", true, 0},
		{"null", "wind_speed", nil, true, 0},
		{"bool", "dni", true, true, 0},
		{"nan", "ghi", "NaN", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validInput()
			raw[tt.key] = tt.value

			fs, err := Validate(raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrInvalidParameter))
				var appErr *apperr.Error
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.key, appErr.Field)
				return
			}
			require.NoError(t, err)
			got := map[string]float64{
				"panel_area": fs.PanelArea,
				"tilt":       fs.Tilt,
				"azimuth":    fs.Azimuth,
				"ghi":        fs.GHI,
			}[tt.key]
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCloudCover(t *testing.T) {
	for _, c := range CloudCoverTypes {
		raw := validInput()
		raw["cloud_cover"] = c
		_, err := Validate(raw)
		assert.NoError(t, err, c)
	}

	raw := validInput()
	raw["cloud_cover"] = "Cumulonimbus"
	_, err := Validate(raw)
	assert.True(t, errors.Is(err, apperr.ErrInvalidParameter))

	raw["cloud_cover"] = 3
	_, err = Validate(raw)
	assert.True(t, errors.Is(err, apperr.ErrInvalidParameter))
}

func TestValidateHumidityBounds(t *testing.T) {
	tests := []struct {
		humidity interface{}
		ok       bool
	}{
		{0.0, true},
		{100.0, true},
		{"100", true},
		{150.0, false},
		{-0.1, false},
		{100.01, false},
	}
	for _, tt := range tests {
		raw := validInput()
		raw["humidity"] = tt.humidity
		_, err := Validate(raw)
		if tt.ok {
			assert.NoError(t, err, "humidity=%v", tt.humidity)
		} else {
			assert.True(t, errors.Is(err, apperr.ErrInvalidParameter), "humidity=%v", tt.humidity)
		}
	}
}

func TestSnapshotEchoesForm(t *testing.T) {
	raw := validInput()
	raw["location"] = "Ahmedabad"
	raw["date"] = "2025-06-01"
	raw["time"] = "13:30"
	raw["ghi"] = "800"

	fs, err := Validate(raw)
	require.NoError(t, err)

	snap := Snapshot(raw, fs)
	assert.Equal(t, "Ahmedabad", snap.Location)
	assert.Equal(t, "2025-06-01", snap.Date)
	assert.Equal(t, "13:30", snap.Time)
	assert.Equal(t, "800.0", snap.SolarIrradiance)
	assert.Equal(t, "50.0", snap.PanelArea)
	assert.Equal(t, "Thin high clouds", snap.CloudCover)
}

func TestSnapshotEchoesNumbersAsStrings(t *testing.T) {
	raw := validInput()
	raw["humidity"] = 62.5
	raw["temperature"] = "-3"
	raw["wind_speed"] = 0

	fs, err := Validate(raw)
	require.NoError(t, err)

	snap := Snapshot(raw, fs)
	assert.Equal(t, "62.5", snap.Humidity)
	assert.Equal(t, "-3.0", snap.Temperature)
	assert.Equal(t, "0.0", snap.WindSpeed)
}

func TestSnapshotDefaultsMissingContext(t *testing.T) {
	fs, err := Validate(validInput())
	require.NoError(t, err)

	snap := Snapshot(validInput(), fs)
	assert.Empty(t, snap.Location)
	assert.Empty(t, snap.Date)
	assert.Empty(t, snap.Time)
}

func TestCatalogueCoversRequiredParams(t *testing.T) {
	cat := Catalogue()
	for _, key := range RequiredParams {
		_, ok := cat[key]
		assert.True(t, ok, key)
	}
	assert.Equal(t, CloudCoverTypes, cat[KeyCloudCover].ValidValues)
}
