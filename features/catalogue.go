package features

type ParameterSpec struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Unit        string   `json:"unit,omitempty"`
	Range       string   `json:"range,omitempty"`
	ValidValues []string `json:"valid_values,omitempty"`
}

func Catalogue() map[string]ParameterSpec {
	return map[string]ParameterSpec{
		KeyPanelArea:   {Type: "float", Description: "Panel area in square meters", Unit: "m²", Range: "> 0"},
		KeyTilt:        {Type: "float", Description: "Panel tilt angle", Unit: "degrees", Range: "0-90"},
		KeyAzimuth:     {Type: "float", Description: "Panel azimuth angle (0° = North, 90° = East, 180° = South, 270° = West)", Unit: "degrees", Range: "0-360"},
		KeyGHI:         {Type: "float", Description: "Global Horizontal Irradiance (Solar Irradiance)", Unit: "W/m²", Range: "≥ 0"},
		KeyDNI:         {Type: "float", Description: "Direct Normal Irradiance", Unit: "W/m²", Range: "≥ 0"},
		KeyTemperature: {Type: "float", Description: "Ambient temperature", Unit: "Celsius", Range: "Any"},
		KeyHumidity:    {Type: "float", Description: "Relative humidity", Unit: "percentage", Range: "0-100"},
		KeyWindSpeed:   {Type: "float", Description: "Wind speed", Unit: "m/s", Range: "≥ 0"},
		KeyCloudCover:  {Type: "string", Description: "Cloud cover type", ValidValues: CloudCoverTypes},
	}
}
