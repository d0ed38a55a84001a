package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"solar-prediction-api/models"
)

var ErrInvalidReading = errors.New("invalid generation reading")

// Payload is the MQTT message published by site meters on solar/generation/<city>.
type Payload struct {
	TS               string  `json:"ts"`
	City             string  `json:"city"`
	PowerGeneratedKW float64 `json:"power_generated_kw"`
	Source           string  `json:"source"`
}

// Parse decodes a payload into a reading. A missing or unparseable ts falls back to now.
func Parse(raw []byte, now time.Time) (models.GenerationReading, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.GenerationReading{}, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}

	city := strings.TrimSpace(p.City)
	if city == "" {
		return models.GenerationReading{}, fmt.Errorf("%w: missing city", ErrInvalidReading)
	}
	if math.IsNaN(p.PowerGeneratedKW) || p.PowerGeneratedKW < 0 {
		return models.GenerationReading{}, fmt.Errorf("%w: power_generated_kw must be >= 0", ErrInvalidReading)
	}

	ts := now.UTC()
	if p.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, p.TS); err == nil {
			ts = parsed.UTC()
		}
	}
	source := p.Source
	if source == "" {
		source = "meter"
	}
	return models.GenerationReading{
		TS:               ts,
		City:             city,
		PowerGeneratedKW: p.PowerGeneratedKW,
		Source:           source,
	}, nil
}
