package analytics

import (
	"sort"
	"strings"
	"time"

	"solar-prediction-api/apperr"
	"solar-prediction-api/models"

	"gonum.org/v1/gonum/floats"
)

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	None    Granularity = "none"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly, None:
		return g, nil
	case "":
		return Daily, nil
	default:
		return "", apperr.Invalid("period", "Invalid period %q. Must be one of: daily, weekly, monthly, none", s)
	}
}

// Label is the column header used for bucket keys in exports.
func (g Granularity) Label() string {
	switch g {
	case Daily:
		return "date"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	default:
		return "created_at"
	}
}

// Title is the human-readable period name used in report titles.
func (g Granularity) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

type Bucket struct {
	Key   string  `json:"key"`
	Total float64 `json:"predicted_power_generated"`
	Count int     `json:"count"`
}

// Key truncates ts to its bucket boundary in UTC. Keys sort lexically in time order.
func Key(ts time.Time, g Granularity) string {
	ts = ts.UTC()
	switch g {
	case Daily:
		return ts.Format("2006-01-02")
	case Weekly:
		return weekStart(ts).Format("2006-01-02")
	case Monthly:
		return ts.Format("2006-01")
	default:
		return ts.Format(time.RFC3339Nano)
	}
}

// weekStart returns the Monday of ts's ISO week.
func weekStart(ts time.Time) time.Time {
	offset := (int(ts.Weekday()) + 6) % 7
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// Bucketize sums predicted power per bucket. Buckets come back in ascending key order.
func Bucketize(records []models.PredictionRecord, g Granularity) []Bucket {
	if len(records) == 0 {
		return []Bucket{}
	}
	values := make(map[string][]float64)
	for _, r := range records {
		k := Key(r.CreatedAt, g)
		values[k] = append(values[k], r.Prediction.Data().PredictedPowerGenerated)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: k, Total: floats.Sum(values[k]), Count: len(values[k])})
	}
	return out
}
