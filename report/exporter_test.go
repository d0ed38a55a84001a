package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"solar-prediction-api/analytics"
	"solar-prediction-api/apperr"
	"solar-prediction-api/models"
	"solar-prediction-api/recommend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeSource struct {
	records map[string][]models.PredictionRecord
}

func (f *fakeSource) History(_ context.Context, ownerID string) []models.PredictionRecord {
	return f.records[ownerID]
}

func (f *fakeSource) Latest(_ context.Context, ownerID string) (*models.PredictionRecord, bool) {
	recs := f.records[ownerID]
	if len(recs) == 0 {
		return nil, false
	}
	// History is newest first
	r := recs[0]
	return &r, true
}

func record(at time.Time, power float64) models.PredictionRecord {
	return models.PredictionRecord{
		ID:      fmt.Sprintf("rec-%d", at.Unix()),
		OwnerID: "u1",
		Prediction: datatypes.NewJSONType(models.PredictionResult{
			PredictedPowerGenerated: power,
			InputParameters: models.FeatureSet{
				PanelArea: 50, Tilt: 32, Azimuth: 180, Temperature: 25, Humidity: 50,
				CloudCover: "Thin high clouds",
			},
		}),
		PredictedPower: power,
		CreatedAt:      at,
	}
}

func fixedClock() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }

func newExporter(recs ...models.PredictionRecord) *Exporter {
	src := &fakeSource{records: map[string][]models.PredictionRecord{"u1": recs}}
	return NewExporter(src).WithClock(fixedClock)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", CSV, false},
		{"PDF", PDF, false},
		{"", CSV, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperr.ErrInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportCSVDaily(t *testing.T) {
	e := newExporter(
		record(time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), 2.5),
		record(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 1.5),
		record(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 4),
	)

	doc, err := e.Export(context.Background(), "u1", CSV, analytics.Daily)
	require.NoError(t, err)

	assert.Equal(t, "solar_report_daily_2025-06-15.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)

	want := "date,predicted_power_generated\n" +
		"2025-06-01,4\n" +
		"2025-06-02,4\n" +
		"\n\nRecommendations:\n" +
		"- Great Job!: Your solar system is configured for maximum efficiency based on your latest prediction. Keep monitoring for seasonal or environmental changes.\n"
	assert.Equal(t, want, string(doc.Body))
}

func TestExportCSVNoHistory(t *testing.T) {
	e := newExporter()

	doc, err := e.Export(context.Background(), "u1", CSV, analytics.Monthly)
	require.NoError(t, err)

	body := string(doc.Body)
	assert.True(t, strings.HasPrefix(body, "\n\nRecommendations:\n"))
	assert.Contains(t, body, "- No Prediction Data: ")
}

func TestExportPDF(t *testing.T) {
	e := newExporter(record(time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), 1.25))

	doc, err := e.Export(context.Background(), "u1", PDF, analytics.Weekly)
	require.NoError(t, err)

	assert.Equal(t, "solar_report_weekly_2025-06-15.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF-")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := newExporter()

	_, err := e.Export(context.Background(), "u1", Format("xml"), analytics.Daily)
	assert.True(t, errors.Is(err, apperr.ErrInvalidFormat))
}

func TestLayoutFirstPage(t *testing.T) {
	c := Content{
		Period: analytics.Daily,
		Buckets: []analytics.Bucket{
			{Key: "2025-06-01", Total: 4},
			{Key: "2025-06-02", Total: 2.346},
		},
		Recommendations: recommend.Evaluate(nil),
	}

	got := Layout(c)
	require.Len(t, got, 5)

	assert.Equal(t, Placement{Page: 1, X: MarginX, Y: 750, Text: "Solar Prediction Report (Daily)"}, got[0])
	assert.Equal(t, Placement{Page: 1, X: MarginX, Y: 720, Text: "2025-06-01: 4.00 kWh"}, got[1])
	assert.Equal(t, Placement{Page: 1, X: MarginX, Y: 700, Text: "2025-06-02: 2.35 kWh"}, got[2])
	assert.Equal(t, Placement{Page: 1, X: MarginX, Y: 660, Text: "Recommendations:"}, got[3])
	assert.Equal(t, 1, got[4].Page)
	assert.Equal(t, IndentX, got[4].X)
	assert.Equal(t, 640.0, got[4].Y)
	assert.True(t, strings.HasPrefix(got[4].Text, "- No Prediction Data: "))
}

func TestLayoutBreaksPages(t *testing.T) {
	var buckets []analytics.Bucket
	for i := 0; i < 80; i++ {
		buckets = append(buckets, analytics.Bucket{Key: fmt.Sprintf("k%02d", i), Total: 1})
	}

	got := Layout(Content{Period: analytics.None, Buckets: buckets, Recommendations: recommend.Evaluate(nil)})

	pages := map[int]int{}
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Y, BottomY, p.Text)
		assert.LessOrEqual(t, p.Y, TopY, p.Text)
		pages[p.Page]++
	}
	assert.Greater(t, len(pages), 1)

	// lines 720..60 fit on page one after the title
	assert.Equal(t, 1+34, pages[1])
	assert.Equal(t, 2, got[35].Page)
	assert.Equal(t, TopY, got[35].Y)
}

func TestRenderPDFMultiPage(t *testing.T) {
	var buckets []analytics.Bucket
	for i := 0; i < 120; i++ {
		buckets = append(buckets, analytics.Bucket{Key: fmt.Sprintf("k%03d", i), Total: float64(i)})
	}

	body, err := RenderPDF(Content{Period: analytics.None, Buckets: buckets, Recommendations: recommend.Evaluate(nil)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}
