package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solar-prediction-api/analytics"
	"solar-prediction-api/apperr"
	"solar-prediction-api/metrics"
	"solar-prediction-api/models"
	"solar-prediction-api/recommend"
)

type Format string

const (
	CSV Format = "csv"
	PDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, PDF:
		return f, nil
	case "":
		return CSV, nil
	default:
		return "", apperr.New(apperr.ErrInvalidFormat, "format", "Invalid format")
	}
}

func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "text/csv"
}

type HistorySource interface {
	History(ctx context.Context, ownerID string) []models.PredictionRecord
	Latest(ctx context.Context, ownerID string) (*models.PredictionRecord, bool)
}

type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Content is everything a renderer needs; it is independent of the output format.
type Content struct {
	Period          analytics.Granularity
	Buckets         []analytics.Bucket
	Recommendations []recommend.Item
}

type Exporter struct {
	source HistorySource
	now    func() time.Time
}

func NewExporter(source HistorySource) *Exporter {
	return &Exporter{source: source, now: time.Now}
}

func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

func (e *Exporter) Compose(ctx context.Context, ownerID string, period analytics.Granularity) Content {
	buckets := analytics.Bucketize(e.source.History(ctx, ownerID), period)

	var snap *recommend.Snapshot
	if latest, ok := e.source.Latest(ctx, ownerID); ok {
		snap = recommend.SnapshotOf(latest)
	}
	return Content{
		Period:          period,
		Buckets:         buckets,
		Recommendations: recommend.Evaluate(snap),
	}
}

func (e *Exporter) Export(ctx context.Context, ownerID string, format Format, period analytics.Granularity) (*Document, error) {
	if format != CSV && format != PDF {
		return nil, apperr.New(apperr.ErrInvalidFormat, "format", "Invalid format")
	}
	content := e.Compose(ctx, ownerID, period)

	var (
		body []byte
		err  error
	)
	switch format {
	case CSV:
		body, err = RenderCSV(content)
	case PDF:
		body, err = RenderPDF(content)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}
	metrics.ReportsExported.WithLabelValues(string(format)).Inc()

	return &Document{
		Filename:    fmt.Sprintf("solar_report_%s_%s.%s", period, e.now().Format("2006-01-02"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
