package generation

import (
	"context"
	"errors"
	"time"

	"solar-prediction-api/models"

	"gorm.io/gorm"
)

// Point is one row of the generation chart.
type Point struct {
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	PowerGenerated float64   `json:"power_generated"`
	City           string    `json:"city"`
	TS             time.Time `json:"ts"`
}

type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// LatestDays returns every reading from the two most recent UTC dates that have
// data, oldest first. An empty city means all cities.
func (r *Reader) LatestDays(ctx context.Context, city string) ([]Point, error) {
	newest, err := r.latestBefore(ctx, city, nil)
	if err != nil || newest == nil {
		return []Point{}, err
	}
	end := dayStart(*newest).AddDate(0, 0, 1)
	start := dayStart(*newest)

	if prev, err := r.latestBefore(ctx, city, &start); err != nil {
		return []Point{}, err
	} else if prev != nil {
		start = dayStart(*prev)
	}

	q := r.scoped(ctx, city).Where("ts >= ? AND ts < ?", start, end).Order("ts ASC")
	var rows []models.GenerationReading
	if err := q.Find(&rows).Error; err != nil {
		return []Point{}, err
	}

	out := make([]Point, 0, len(rows))
	for _, row := range rows {
		ts := row.TS.UTC()
		out = append(out, Point{
			Date:           ts.Format("2006-01-02"),
			Time:           ts.Format("15:04"),
			PowerGenerated: row.PowerGeneratedKW,
			City:           row.City,
			TS:             ts,
		})
	}
	return out, nil
}

func (r *Reader) latestBefore(ctx context.Context, city string, before *time.Time) (*time.Time, error) {
	q := r.scoped(ctx, city)
	if before != nil {
		q = q.Where("ts < ?", *before)
	}
	var row models.GenerationReading
	err := q.Order("ts DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.TS, nil
}

func (r *Reader) scoped(ctx context.Context, city string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.GenerationReading{})
	if city != "" {
		q = q.Where("city = ?", city)
	}
	return q
}

func dayStart(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
