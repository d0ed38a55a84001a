package generation

import (
	"context"
	"fmt"

	"solar-prediction-api/models"

	"github.com/jackc/pgx/v5/pgconn"
)

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Writer inserts readings with pgx. Duplicate (ts, city) pairs are ignored.
type Writer struct {
	db Execer
}

func NewWriter(db Execer) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Insert(ctx context.Context, r models.GenerationReading) (bool, error) {
	tag, err := w.db.Exec(ctx, `
		INSERT INTO generation_readings (ts, city, power_generated_kw, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ts, city) DO NOTHING
	`, r.TS, r.City, r.PowerGeneratedKW, r.Source)
	if err != nil {
		return false, fmt.Errorf("insert generation reading: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
