package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

func RenderCSV(c Content) ([]byte, error) {
	var buf bytes.Buffer
	if len(c.Buckets) > 0 {
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{c.Period.Label(), "predicted_power_generated"}); err != nil {
			return nil, err
		}
		for _, b := range c.Buckets {
			if err := w.Write([]string{b.Key, strconv.FormatFloat(b.Total, 'f', -1, 64)}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	buf.WriteString("\n\nRecommendations:\n")
	for _, rec := range c.Recommendations {
		fmt.Fprintf(&buf, "- %s: %s\n", rec.Title, rec.Description)
	}
	return buf.Bytes(), nil
}
