package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points, measured from the bottom edge of a US Letter page.
const (
	PageHeight = 792.0
	TopY       = 750.0
	BottomY    = 50.0
	LineStep   = 20.0
	TitleGap   = 30.0
	MarginX    = 30.0
	IndentX    = 40.0
	FontSize   = 12.0
)

type Placement struct {
	Page int
	X    float64
	Y    float64
	Text string
}

// Layout positions every line of the report, starting a new page whenever the
// cursor would drop below BottomY.
func Layout(c Content) []Placement {
	var out []Placement
	page, y := 1, TopY

	place := func(x float64, text string) {
		if y < BottomY {
			page++
			y = TopY
		}
		out = append(out, Placement{Page: page, X: x, Y: y, Text: text})
		y -= LineStep
	}

	out = append(out, Placement{Page: page, X: MarginX, Y: y, Text: fmt.Sprintf("Solar Prediction Report (%s)", c.Period.Title())})
	y -= TitleGap

	for _, b := range c.Buckets {
		place(MarginX, fmt.Sprintf("%s: %.2f kWh", b.Key, b.Total))
	}
	y -= LineStep
	place(MarginX, "Recommendations:")
	for _, rec := range c.Recommendations {
		place(IndentX, fmt.Sprintf("- %s: %s", rec.Title, rec.Description))
	}
	return out
}

func RenderPDF(c Content) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	current := 0
	for _, p := range Layout(c) {
		for current < p.Page {
			pdf.AddPage()
			current++
		}
		pdf.Text(p.X, PageHeight-p.Y, tr(p.Text))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
