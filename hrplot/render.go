package hrplot

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default image size.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// Render builds a plot with one line-and-points series per group. Display
// offsets are already applied, so times are shown as UTC clock times.
func Render(series []Series, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "heart rate (bpm)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Add(plotter.NewGrid())

	for i, s := range series {
		color := plotutil.Color(i)
		labelled := false
		for _, seg := range s.Segments() {
			xys := make(plotter.XYs, len(seg))
			for j, pt := range seg {
				xys[j].X = float64(pt.Time.Unix())
				xys[j].Y = pt.HeartRate
			}
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return nil, fmt.Errorf("plot %s: %w", s.Group, err)
			}
			line.Color = color
			points.Color = color
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(1)
			p.Add(line, points)
			if !labelled {
				p.Legend.Add(string(s.Group), line, points)
				labelled = true
			}
		}
	}
	return p, nil
}

// Save renders series to path. The image format follows the file extension.
func Save(series []Series, title, path string, width, height vg.Length) error {
	p, err := Render(series, title)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// Encode renders series as an image in the given format ("png", "svg",
// "pdf", ...) to w.
func Encode(w io.Writer, series []Series, title, format string, width, height vg.Length) error {
	p, err := Render(series, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("encode plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
