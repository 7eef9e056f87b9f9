package charts

import (
	stderrors "errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/dataprocessing"
	"energyreport/internal/errors"
)

// ErrNoSeries is returned when a time series chart has nothing to draw.
var ErrNoSeries = stderrors.New("no series to plot")

// LineOptions describes a time series chart.
type LineOptions struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	Width       float64 // inches
	Height      float64 // inches
}

// LineChart draws one line per series with circle markers and writes it to
// path. The output format follows the file extension. Missing values break
// a line into separate segments.
func LineChart(set *dataprocessing.SeriesSet, opts LineOptions, path string) error {
	if set.Empty() {
		return ErrNoSeries
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = opts.XLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = opts.YLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)

	p.Add(dashedGrid())

	p.Legend.Top = true
	if opts.LegendTitle != "" {
		p.Legend.Add(opts.LegendTitle)
	}

	for i, s := range set.Series {
		lineStyle := draw.LineStyle{Color: plotutil.Color(i), Width: vg.Points(2)}
		glyphStyle := draw.GlyphStyle{Color: plotutil.Color(i), Radius: vg.Points(3), Shape: draw.CircleGlyph{}}

		for _, seg := range segments(set.Years, s.Values) {
			line, points, err := plotter.NewLinePoints(seg)
			if err != nil {
				return errors.NewRenderError(path, fmt.Errorf("series %s: %w", s.Country, err))
			}
			line.LineStyle = lineStyle
			points.GlyphStyle = glyphStyle
			p.Add(line, points)
		}

		p.Legend.Add(s.Country, &plotter.Line{LineStyle: lineStyle}, &plotter.Scatter{GlyphStyle: glyphStyle})
	}

	if err := save(p, opts.Width, opts.Height, path); err != nil {
		return errors.NewRenderError(path, err)
	}
	return nil
}

// segments splits a series at missing values into contiguous runs of points.
func segments(years []int, values []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(years[i]), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func dashedGrid() *plotter.Grid {
	grid := plotter.NewGrid()
	style := draw.LineStyle{
		Color:  color.Gray{Y: 176},
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}
	grid.Vertical = style
	grid.Horizontal = style
	return grid
}

func save(p *plot.Plot, width, height float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}
	return p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path)
}
