package charts

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/dataprocessing"
	"energyreport/internal/errors"
)

// HeatmapOptions describes a correlation heatmap.
type HeatmapOptions struct {
	Title  string
	Width  float64 // inches
	Height float64 // inches
}

// colorBarShare is the fraction of the canvas width given to the colour bar.
const colorBarShare = 0.15

// matrixGrid adapts a correlation matrix to plotter.GridXYZ. Rows are
// flipped so the first label is drawn at the top.
type matrixGrid struct {
	cm *dataprocessing.CorrelationMatrix
}

func (g matrixGrid) Dims() (c, r int) {
	n := len(g.cm.Labels)
	return n, n
}

func (g matrixGrid) X(c int) float64 { return float64(c) }

func (g matrixGrid) Y(r int) float64 { return float64(r) }

func (g matrixGrid) Z(c, r int) float64 { return g.cm.At(g.row(r), c) }

// Min and Max pin the colour scale to the full coefficient range.
func (g matrixGrid) Min() float64 { return -1 }

func (g matrixGrid) Max() float64 { return 1 }

// row maps a grid row to a matrix row.
func (g matrixGrid) row(r int) int { return len(g.cm.Labels) - 1 - r }

// Heatmap draws an annotated correlation heatmap with a colour bar on a
// diverging blue to red scale fixed to [-1, 1], and writes it to path.
func Heatmap(cm *dataprocessing.CorrelationMatrix, opts HeatmapOptions, path string) error {
	n := len(cm.Labels)
	if n == 0 {
		return errors.NewRenderError(path, fmt.Errorf("empty correlation matrix"))
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := matrixGrid{cm: cm}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.White

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.Add(hm)

	if err := addCellBorders(p, n); err != nil {
		return errors.NewRenderError(path, err)
	}

	labels, err := cellLabels(grid)
	if err != nil {
		return errors.NewRenderError(path, err)
	}
	if labels != nil {
		p.Add(labels)
	}

	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, label := range cm.Labels {
		xTicks[i] = plot.Tick{Value: float64(i), Label: label}
		yTicks[i] = plot.Tick{Value: float64(grid.row(i)), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Tick.Label.Font.Size = vg.Points(12)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.HideX()
	bar.Y.Padding = 0

	if err := saveWithColorBar(p, bar, opts.Width, opts.Height, path); err != nil {
		return errors.NewRenderError(path, err)
	}
	return nil
}

// addCellBorders outlines every cell with a thin black line.
func addCellBorders(p *plot.Plot, n int) error {
	lo, hi := -0.5, float64(n)-0.5
	for i := 0; i <= n; i++ {
		at := float64(i) - 0.5
		for _, pts := range []plotter.XYs{
			{{X: at, Y: lo}, {X: at, Y: hi}},
			{{X: lo, Y: at}, {X: hi, Y: at}},
		} {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return err
			}
			line.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
			p.Add(line)
		}
	}
	return nil
}

// cellLabels writes each coefficient with two decimals at its cell centre.
// Missing coefficients are left blank.
func cellLabels(g matrixGrid) (*plotter.Labels, error) {
	cols, rows := g.Dims()
	var xys plotter.XYLabels
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			z := g.Z(c, r)
			if math.IsNaN(z) {
				continue
			}
			xys.XYs = append(xys.XYs, plotter.XY{X: g.X(c), Y: g.Y(r)})
			xys.Labels = append(xys.Labels, fmt.Sprintf("%.2f", z))
		}
	}
	if len(xys.Labels) == 0 {
		return nil, nil
	}

	labels, err := plotter.NewLabels(xys)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(9)
	}
	return labels, nil
}

// saveWithColorBar lays out the heatmap and its colour bar side by side on
// one canvas in the format named by the path extension.
func saveWithColorBar(p, bar *plot.Plot, width, height float64, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	w := vg.Length(width) * vg.Inch
	h := vg.Length(height) * vg.Inch

	canvas, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return err
	}
	dc := draw.New(canvas)
	p.Draw(draw.Crop(dc, 0, -w*colorBarShare, 0, 0))
	bar.Draw(draw.Crop(dc, w*(1-colorBarShare)+w*0.03, -w*0.06, h*0.12, -h*0.12))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
