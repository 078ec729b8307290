// Package plot renders indicator charts as static images for reports.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/asha.report/internal/fsutil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/security"
)

const (
	Width  = 12 * vg.Inch
	Height = 6 * vg.Inch
)

// LevelColors maps tiers to bar colours.
var LevelColors = map[indicators.Level]color.Color{
	indicators.LevelTop:    color.RGBA{R: 46, G: 160, B: 67, A: 255},
	indicators.LevelMiddle: color.RGBA{R: 230, G: 160, B: 20, A: 255},
	indicators.LevelLow:    color.RGBA{R: 210, G: 50, B: 50, A: 255},
}

// Coverage draws one bar per indicator at its percentage, coloured by tier,
// with a reference line at 100%.
func Coverage(title string, inds []indicators.DerivedIndicator) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Coverage (%)"
	p.Y.Min = 0
	p.Y.Max = 110

	if len(inds) == 0 {
		return p, nil
	}

	labels := make([]string, len(inds))
	for i, ind := range inds {
		labels[i] = ind.Label
		if v := float64(ind.Percentage); v > p.Y.Max {
			p.Y.Max = v + 10
		}
	}

	// One series per level so the legend carries the tier colours; bars of
	// other levels are zero height.
	for _, level := range []indicators.Level{indicators.LevelTop, indicators.LevelMiddle, indicators.LevelLow} {
		vals := make(plotter.Values, len(inds))
		present := false
		for i, ind := range inds {
			if ind.Level == level {
				vals[i] = float64(ind.Percentage)
				present = true
			}
		}
		if !present {
			continue
		}

		bars, err := plotter.NewBarChart(vals, vg.Points(28))
		if err != nil {
			return nil, fmt.Errorf("bar chart: %w", err)
		}
		bars.Color = LevelColors[level]
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(level.String(), bars)
	}

	target := plotter.NewFunction(func(float64) float64 { return 100 })
	target.Color = color.Gray{Y: 96}
	target.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(target)

	p.NominalX(labels...)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Spread draws a box per indicator summarising worker percentages across
// scorecards. Indicators no worker reported on are left out.
func Spread(title string, defs []indicators.Definition, cards []indicators.Scorecard) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Worker coverage (%)"
	p.Y.Min = 0

	var labels []string
	for _, def := range defs {
		var vals plotter.Values
		for _, card := range cards {
			for _, ind := range card.Indicators {
				if ind.Key == def.Key {
					vals = append(vals, float64(ind.Percentage))
				}
			}
		}
		if len(vals) == 0 {
			continue
		}

		box, err := plotter.NewBoxPlot(vg.Points(24), float64(len(labels)), vals)
		if err != nil {
			return nil, fmt.Errorf("box plot %s: %w", def.Key, err)
		}
		p.Add(box)
		labels = append(labels, def.Label)
	}

	if len(labels) > 0 {
		p.NominalX(labels...)
	}
	return p, nil
}

// WritePNG renders p as PNG to w.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG writes p to path on fsys, creating the parent directory. The path
// must lie in the working or temp directory.
func SavePNG(fsys fsutil.FileSystem, p *plot.Plot, path string) error {
	if err := security.ValidateExportPath(path); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DefaultFilename names the PNG for a region, kind and period.
func DefaultFilename(dir, region string, kind indicators.Kind, period indicators.Period) string {
	if region == "" {
		region = "all"
	}
	name := fmt.Sprintf("%s-%s-%s.png",
		security.SanitizeFilename(region), security.SanitizeFilename(string(kind)), period)
	return filepath.Join(dir, name)
}
