package monitor

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
)

// TrajectoryPlotter accumulates the trajectories reported for moving
// objects and renders them over the frame area.
type TrajectoryPlotter struct {
	mu        sync.Mutex
	frameSize image.Point
	paths     map[int][]l6objects.TrajectoryPoint
}

// NewTrajectoryPlotter returns a plotter for frames of frameSize.
func NewTrajectoryPlotter(frameSize image.Point) *TrajectoryPlotter {
	return &TrajectoryPlotter{
		frameSize: frameSize,
		paths:     make(map[int][]l6objects.TrajectoryPoint),
	}
}

// Add records the trajectories in md. The latest report for an object
// replaces earlier ones since each report carries the full history.
func (tp *TrajectoryPlotter) Add(md *l6objects.Metadata) {
	if md == nil {
		return
	}
	tp.mu.Lock()
	defer tp.mu.Unlock()
	for _, o := range md.Objects {
		if len(o.Trajectory) == 0 {
			continue
		}
		tp.paths[o.ID] = append(tp.paths[o.ID][:0], o.Trajectory...)
	}
}

// ObjectCount returns the number of objects with a recorded trajectory.
func (tp *TrajectoryPlotter) ObjectCount() int {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return len(tp.paths)
}

// Save writes the plot as a PNG (or any format gonum/plot infers from
// the extension) to path, creating parent directories.
func (tp *TrajectoryPlotter) Save(path string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Object trajectories (%d objects)", len(tp.paths))
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.X.Min, p.X.Max = 0, float64(tp.frameSize.X)
	p.Y.Min, p.Y.Max = 0, float64(tp.frameSize.Y)
	p.Y.Tick.Marker = flippedTicks{height: float64(tp.frameSize.Y)}
	p.Add(plotter.NewGrid())

	ids := make([]int, 0, len(tp.paths))
	for id := range tp.paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	colors := generateColors(len(ids))

	for i, id := range ids {
		traj := tp.paths[id]
		pts := make(plotter.XYs, len(traj))
		for j, pt := range traj {
			pts[j] = plotter.XY{X: float64(pt.Point.X), Y: float64(tp.frameSize.Y - pt.Point.Y)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("trajectory %d: %w", id, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("object "+strconv.Itoa(id), line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}

// flippedTicks labels the y axis in image convention (0 at the top)
// while the data is plotted bottom-up.
type flippedTicks struct {
	height float64
}

func (f flippedTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = strconv.FormatFloat(f.height-ticks[i].Value, 'f', -1, 64)
		}
	}
	return ticks
}

// generateColors returns n evenly spaced hues.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		q := l + s - l*s
		if l < 0.5 {
			q = l * (1 + s)
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
