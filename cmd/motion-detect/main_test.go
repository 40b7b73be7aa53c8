package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motiondetect/internal/motion/l2model"
	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
	"github.com/banshee-data/motiondetect/internal/motion/storage/sqlite"
)

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, 25.0, *fps)
	assert.Equal(t, "", *framesDir)
	assert.Equal(t, 0.0, *minObject)
}

func TestListFrames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt", "d.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	got, err := listFrames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpeg"),
	}, got)

	_, err = listFrames(t.TempDir())
	assert.ErrorContains(t, err, "no png or jpeg frames")
	_, err = listFrames(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParseROI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    []l2model.Point
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "triangle", in: "-1,-1; 1,-1; 0, 1", want: []l2model.Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1}}},
		{name: "too few", in: "0,0;1,1", wantErr: true},
		{name: "missing y", in: "0,0;1;1,1", wantErr: true},
		{name: "not a number", in: "0,0;x,1;1,1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseROI(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// writeScenario writes frames of a 10x10 white block crossing a black
// 64x64 scene between frames 30 and 69.
func writeScenario(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		img := image.NewGray(image.Rect(0, 0, 64, 64))
		if i >= 30 && i < 70 {
			x := 10 + (i - 30)
			for y := 27; y < 37; y++ {
				for xx := x; xx < x+10; xx++ {
					img.SetGray(xx, y, color.Gray{Y: 255})
				}
			}
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()
	frames := t.TempDir()
	writeScenario(t, frames, 110)
	out := t.TempDir()

	o := options{
		FramesDir:    frames,
		FPS:          25,
		DBPath:       filepath.Join(out, "motion.db"),
		AnnotateDir:  filepath.Join(out, "annotated"),
		PlotPath:     filepath.Join(out, "trajectories.png"),
		TimelinePath: filepath.Join(out, "timeline.html"),
	}
	s, err := run(o)
	require.NoError(t, err)
	assert.Equal(t, 110, s.Frames)
	assert.Equal(t, 1, s.Events[l6objects.EventObjectIn])
	assert.Equal(t, 1, s.Events[l6objects.EventObjectOut])
	require.NotEmpty(t, s.RunID)

	assert.FileExists(t, o.PlotPath)
	assert.FileExists(t, o.TimelinePath)
	assert.FileExists(t, filepath.Join(o.AnnotateDir, "000109.png"))

	db, err := sqlite.Open(o.DBPath)
	require.NoError(t, err)
	defer db.Close()

	r, err := sqlite.NewRunStore(db.DB).Get(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.RunStatusCompleted, r.Status)
	assert.Equal(t, 110, r.FrameCount)
	assert.Equal(t, 64, r.FrameWidth)

	store := sqlite.NewEventStore(db.DB)
	events, err := store.ListByRun(s.RunID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ObjectIn", events[0].Type)
	assert.Equal(t, "ObjectOut", events[1].Type)

	traj, err := store.Trajectory(s.RunID, events[1].ObjectID)
	require.NoError(t, err)
	assert.NotEmpty(t, traj)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()
	frames := t.TempDir()
	writeScenario(t, frames, 1)

	_, err := run(options{FramesDir: frames, FPS: 0})
	assert.ErrorContains(t, err, "fps")

	_, err = run(options{FramesDir: frames, FPS: 25, ROI: "0,0"})
	assert.ErrorContains(t, err, "roi")

	_, err = run(options{FramesDir: frames, FPS: 25, ConfigPath: filepath.Join(frames, "tuning.yaml")})
	assert.Error(t, err)
}
