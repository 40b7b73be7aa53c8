// Command motion-detect replays a directory of frames through the
// motion detector, logging events and optionally persisting them and
// rendering diagnostics.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/banshee-data/motiondetect/internal/config"
	"github.com/banshee-data/motiondetect/internal/monitoring"
	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
	"github.com/banshee-data/motiondetect/internal/motion/monitor"
	"github.com/banshee-data/motiondetect/internal/motion/pipeline"
	"github.com/banshee-data/motiondetect/internal/motion/storage/sqlite"
	"github.com/banshee-data/motiondetect/internal/version"
)

var (
	framesDir    = flag.String("frames", "", "Directory of .png/.jpg frames, processed in name order (required)")
	fps          = flag.Float64("fps", 25, "Frame rate used to stamp frames")
	configPath   = flag.String("config", "", "Tuning config JSON (default: built-in defaults)")
	dbPath       = flag.String("db", "", "SQLite database to record the run in")
	annotateDir  = flag.String("annotate", "", "Directory for annotated PNG frames")
	plotPath     = flag.String("plot", "", "Write a trajectory plot PNG to this path")
	timelinePath = flag.String("timeline", "", "Write an HTML timeline to this path")
	roiFlag      = flag.String("roi", "", `Region of interest polygon "x,y;x,y;..." in [-1, 1]`)
	minObject    = flag.Float64("min-object", 0, "Minimal object size, overrides the config when > 0")
	debugLog     = flag.Bool("debug", false, "Enable debug logging")
	showVersion  = flag.Bool("version", false, "Print the version and exit")
)

type options struct {
	FramesDir    string
	FPS          float64
	ConfigPath   string
	DBPath       string
	AnnotateDir  string
	PlotPath     string
	TimelinePath string
	ROI          string
	MinObject    float64
}

type summary struct {
	RunID  string
	Frames int
	Events map[l6objects.EventType]int
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("motion-detect", version.String())
		return
	}
	monitoring.SetDebug(*debugLog)
	monitoring.Logf("motion-detect %s", version.String())
	if *framesDir == "" {
		fmt.Fprintln(os.Stderr, "motion-detect: -frames is required")
		flag.Usage()
		os.Exit(2)
	}

	s, err := run(options{
		FramesDir:    *framesDir,
		FPS:          *fps,
		ConfigPath:   *configPath,
		DBPath:       *dbPath,
		AnnotateDir:  *annotateDir,
		PlotPath:     *plotPath,
		TimelinePath: *timelinePath,
		ROI:          *roiFlag,
		MinObject:    *minObject,
	})
	if err != nil {
		log.Fatalf("motion-detect: %v", err)
	}
	log.Printf("run %s: %d frames, %d in, %d out, %d sabotage",
		s.RunID, s.Frames, s.Events[l6objects.EventObjectIn], s.Events[l6objects.EventObjectOut],
		s.Events[l6objects.EventSabotageOn])
}

func loadTuning(o options) (*config.TuningConfig, error) {
	tuning := config.EmptyTuningConfig()
	if o.ConfigPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(o.ConfigPath); err != nil {
			return nil, err
		}
	}
	if o.MinObject > 0 {
		w, h := o.MinObject, o.MinObject
		tuning.MinObjectWidth, tuning.MinObjectHeight = &w, &h
	}
	return tuning, nil
}

func run(o options) (*summary, error) {
	if o.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", o.FPS)
	}
	paths, err := listFrames(o.FramesDir)
	if err != nil {
		return nil, err
	}
	tuning, err := loadTuning(o)
	if err != nil {
		return nil, err
	}
	model := pipeline.ModelFromTuning(tuning)
	if model.ROI, err = parseROI(o.ROI); err != nil {
		return nil, err
	}
	det, err := pipeline.NewDetector(pipeline.ConfigFromTuning(tuning), model)
	if err != nil {
		return nil, err
	}

	first, err := loadFrame(paths[0])
	if err != nil {
		return nil, err
	}
	size := first.Bounds().Size()

	var (
		runs   *sqlite.RunStore
		events *sqlite.EventStore
	)
	s := &summary{Events: make(map[l6objects.EventType]int)}
	if o.DBPath != "" {
		db, err := sqlite.Open(o.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		params, err := json.Marshal(tuning)
		if err != nil {
			return nil, fmt.Errorf("marshal tuning: %w", err)
		}
		runs, events = sqlite.NewRunStore(db.DB), sqlite.NewEventStore(db.DB)
		r := &sqlite.Run{
			SourcePath:  o.FramesDir,
			ParamsJSON:  params,
			FrameWidth:  size.X,
			FrameHeight: size.Y,
			Version:     version.Version,
		}
		if err := runs.Insert(r); err != nil {
			return nil, err
		}
		s.RunID = r.RunID
	}
	if o.AnnotateDir != "" {
		if err := os.MkdirAll(o.AnnotateDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create annotate dir: %w", err)
		}
	}

	plotter := monitor.NewTrajectoryPlotter(size)
	timeline := monitor.NewTimeline(fmt.Sprintf("motion-detect %s", filepath.Base(o.FramesDir)))
	step := time.Duration(float64(time.Second) / o.FPS)

	processErr := func() error {
		for i, path := range paths {
			img := first
			if i > 0 {
				if img, err = loadFrame(path); err != nil {
					return err
				}
			}
			ts := time.Duration(i) * step

			var out *image.RGBA
			if o.AnnotateDir != "" {
				out = image.NewRGBA(img.Bounds())
				draw.Draw(out, out.Rect, img, img.Bounds().Min, draw.Src)
			}
			md, err := nextFrame(det, img, ts, out)
			if errors.Is(err, pipeline.ErrFrameRejected) {
				monitoring.Logf("frame %d (%s) skipped: %v", i, filepath.Base(path), err)
				continue
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			s.Frames++

			for _, e := range md.Events {
				s.Events[e.Type]++
				monitoring.Logf("frame %d t=%v: %s id=%d", i, ts, e.Text, e.ObjectID)
			}
			if events != nil {
				if err := events.InsertFrame(s.RunID, i, ts, md); err != nil {
					return err
				}
			}
			plotter.Add(md)
			timeline.Record(i, ts, len(det.Regions()), md)

			if out != nil {
				name := fmt.Sprintf("%06d.png", i)
				if err := writePNG(filepath.Join(o.AnnotateDir, name), out); err != nil {
					return err
				}
			}
		}
		return nil
	}()

	if runs != nil {
		status := sqlite.RunStatusCompleted
		if processErr != nil {
			status = sqlite.RunStatusFailed
		}
		if err := runs.Finish(s.RunID, s.Frames, status); err != nil && processErr == nil {
			processErr = err
		}
	}
	if processErr != nil {
		return s, processErr
	}

	if o.PlotPath != "" {
		if err := plotter.Save(o.PlotPath); err != nil {
			return s, err
		}
	}
	if o.TimelinePath != "" {
		if err := writeTimeline(o.TimelinePath, timeline); err != nil {
			return s, err
		}
	}
	return s, nil
}

// nextFrame passes an untyped nil output when out is nil.
func nextFrame(det *pipeline.Detector, img image.Image, ts time.Duration, out *image.RGBA) (*l6objects.Metadata, error) {
	f := pipeline.Frame{Image: img, Timestamp: ts}
	if out == nil {
		return det.NextFrame(f, nil)
	}
	return det.NextFrame(f, out)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func writeTimeline(path string, tl *monitor.Timeline) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tl.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
