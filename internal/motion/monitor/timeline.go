package monitor

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
)

// TimelineSample is the activity recorded for one frame.
type TimelineSample struct {
	FrameIdx  int
	Timestamp time.Duration
	Regions   int
	Objects   int
	Events    []l6objects.Event
}

// Timeline collects per-frame activity and renders it as an HTML page.
// It is not safe for concurrent use.
type Timeline struct {
	title   string
	samples []TimelineSample
}

// NewTimeline returns an empty timeline.
func NewTimeline(title string) *Timeline {
	return &Timeline{title: title}
}

// Record appends the activity of frame frameIdx.
func (tl *Timeline) Record(frameIdx int, ts time.Duration, regions int, md *l6objects.Metadata) {
	s := TimelineSample{FrameIdx: frameIdx, Timestamp: ts, Regions: regions}
	if md != nil {
		s.Objects = len(md.Objects)
		s.Events = append(s.Events, md.Events...)
	}
	tl.samples = append(tl.samples, s)
}

// Samples returns the recorded samples in frame order.
func (tl *Timeline) Samples() []TimelineSample { return tl.samples }

// eventRows assigns each event type its own row in the event chart.
var eventRows = []l6objects.EventType{
	l6objects.EventObjectIn,
	l6objects.EventObjectOut,
	l6objects.EventSabotageOn,
	l6objects.EventSabotageOff,
}

// Render writes the timeline page to w.
func (tl *Timeline) Render(w io.Writer) error {
	frames := make([]string, len(tl.samples))
	regions := make([]opts.LineData, len(tl.samples))
	objects := make([]opts.LineData, len(tl.samples))
	events := make(map[l6objects.EventType][]opts.ScatterData)
	for i, s := range tl.samples {
		frames[i] = strconv.Itoa(s.FrameIdx)
		regions[i] = opts.LineData{Value: s.Regions}
		objects[i] = opts.LineData{Value: s.Objects}
		for _, e := range s.Events {
			events[e.Type] = append(events[e.Type], opts.ScatterData{
				Value: []interface{}{strconv.Itoa(s.FrameIdx), rowOf(e.Type)},
				Name:  fmt.Sprintf("%s id=%d t=%v", e.Text, e.ObjectID, s.Timestamp),
			})
		}
	}

	activity := charts.NewLine()
	activity.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: tl.title, Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: tl.title, Subtitle: fmt.Sprintf("frames=%d", len(tl.samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	activity.SetXAxis(frames).
		AddSeries("regions", regions).
		AddSeries("moving objects", objects)

	marks := charts.NewScatter()
	marks.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "240px"}),
		charts.WithTitleOpts(opts.Title{Title: "Events"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", Type: "category", Data: frames}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: len(eventRows)}),
	)
	for _, et := range eventRows {
		marks.AddSeries(string(et), events[et], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}

	page := components.NewPage()
	page.PageTitle = tl.title
	page.AddCharts(activity, marks)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}

func rowOf(et l6objects.EventType) int {
	for i, r := range eventRows {
		if r == et {
			return i
		}
	}
	return len(eventRows)
}
