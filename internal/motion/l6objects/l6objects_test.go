package l6objects

import (
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
)

func object(first, center image.Point, firstTime time.Duration) *l5tracks.Object {
	return &l5tracks.Object{
		ClassID:    -1,
		Type:       l5tracks.ObjectStatic,
		Center:     center,
		Rect:       image.Rectangle{Min: center.Sub(image.Pt(5, 5)), Max: center.Add(image.Pt(5, 5))},
		Trajectory: []l5tracks.Position{{Point: first, Time: firstTime}, {Point: center, Time: firstTime + time.Second}},
		FirstPoint: first,
		FirstTime:  firstTime,
	}
}

func TestClassifier_Promotion(t *testing.T) {
	t.Parallel()
	c := NewClassifier(DefaultClassifierConfig(), image.Pt(64, 64))

	mover := object(image.Pt(10, 30), image.Pt(20, 30), 0)
	jitter := object(image.Pt(40, 40), image.Pt(44, 42), 0)
	late := object(image.Pt(10, 10), image.Pt(30, 10), 500*time.Millisecond)
	objs := []*l5tracks.Object{mover, jitter, late}

	assert.Empty(t, c.Classify(objs, 900*time.Millisecond), "too early for everyone")

	promoted := c.Classify(objs, time.Second)
	require.Equal(t, []*l5tracks.Object{mover}, promoted)
	assert.Equal(t, l5tracks.ObjectMoving, mover.Type)
	assert.Equal(t, 0, mover.ClassID)
	assert.Equal(t, l5tracks.ObjectStatic, jitter.Type, "shift below minimum")

	promoted = c.Classify(objs, 1500*time.Millisecond)
	require.Equal(t, []*l5tracks.Object{late}, promoted)
	assert.Equal(t, 1, late.ClassID)

	assert.Empty(t, c.Classify(objs, 3*time.Second), "promotion happens once")
}

func TestReporter_EventOrder(t *testing.T) {
	t.Parallel()
	r := NewReporter(12, 1)

	gone := object(image.Pt(0, 0), image.Pt(20, 20), 0)
	gone.Type, gone.ClassID = l5tracks.ObjectMoving, 4
	goneStatic := object(image.Pt(0, 0), image.Pt(30, 30), 0)
	fresh := object(image.Pt(0, 0), image.Pt(40, 40), 0)
	fresh.Type, fresh.ClassID = l5tracks.ObjectMoving, 5

	md := r.Report([]*l5tracks.Object{fresh}, []*l5tracks.Object{gone, goneStatic}, []*l5tracks.Object{fresh}, l4segment.TransitionSabotageOn)

	want := []Event{
		{Type: EventSabotageOn, Text: "SabotageOn", ObjectID: -1},
		{Type: EventObjectOut, Text: "ObjectOut", ObjectID: 4},
		{Type: EventObjectIn, Text: "ObjectIn", ObjectID: 5},
	}
	if diff := cmp.Diff(want, md.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, md.Objects, 2, "current and just removed moving objects")
	assert.Equal(t, 5, md.Objects[0].ID)
	assert.Equal(t, 4, md.Objects[1].ID)
	assert.True(t, md.HasEvent(EventObjectOut))
	assert.False(t, md.HasEvent(EventSabotageOff))
}

func TestReporter_SabotageOff(t *testing.T) {
	t.Parallel()
	md := NewReporter(1, 1).Report(nil, nil, nil, l4segment.TransitionSabotageOff)
	require.Len(t, md.Events, 1)
	assert.Equal(t, EventSabotageOff, md.Events[0].Type)
	assert.Equal(t, SceneEventID, md.Events[0].ObjectID)
	assert.Empty(t, md.Objects)

	assert.Empty(t, NewReporter(1, 1).Report(nil, nil, nil, l4segment.TransitionNone).Events)
}

func TestReporter_SmoothingAndScale(t *testing.T) {
	t.Parallel()
	o := &l5tracks.Object{
		ClassID: 0,
		Type:    l5tracks.ObjectMoving,
		Rect:    image.Rect(15, 5, 25, 15),
		Trajectory: []l5tracks.Position{
			{Point: image.Pt(0, 10), Time: 0},
			{Point: image.Pt(10, 10), Time: time.Second},
			{Point: image.Pt(20, 10), Time: 2 * time.Second},
		},
	}
	md := NewReporter(1, 2).Report([]*l5tracks.Object{o}, nil, nil, l4segment.TransitionNone)
	require.Len(t, md.Objects, 1)

	info := md.Objects[0]
	assert.Equal(t, image.Rect(30, 10, 50, 30), info.Rect)
	want := []TrajectoryPoint{
		{Point: image.Pt(10, 20), Time: 0},
		{Point: image.Pt(20, 20), Time: time.Second},
		{Point: image.Pt(30, 20), Time: 2 * time.Second},
	}
	assert.Equal(t, want, info.Trajectory)
}

func TestClassifierConfigValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultClassifierConfig().Validate())
	assert.Error(t, (&ClassifierConfig{ShiftMin: -1}).Validate())
	assert.Error(t, (&ClassifierConfig{TimeMin: -time.Second}).Validate())
}
