package l4segment

import (
	"image"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
	"github.com/banshee-data/motiondetect/internal/motion/l3background"
)

// Transition is an edge of the stability state.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionSabotageOn
	TransitionSabotageOff
)

func (t Transition) String() string {
	switch t {
	case TransitionSabotageOn:
		return "SabotageOn"
	case TransitionSabotageOff:
		return "SabotageOff"
	}
	return "none"
}

// StabilityMonitor flags frames in which moving regions cover too much
// of the region of interest.
type StabilityMonitor struct {
	cfg   *StabilityConfig
	state l3background.SceneState
}

// NewStabilityMonitor returns a monitor in SceneUnknown.
func NewStabilityMonitor(cfg *StabilityConfig) *StabilityMonitor {
	return &StabilityMonitor{cfg: cfg}
}

// State returns the verdict of the last evaluated frame.
func (m *StabilityMonitor) State() l3background.SceneState { return m.state }

// Evaluate classifies the frame from its level-0 label mask. Only a
// change into or out of SceneSabotage is reported as a transition.
func (m *StabilityMonitor) Evaluate(mask *image.Gray, roiArea int) (l3background.SceneState, Transition) {
	moving := l1pixels.CountAtLeast(mask, MaskFirstIndex)
	next := l3background.SceneStable
	if float64(moving) > m.cfg.RegionAreaMax*float64(roiArea) {
		next = l3background.SceneSabotage
	}

	tr := TransitionNone
	switch {
	case next == l3background.SceneSabotage && m.state != l3background.SceneSabotage:
		tr = TransitionSabotageOn
	case next != l3background.SceneSabotage && m.state == l3background.SceneSabotage:
		tr = TransitionSabotageOff
	}
	m.state = next
	return next, tr
}
