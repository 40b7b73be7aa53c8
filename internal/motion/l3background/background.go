package l3background

import (
	"time"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
)

// Background applies the state machine's actions to every feature.
type Background struct {
	cfg      *BackgroundConfig
	state    BackgroundState
	features []*Feature
}

// NewBackground returns a background in Init for the given features.
func NewBackground(cfg *BackgroundConfig, features []*Feature) *Background {
	return &Background{cfg: cfg, features: features}
}

// State returns the current learning phase.
func (b *Background) State() State { return b.state.State }

// Snapshot returns a copy of the scalar state.
func (b *Background) Snapshot() BackgroundState { return b.state }

// Reset returns the model to Init; the next update reseeds it.
func (b *Background) Reset() { b.state = BackgroundState{} }

// Update advances the model with the features of the frame at now.
func (b *Background) Update(scene SceneState, now time.Duration) Action {
	a := b.state.Next(scene, now, b.cfg)
	threshold := uint8(b.cfg.AdjustThreshold)
	for _, f := range b.features {
		for i := range f.Value {
			v, lo, hi := f.Value[i], f.Lo[i], f.Hi[i]
			loCount, hiCount := f.LoCount[i], f.HiCount[i]
			switch a {
			case ActionInit:
				l1pixels.InitRange(v, lo, loCount, hi, hiCount)
			case ActionGrow:
				l1pixels.GrowRange(v, lo, hi)
			case ActionIncrement:
				l1pixels.IncrementCount(v, lo, loCount, hi, hiCount)
			case ActionIncrementAdjust:
				l1pixels.IncrementCount(v, lo, loCount, hi, hiCount)
				l1pixels.AdjustRange(loCount, lo, hiCount, hi, threshold)
			}
		}
	}
	return a
}
