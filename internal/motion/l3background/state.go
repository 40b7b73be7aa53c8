package l3background

import "time"

// SceneState is the stability verdict for the current frame.
type SceneState int

const (
	SceneUnknown SceneState = iota // not evaluated yet
	SceneStable
	SceneSabotage
)

func (s SceneState) String() string {
	switch s {
	case SceneStable:
		return "stable"
	case SceneSabotage:
		return "sabotage"
	}
	return "unknown"
}

// State is the background learning phase.
type State int

const (
	StateInit State = iota
	StateGrow
	StateUpdate
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateGrow:
		return "grow"
	case StateUpdate:
		return "update"
	}
	return "unknown"
}

// Action is the pixel operation a transition asks the model to perform.
type Action int

const (
	ActionNone Action = iota
	ActionInit
	ActionGrow
	ActionIncrement
	ActionIncrementAdjust
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionInit:
		return "init"
	case ActionGrow:
		return "grow"
	case ActionIncrement:
		return "increment"
	case ActionIncrementAdjust:
		return "increment+adjust"
	}
	return "unknown"
}

// BackgroundState is the scalar part of the background model.
type BackgroundState struct {
	State         State
	Count         int           // increments since the last adjustment
	SabotageCount int           // consecutive sabotaged frames in Update
	GrowEnd       time.Duration // Grow ends once a frame is later than this
	LastFrameTime time.Duration
	LastStatTime  time.Duration
	IncrementTime time.Duration // stable time accumulated since the last adjustment
}

// Next advances the state for a frame observed at now and returns the
// pixel action to apply. It touches no pixel data.
func (s *BackgroundState) Next(scene SceneState, now time.Duration, cfg *BackgroundConfig) Action {
	var a Action
	switch s.State {
	case StateInit:
		s.seed(now, cfg)
		a = ActionInit

	case StateGrow:
		if scene == SceneSabotage {
			s.seed(now, cfg)
			a = ActionInit
			break
		}
		a = ActionGrow
		if scene != SceneStable {
			s.GrowEnd = now + cfg.GrowTime
		}
		if now > s.GrowEnd {
			s.State = StateUpdate
			s.Count = 0
			s.IncrementTime = 0
			s.LastStatTime = now
		}

	case StateUpdate:
		if scene == SceneSabotage {
			s.SabotageCount++
			if s.SabotageCount > cfg.SabotageCountMax {
				s.seed(now, cfg)
				a = ActionInit
			}
			break
		}
		s.SabotageCount = 0
		s.IncrementTime += now - s.LastFrameTime
		if now-s.LastStatTime < cfg.StatUpdateTime {
			break
		}
		s.LastStatTime = now
		s.Count++
		a = ActionIncrement
		if s.Count >= cfg.SampleCountMax || (s.IncrementTime > cfg.UpdateTime && s.Count >= cfg.SampleCountMin) {
			s.Count = 0
			s.IncrementTime = 0
			a = ActionIncrementAdjust
		}
	}
	s.LastFrameTime = now
	return a
}

// seed restarts learning from the current frame.
func (s *BackgroundState) seed(now time.Duration, cfg *BackgroundConfig) {
	*s = BackgroundState{
		State:        StateGrow,
		GrowEnd:      now + cfg.GrowTime,
		LastStatTime: now,
	}
}
