package l6objects

import (
	"image"
	"time"
)

// EventType identifies a reported event.
type EventType string

const (
	EventObjectIn    EventType = "ObjectIn"
	EventObjectOut   EventType = "ObjectOut"
	EventSabotageOn  EventType = "SabotageOn"
	EventSabotageOff EventType = "SabotageOff"
)

// SceneEventID is the object id carried by stability events.
const SceneEventID = -1

// Event is a discrete notification emitted with one frame.
type Event struct {
	Type     EventType
	Text     string
	ObjectID int
}

// TrajectoryPoint is one smoothed trajectory sample in caller coordinates.
type TrajectoryPoint struct {
	Point image.Point
	Time  time.Duration
}

// ObjectInfo describes a moving object in caller coordinates.
type ObjectInfo struct {
	ID         int
	Rect       image.Rectangle
	Trajectory []TrajectoryPoint
}

// Metadata is the per-frame detector output. It is rebuilt every frame.
type Metadata struct {
	Objects []ObjectInfo
	Events  []Event
}

// HasEvent reports whether the metadata carries an event of type et.
func (m *Metadata) HasEvent(et EventType) bool {
	for _, e := range m.Events {
		if e.Type == et {
			return true
		}
	}
	return false
}

func newEvent(et EventType, id int) Event {
	return Event{Type: et, Text: string(et), ObjectID: id}
}
