package session

import (
	"github.com/abhisek/kioku/internal/spacedrep"
	"github.com/abhisek/kioku/internal/stats"
)

// Phase is the manager's lifecycle state.
type Phase int

const (
	PhaseIdle      Phase = iota // No session in front of the learner
	PhaseActive                 // Serving items
	PhaseCompleted              // Last session finished; summary available
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// EventKind identifies a manager change notification.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventResume   EventKind = "resume"
	EventAnswer   EventKind = "answer"
	EventMove     EventKind = "move"
	EventComplete EventKind = "complete"
	EventAbandon  EventKind = "abandon"
	EventDiscard  EventKind = "discard"
)

// Event describes a state change. Progress is a copy taken after the change;
// Answer and Summary are set for answer and complete events.
type Event struct {
	Kind     EventKind
	Mode     Mode
	Progress Progress
	Answer   *AnswerResult
	Summary  *Summary
}

// Attempt is the learner's response to the current item.
type Attempt struct {
	Correct      bool
	Choice       string
	Reasoning    string
	ResponseTime int64 // milliseconds
}

// AnswerResult reports the effect of an answer.
type AnswerResult struct {
	ItemID  int
	Correct bool
	Review  spacedrep.ReviewState
	Stats   stats.ItemStats
	Flagged bool // newly added to the weakness set
}
