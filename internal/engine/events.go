package engine

import "github.com/verte-zerg/sumback/internal/model"

// Event is a notification from the engine to its observer. Events are
// delivered with the engine lock held; handlers must hand them off (for
// example onto a channel) rather than call back into the engine.
type Event interface {
	event()
}

// StimulusStarted fires when a stimulus begins playing.
type StimulusStarted struct {
	Digit int
}

// StimulusPlayed fires when a stimulus has settled and joined the sequence.
type StimulusPlayed struct {
	Digit       int
	SequenceLen int
}

// StimulusFailed fires when playback failed; the scheduler will retry.
type StimulusFailed struct {
	Err error
}

// TrialOpened fires when a new trial starts awaiting an answer.
type TrialOpened struct {
	ID    int64
	Digit int
}

// TrialResolved fires exactly once per trial.
type TrialResolved struct {
	ID         int64
	Correct    bool
	UserAnswer *int
	Answer     int
	LatencyMs  int64
	ISIMs      int
	Stale      bool
}

// SessionEnded fires when the session finishes or is stopped.
type SessionEnded struct {
	Summary   model.Summary
	Qualified bool
}

func (StimulusStarted) event() {}
func (StimulusPlayed) event()  {}
func (StimulusFailed) event()  {}
func (TrialOpened) event()     {}
func (TrialResolved) event()   {}
func (SessionEnded) event()    {}
