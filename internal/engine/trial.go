package engine

import "time"

type trialState int

const (
	trialOpen trialState = iota
	trialClaimed
	trialResolved
)

// Trial is one stimulus-presentation-and-response unit. It is created when
// the sequence buffer is deep enough to have an expected answer, and is
// mutated exactly once, by whichever resolution path claims it first.
type Trial struct {
	ID        int64
	NBack     int
	Digit     int
	BackDigit int
	Answer    int
	ISIMs     int
	ArmedAt   time.Time

	// Set at resolution. UserAnswer stays nil for no-answer and mismatch
	// resolutions.
	UserAnswer *int
	Correct    *bool
	Latency    time.Duration

	state trialState
}

// Resolved reports whether the trial has reached its terminal state.
func (t *Trial) Resolved() bool {
	return t.state == trialResolved
}

// tryClaim marks intent to resolve. Only the first claimant succeeds; the
// losing path sees false and backs off without touching anything.
// Callers hold the engine lock.
func (t *Trial) tryClaim() bool {
	if t.state != trialOpen {
		return false
	}
	t.state = trialClaimed
	return true
}

// finalize records the resolution. The claim must be held.
func (t *Trial) finalize(answer *int, correct bool, at time.Time) {
	t.UserAnswer = answer
	c := correct
	t.Correct = &c
	t.Latency = at.Sub(t.ArmedAt)
	t.state = trialResolved
}
