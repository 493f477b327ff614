// Package engine runs the adaptive serial-addition session: stimulus
// scheduling, trial lifecycle, difficulty adaptation, and session rollup.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/verte-zerg/sumback/internal/audio"
	"github.com/verte-zerg/sumback/internal/model"
	"github.com/verte-zerg/sumback/internal/sequence"
)

// playRetryBackoff is the delay before re-attempting a failed stimulus.
const playRetryBackoff = time.Second

// Surface exposes the current candidate answer from whatever input widget is
// active. Implementations must be safe for use from timer goroutines.
type Surface interface {
	// Candidate returns the answer currently entered, if any.
	Candidate() (int, bool)
	// Clear resets the entry after a correct resolution.
	Clear()
}

// DigitSource produces stimulus digits.
type DigitSource interface {
	Next() int
}

// Config assembles an engine. Player, Tone, Input, and Notify must be set.
type Config struct {
	Mode     model.Mode
	NBack    int
	ISIMs    int
	Duration time.Duration
	Rate     float64

	Player audio.Player
	Tone   audio.Tone
	Input  Surface
	Notify func(Event)
	Source DigitSource
}

// handle is a cancellable deferred callback.
type handle interface {
	Stop() bool
}

// Engine drives one session. All mutable state is guarded by mu; the
// presentation timer, per-trial deadline timers, and the playback goroutine
// are independent callbacks that serialize through it.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	// Seams for tests. Defaults wire real time and goroutines.
	now   func() time.Time
	after func(time.Duration, func()) handle
	spawn func(func())

	active    bool
	startedAt time.Time
	endsAt    time.Time

	src  DigitSource
	buf  sequence.Buffer
	diff *Controller

	trials   []*Trial
	trialSeq int64
	current  *Trial

	// resolving serializes the immediate and deadline paths for the
	// current trial; it is asserted before any counter mutation.
	resolving bool

	correct      int
	attempts     int
	curRun       int
	bestRun      int
	latencySum   time.Duration
	latencyCount int

	// Scheduler state: a single authoritative next-due time plus guards
	// against overlapping presentation cycles.
	presenting bool
	forceNext  bool
	nextDue    time.Time

	presentTimer handle
	// deadlineTimers tracks the pending deadline of every unresolved
	// trial by id, so session teardown can cancel all of them.
	deadlineTimers map[int64]handle
	endTimer       handle
	cancelPlay     context.CancelFunc
}

// New returns an engine for the given configuration.
func New(cfg Config) *Engine {
	if cfg.Source == nil {
		cfg.Source = sequence.NewSource()
	}
	if cfg.Notify == nil {
		cfg.Notify = func(Event) {}
	}
	e := &Engine{
		cfg: cfg,
		now: time.Now,
		after: func(d time.Duration, fn func()) handle {
			return time.AfterFunc(d, fn)
		},
		spawn: func(fn func()) { go fn() },
		src:   cfg.Source,
	}
	return e
}

// Start resets all session state and presents the first stimulus
// immediately, bypassing the cadence wait exactly once.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return
	}
	e.buf.Reset()
	e.trials = nil
	e.trialSeq = 0
	e.current = nil
	e.resolving = false
	e.presenting = false
	e.correct = 0
	e.attempts = 0
	e.curRun = 0
	e.bestRun = 0
	e.latencySum = 0
	e.latencyCount = 0
	e.deadlineTimers = make(map[int64]handle)

	now := e.now()
	e.active = true
	e.startedAt = now
	e.endsAt = now.Add(e.cfg.Duration)
	e.diff = NewController(e.cfg.Mode, e.cfg.ISIMs)
	e.endTimer = e.after(e.cfg.Duration, e.timeUp)
	e.forceNext = true
	e.requestPresentation()
}

// Stop ends the session early. Pending timers are cancelled and the summary
// is emitted as if the timer had elapsed.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked()
}

func (e *Engine) timeUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked()
}

// Submit is the immediate resolution path. It resolves the open trial only
// on an exact match; mismatches are left for the deadline to score. The
// returned sentinel describes why a submission did not resolve.
func (e *Engine) Submit(answer int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return ErrSessionInactive
	}
	if e.resolving {
		return ErrResolutionBusy
	}
	t := e.current
	if t == nil {
		return ErrNotReady
	}
	if t.Resolved() {
		return ErrTrialResolved
	}
	if answer != t.Answer {
		// Not a resolving answer. The candidate stays on the input
		// surface for the deadline path to judge.
		return nil
	}
	if !t.tryClaim() {
		return ErrTrialResolved
	}
	e.resolving = true
	v := answer
	e.resolveLocked(t, &v, true, e.now(), false)
	e.resolving = false
	return nil
}

// Snapshot is a point-in-time view for rendering.
type Snapshot struct {
	Active    bool
	Remaining time.Duration
	ISIMs     int
	Correct   int
	Attempts  int
	Trials    int
}

// Snapshot returns the current session view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Active:   e.active,
		Correct:  e.correct,
		Attempts: e.attempts,
		Trials:   len(e.trials),
	}
	if e.diff != nil {
		snap.ISIMs = e.diff.ISIMs
	}
	if e.active {
		if rem := e.endsAt.Sub(e.now()); rem > 0 {
			snap.Remaining = rem
		}
	}
	return snap
}

// requestPresentation starts one presentation cycle. A request that arrives
// before the next-due time re-arms the timer for the remaining delta instead
// of firing early, so duplicate triggers cannot collapse the cadence.
// Callers hold the lock.
func (e *Engine) requestPresentation() {
	if !e.active || e.presenting {
		return
	}
	now := e.now()
	if !e.forceNext && now.Before(e.nextDue) {
		e.armPresentTimer(e.nextDue.Sub(now))
		return
	}
	e.forceNext = false
	e.presenting = true

	digit := e.src.Next()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelPlay = cancel
	rate := e.cfg.Rate
	e.cfg.Notify(StimulusStarted{Digit: digit})
	e.spawn(func() {
		err := e.cfg.Player.Play(ctx, digit, rate)
		cancel()
		e.stimulusSettled(digit, err)
	})
}

func (e *Engine) armPresentTimer(d time.Duration) {
	if e.presentTimer != nil {
		e.presentTimer.Stop()
	}
	e.presentTimer = e.after(d, e.presentDue)
}

func (e *Engine) presentDue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requestPresentation()
}

// stimulusSettled runs when playback finishes, fails, or times out. On
// success it extends the sequence, opens a trial once the buffer is deep
// enough, arms that trial's deadline, and schedules the next stimulus one
// ISI out. On failure it retries after a fixed backoff instead of stalling.
func (e *Engine) stimulusSettled(digit int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	e.presenting = false
	e.cancelPlay = nil
	now := e.now()

	if err != nil && !errors.Is(err, context.Canceled) {
		e.cfg.Notify(StimulusFailed{Err: err})
		e.nextDue = now.Add(playRetryBackoff)
		e.armPresentTimer(playRetryBackoff)
		return
	}

	e.buf.Append(digit)
	e.cfg.Notify(StimulusPlayed{Digit: digit, SequenceLen: e.buf.Len()})

	if current, back, sum, ok := e.buf.Answer(e.cfg.NBack); ok {
		e.trialSeq++
		t := &Trial{
			ID:        e.trialSeq,
			NBack:     e.cfg.NBack,
			Digit:     current,
			BackDigit: back,
			Answer:    sum,
			ISIMs:     e.diff.ISIMs,
			ArmedAt:   now,
		}
		e.trials = append(e.trials, t)
		e.current = t
		id := t.ID
		// Earlier deadline timers are deliberately left running: a trial
		// still open when the next one arrives must fire and resolve
		// late by id.
		e.deadlineTimers[id] = e.after(time.Duration(t.ISIMs)*time.Millisecond, func() {
			e.deadlineFire(id)
		})
		e.cfg.Notify(TrialOpened{ID: t.ID, Digit: current})
	}

	isi := time.Duration(e.diff.ISIMs) * time.Millisecond
	e.nextDue = now.Add(isi)
	e.armPresentTimer(isi)
}

// deadlineFire is the timeout resolution path for one trial, identified by
// id rather than by "the last trial" because the next stimulus may already
// have advanced.
func (e *Engine) deadlineFire(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	delete(e.deadlineTimers, id)
	if e.resolving {
		// The immediate path holds the claim; losing the race is a
		// normal outcome.
		return
	}
	t := e.findTrial(id)
	if t == nil || t.Resolved() {
		return
	}
	if !t.tryClaim() {
		return
	}
	e.resolving = true
	now := e.now()
	if e.current != nil && e.current.ID == id {
		// Current trial: judge whatever candidate is on the surface.
		// A mismatch or empty entry scores as incorrect, no answer.
		if v, ok := e.cfg.Input.Candidate(); ok && v == t.Answer {
			e.resolveLocked(t, &v, true, now, false)
		} else {
			e.resolveLocked(t, nil, false, now, false)
		}
	} else {
		// Stale trial: the input surface belongs to a newer trial now,
		// so this one always resolves as no-answer.
		e.resolveLocked(t, nil, false, now, true)
	}
	e.resolving = false
}

// resolveLocked finalizes a claimed trial and applies every side effect:
// counters, difficulty, input surface, error tone, notification. It runs at
// most once per trial; the claim guarantees it.
func (e *Engine) resolveLocked(t *Trial, answer *int, correct bool, at time.Time, stale bool) {
	t.finalize(answer, correct, at)

	e.attempts++
	if correct {
		e.correct++
		e.curRun++
		if e.curRun > e.bestRun {
			e.bestRun = e.curRun
		}
	} else {
		e.curRun = 0
	}
	e.latencySum += t.Latency
	e.latencyCount++

	e.diff.Observe(correct)

	if correct && !stale {
		e.cfg.Input.Clear()
	}
	if !correct {
		tone := e.cfg.Tone
		e.spawn(func() { tone.Play() })
	}

	e.cfg.Notify(TrialResolved{
		ID:         t.ID,
		Correct:    correct,
		UserAnswer: answer,
		Answer:     t.Answer,
		LatencyMs:  t.Latency.Milliseconds(),
		ISIMs:      e.diff.ISIMs,
		Stale:      stale,
	})
}

func (e *Engine) findTrial(id int64) *Trial {
	for i := len(e.trials) - 1; i >= 0; i-- {
		if e.trials[i].ID == id {
			return e.trials[i]
		}
	}
	return nil
}

// finishLocked tears the session down: all timers cancelled together, the
// in-flight playback context cancelled, and the summary emitted.
func (e *Engine) finishLocked() {
	if !e.active {
		return
	}
	e.active = false
	if e.presentTimer != nil {
		e.presentTimer.Stop()
	}
	for id, dl := range e.deadlineTimers {
		dl.Stop()
		delete(e.deadlineTimers, id)
	}
	if e.endTimer != nil {
		e.endTimer.Stop()
	}
	if e.cancelPlay != nil {
		e.cancelPlay()
		e.cancelPlay = nil
	}

	now := e.now()
	summary := e.summarizeLocked(now)
	e.cfg.Notify(SessionEnded{
		Summary:   summary,
		Qualified: summary.Attempts >= model.MinQualifyingAttempts,
	})
}

func (e *Engine) summarizeLocked(endedAt time.Time) model.Summary {
	s := model.Summary{
		EndedAt:     endedAt,
		Mode:        e.cfg.Mode,
		NBack:       e.cfg.NBack,
		Correct:     e.correct,
		Attempts:    e.attempts,
		DurationMs:  endedAt.Sub(e.startedAt).Milliseconds(),
		LowestISIMs: e.diff.LowestISIMs,
		TrialCount:  len(e.trials),
		BestRun:     e.bestRun,
	}
	if e.attempts > 0 {
		s.AccuracyPct = float64(e.correct) / float64(e.attempts) * 100
	}
	if e.latencyCount > 0 {
		s.AvgLatencyMs = float64(e.latencySum.Milliseconds()) / float64(e.latencyCount)
	}
	return s
}
