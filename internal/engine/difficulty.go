package engine

import "github.com/verte-zerg/sumback/internal/model"

// streakToAdapt is the run length that triggers an ISI change. Four in a row
// keeps the pace from oscillating on a single lucky or unlucky trial while
// still reacting within a handful of trials.
const streakToAdapt = 4

// Controller adapts the inter-stimulus interval to performance.
// In manual mode the ISI is pinned to the user-selected value and re-asserted
// on every observation.
type Controller struct {
	adaptive bool
	pinned   int

	ISIMs           int
	LowestISIMs     int
	ConsecCorrect   int
	ConsecIncorrect int
}

// NewController returns a controller starting at the given ISI, clamped.
func NewController(mode model.Mode, startISIMs int) *Controller {
	isi := model.ClampInt(startISIMs, model.MinISIMs, model.MaxISIMs)
	return &Controller{
		adaptive:    mode.Adaptive(),
		pinned:      isi,
		ISIMs:       isi,
		LowestISIMs: isi,
	}
}

// Observe records one resolved trial and returns whether the ISI changed.
// The consecutive counters are mutually exclusive: observing a result zeroes
// the opposite counter.
func (c *Controller) Observe(correct bool) bool {
	if correct {
		c.ConsecCorrect++
		c.ConsecIncorrect = 0
	} else {
		c.ConsecIncorrect++
		c.ConsecCorrect = 0
	}

	if !c.adaptive {
		c.ISIMs = c.pinned
		return false
	}

	prev := c.ISIMs
	if c.ConsecCorrect >= streakToAdapt {
		c.ISIMs = model.ClampInt(c.ISIMs-model.ISIStepMs, model.MinISIMs, model.MaxISIMs)
		c.ConsecCorrect = 0
		if c.ISIMs < c.LowestISIMs {
			c.LowestISIMs = c.ISIMs
		}
	}
	if c.ConsecIncorrect >= streakToAdapt {
		c.ISIMs = model.ClampInt(c.ISIMs+model.ISIStepMs, model.MinISIMs, model.MaxISIMs)
		c.ConsecIncorrect = 0
	}
	return c.ISIMs != prev
}
