// Package audio defines the stimulus playback and error tone capabilities.
//
// Real audio output is an external concern. The default implementations keep
// the session timing honest without a sound device: the window player settles
// after the playback window a spoken digit would occupy, and the bell tone
// degrades to the terminal bell.
package audio

import (
	"context"
	"fmt"
	"os"
	"time"
)

// BaseStimulusDuration is the playback window of one spoken digit at rate 1.0.
const BaseStimulusDuration = 900 * time.Millisecond

// SettleBuffer pads the playback window so a settle is always reached
// slightly after natural completion would have.
const SettleBuffer = 250 * time.Millisecond

// Player presents one stimulus digit. Play blocks until the stimulus has
// settled: natural completion, the padded window elapsing, or context
// cancellation. A non-nil error means the stimulus was not presented and the
// caller should retry after a backoff.
type Player interface {
	Play(ctx context.Context, digit int, rate float64) error
}

// Tone plays the error tone. Fire-and-forget; failures are swallowed.
type Tone interface {
	Play()
}

// Window returns the settle window for one stimulus at the given rate.
func Window(rate float64) time.Duration {
	if rate < 1.0 {
		rate = 1.0
	}
	scaled := time.Duration(float64(BaseStimulusDuration) / rate)
	return scaled + SettleBuffer
}

// WindowPlayer settles after the playback window elapses. It is the default
// Player when no audio device integration is wired in.
type WindowPlayer struct{}

// Play waits out the playback window or the context, whichever ends first.
func (WindowPlayer) Play(ctx context.Context, digit int, rate float64) error {
	if digit < 1 || digit > 9 {
		return fmt.Errorf("stimulus digit %d out of range [1, 9]", digit)
	}
	t := time.NewTimer(Window(rate))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BellTone rings the terminal bell when enabled with audible volume.
type BellTone struct {
	Enabled bool
	Volume  float64
}

// Play writes the bell character. Best-effort.
func (b BellTone) Play() {
	if !b.Enabled || b.Volume <= 0 {
		return
	}
	if _, err := fmt.Fprint(os.Stderr, "\a"); err != nil {
		// Best-effort tone.
		_ = err
	}
}

// NopTone discards tone requests.
type NopTone struct{}

// Play does nothing.
func (NopTone) Play() {}
