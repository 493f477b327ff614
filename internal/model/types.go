// Package model defines shared data structures.
package model

import "time"

// Mode selects how a session paces itself.
type Mode string

// Session modes.
const (
	ModeStandard Mode = "standard"
	ModeCustom   Mode = "custom"
	ModeManual   Mode = "manual"
)

// Valid reports whether the mode is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeCustom, ModeManual:
		return true
	}
	return false
}

// Adaptive reports whether the ISI adapts to performance in this mode.
func (m Mode) Adaptive() bool {
	return m != ModeManual
}

// ISI and adaptation bounds, shared by settings clamping and the engine.
const (
	MinISIMs  = 500
	MaxISIMs  = 5000
	ISIStepMs = 100
)

// Duration bounds for a session.
const (
	MinDuration = 30 * time.Second
	MaxDuration = time.Hour
)

// Playback-rate and tone-volume bounds.
const (
	MinRate   = 1.0
	MaxRate   = 1.5
	MinVolume = 0.0
	MaxVolume = 1.0
)

// N-back depth bounds.
const (
	MinNBack = 1
	MaxNBack = 10
)

// MinQualifyingAttempts is the attempt count below which a finished session
// is not persisted.
const MinQualifyingAttempts = 50

// Standard mode is fixed; custom and manual start from these values.
const (
	StandardISIMs    = 3000
	StandardDuration = 2 * time.Minute
)

// ModeSettings holds the pacing parameters for one mode.
type ModeSettings struct {
	ISIMs    int           `json:"isi_ms"`
	Duration time.Duration `json:"duration"`
}

// Clamp returns the settings forced into their valid ranges.
func (ms ModeSettings) Clamp() ModeSettings {
	ms.ISIMs = ClampInt(ms.ISIMs, MinISIMs, MaxISIMs)
	if ms.Duration < MinDuration {
		ms.Duration = MinDuration
	}
	if ms.Duration > MaxDuration {
		ms.Duration = MaxDuration
	}
	return ms
}

// ToneSettings configures the error tone.
type ToneSettings struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume"`
}

// Clamp returns the settings forced into their valid ranges.
func (ts ToneSettings) Clamp() ToneSettings {
	ts.Volume = ClampFloat(ts.Volume, MinVolume, MaxVolume)
	return ts
}

// Settings is the full persisted configuration.
type Settings struct {
	Mode   Mode         `json:"mode"`
	NBack  int          `json:"nback"`
	Rate   float64      `json:"rate"`
	Tone   ToneSettings `json:"tone"`
	Theme  string       `json:"theme"`
	Custom ModeSettings `json:"custom"`
	Manual ModeSettings `json:"manual"`
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		Mode:   ModeStandard,
		NBack:  1,
		Rate:   1.0,
		Tone:   ToneSettings{Enabled: true, Volume: 0.8},
		Theme:  "dark",
		Custom: ModeSettings{ISIMs: StandardISIMs, Duration: StandardDuration},
		Manual: ModeSettings{ISIMs: StandardISIMs, Duration: StandardDuration},
	}
}

// Clamp returns the settings with every field forced into its valid range.
// Out-of-range values are never an error, only adjusted.
func (s Settings) Clamp() Settings {
	if !s.Mode.Valid() {
		s.Mode = ModeStandard
	}
	s.NBack = ClampInt(s.NBack, MinNBack, MaxNBack)
	s.Rate = ClampFloat(s.Rate, MinRate, MaxRate)
	s.Tone = s.Tone.Clamp()
	if s.Theme == "" {
		s.Theme = "dark"
	}
	s.Custom = s.Custom.Clamp()
	s.Manual = s.Manual.Clamp()
	return s
}

// ForMode returns the pacing settings in effect for a mode.
// Standard mode is pinned to the factory values.
func (s Settings) ForMode(m Mode) ModeSettings {
	switch m {
	case ModeCustom:
		return s.Custom.Clamp()
	case ModeManual:
		return s.Manual.Clamp()
	default:
		return ModeSettings{ISIMs: StandardISIMs, Duration: StandardDuration}
	}
}

// Summary is the persisted record of one finished session.
type Summary struct {
	ID           string
	EndedAt      time.Time
	Mode         Mode
	NBack        int
	Correct      int
	Attempts     int
	AccuracyPct  float64
	DurationMs   int64
	LowestISIMs  int
	TrialCount   int
	AvgLatencyMs float64
	BestRun      int
}

// SummaryFilter selects summaries for listing and reporting.
type SummaryFilter struct {
	Mode  Mode
	Since *time.Time
	Last  int
}

// ClampInt forces v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat forces v into [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
