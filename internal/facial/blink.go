package facial

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

// BlinkPhase is the current stage of the blink cycle.
type BlinkPhase int

const (
	BlinkIdle BlinkPhase = iota
	BlinkClosing
	BlinkClosed
	BlinkOpening
)

func (p BlinkPhase) String() string {
	switch p {
	case BlinkIdle:
		return "idle"
	case BlinkClosing:
		return "closing"
	case BlinkClosed:
		return "closed"
	case BlinkOpening:
		return "opening"
	}
	return "invalid"
}

// BlinkConfig tunes the blink state machine. Durations are seconds.
type BlinkConfig struct {
	IntervalMin   float32
	IntervalMax   float32
	CloseDuration float32
	HoldDuration  float32
	OpenDuration  float32
	// DoubleBlinkChance is the probability of arming a quick second blink
	// after a cycle completes.
	DoubleBlinkChance float32
	// MaxWeight is the eyelid weight at full closure, in [0,100].
	MaxWeight float32
}

func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{
		IntervalMin:       2.0,
		IntervalMax:       6.0,
		CloseDuration:     0.07,
		HoldDuration:      0.04,
		OpenDuration:      0.12,
		DoubleBlinkChance: 0.2,
		MaxWeight:         100,
	}
}

var (
	eyelidLeftAliases  = []string{"eyeBlinkLeft", "EYE_Close_L", "eye_close_l", "blink_l", "WinkLeft"}
	eyelidRightAliases = []string{"eyeBlinkRight", "EYE_Close_R", "eye_close_r", "blink_r", "WinkRight"}
)

// Blinker is a purely time-driven state machine writing eyelid closure to
// the two eyelid morph targets. The eased closure curves double as the
// smoothing; no extra filtering is applied. All randomness comes from the
// injected source, so a fixed seed replays the same blink schedule.
type Blinker struct {
	host *mesh.Host
	rng  *rand.Rand
	cfg  BlinkConfig

	left     mesh.Handle
	right    mesh.Handle
	hasLeft  bool
	hasRight bool

	phase         BlinkPhase
	timer         float32
	nextInterval  float32
	pendingDouble bool
	closure       float32
}

func NewBlinker(host *mesh.Host, ix *MorphIndex, cfg BlinkConfig, rng *rand.Rand, log zerolog.Logger) *Blinker {
	b := &Blinker{host: host, rng: rng, cfg: cfg, phase: BlinkIdle}

	b.left, b.hasLeft = Resolve(ix, eyelidLeftAliases...)
	b.right, b.hasRight = Resolve(ix, eyelidRightAliases...)
	if !b.hasLeft && !b.hasRight {
		log.Warn().Msg("No eyelid morph targets found, blinking disabled")
	}

	b.nextInterval = b.scheduleInterval()
	return b
}

func (b *Blinker) scheduleInterval() float32 {
	span := b.cfg.IntervalMax - b.cfg.IntervalMin
	if span < 0 {
		span = 0
	}
	return b.cfg.IntervalMin + b.rng.Float32()*span
}

// Retune swaps the tuning parameters between ticks.
func (b *Blinker) Retune(cfg BlinkConfig) {
	b.cfg = cfg
}

// Tick advances the state machine and writes the eyelid weights.
func (b *Blinker) Tick(dt float32) {
	if !b.hasLeft && !b.hasRight {
		return
	}

	b.timer += dt

	switch b.phase {
	case BlinkIdle:
		b.closure = 0
		if b.timer >= b.nextInterval {
			b.enter(BlinkClosing)
		}

	case BlinkClosing:
		p := progress(b.timer, b.cfg.CloseDuration)
		b.closure = p * p // ease in
		if p >= 1 {
			b.closure = 1
			b.enter(BlinkClosed)
		}

	case BlinkClosed:
		b.closure = 1
		if b.timer >= b.cfg.HoldDuration {
			b.enter(BlinkOpening)
		}

	case BlinkOpening:
		p := progress(b.timer, b.cfg.OpenDuration)
		b.closure = (1 - p) * (1 - p) // ease out
		if p >= 1 {
			b.closure = 0
			b.finishCycle()
		}
	}

	b.write(b.closure * b.cfg.MaxWeight)
}

// finishCycle decides what follows a completed blink: the armed second
// blink of a double fires immediately, otherwise a double may be armed
// with a short forced interval, otherwise a fresh normal interval is
// drawn.
func (b *Blinker) finishCycle() {
	if b.pendingDouble {
		b.pendingDouble = false
		b.enter(BlinkClosing)
		return
	}
	if b.rng.Float32() < b.cfg.DoubleBlinkChance {
		b.pendingDouble = true
		b.nextInterval = 0.1 + b.rng.Float32()*0.15
		b.enter(BlinkIdle)
		return
	}
	b.nextInterval = b.scheduleInterval()
	b.enter(BlinkIdle)
}

func (b *Blinker) enter(phase BlinkPhase) {
	b.phase = phase
	b.timer = 0
}

func (b *Blinker) write(weight float32) {
	if b.hasLeft {
		b.host.SetWeight(b.left, weight)
	}
	if b.hasRight {
		b.host.SetWeight(b.right, weight)
	}
}

// Reset zeroes the eyelids and restarts the schedule. Called when the
// idle layer is toggled off so closed lids never stick.
func (b *Blinker) Reset() {
	b.enter(BlinkIdle)
	b.pendingDouble = false
	b.closure = 0
	b.nextInterval = b.scheduleInterval()
	b.write(0)
}

// Phase exposes the current state for diagnostics and tests.
func (b *Blinker) Phase() BlinkPhase {
	return b.phase
}

// Closure exposes the current eyelid closure fraction in [0,1].
func (b *Blinker) Closure() float32 {
	return b.closure
}

func progress(t, duration float32) float32 {
	if duration <= 0 {
		return 1
	}
	p := t / duration
	if p > 1 {
		return 1
	}
	return p
}
