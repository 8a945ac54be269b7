package facial

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

func eyelidHost() (*mesh.Host, *MorphIndex) {
	host := mesh.NewHost()
	host.AddGroup("head", []string{"eyeBlinkLeft", "eyeBlinkRight"})
	return host, IndexHost(host)
}

// fastBlinkConfig pins the interval so the schedule is not random,
// keeping phase assertions exact.
func fastBlinkConfig() BlinkConfig {
	cfg := DefaultBlinkConfig()
	cfg.IntervalMin = 0.5
	cfg.IntervalMax = 0.5
	cfg.DoubleBlinkChance = 0
	return cfg
}

func TestBlinkerPhaseSequence(t *testing.T) {
	host, ix := eyelidHost()
	cfg := fastBlinkConfig()
	b := NewBlinker(host, ix, cfg, rand.New(rand.NewSource(1)), zerolog.Nop())

	if b.Phase() != BlinkIdle {
		t.Fatalf("should start idle, got %s", b.Phase())
	}

	const dt = float32(0.01)
	step := func(seconds float32) {
		for e := float32(0); e < seconds; e += dt {
			b.Tick(dt)
		}
	}

	step(cfg.IntervalMin + dt)
	if b.Phase() != BlinkClosing {
		t.Fatalf("expected closing after interval, got %s", b.Phase())
	}

	step(cfg.CloseDuration + dt)
	if b.Phase() != BlinkClosed {
		t.Fatalf("expected closed, got %s", b.Phase())
	}
	if b.Closure() != 1 {
		t.Errorf("closure at hold should be 1, got %f", b.Closure())
	}

	step(cfg.HoldDuration + dt)
	if b.Phase() != BlinkOpening {
		t.Fatalf("expected opening, got %s", b.Phase())
	}

	step(cfg.OpenDuration + dt)
	if b.Phase() != BlinkIdle {
		t.Fatalf("expected idle after cycle, got %s", b.Phase())
	}
	if b.Closure() != 0 {
		t.Errorf("closure after cycle should be 0, got %f", b.Closure())
	}
}

func TestBlinkerClosureEasedAndBounded(t *testing.T) {
	host, ix := eyelidHost()
	cfg := fastBlinkConfig()
	b := NewBlinker(host, ix, cfg, rand.New(rand.NewSource(7)), zerolog.Nop())
	left, _ := ix.Lookup("eyeBlinkLeft")

	const dt = float32(0.005)
	prevClosure := float32(0)
	for i := 0; i < 400; i++ {
		b.Tick(dt)
		c := b.Closure()
		if c < 0 || c > 1 {
			t.Fatalf("closure escaped [0,1]: %f", c)
		}
		if b.Phase() == BlinkClosing && c < prevClosure {
			t.Fatalf("closure must not decrease while closing: %f -> %f", prevClosure, c)
		}
		if w := host.Weight(left); w != c*cfg.MaxWeight {
			t.Fatalf("eyelid weight should track closure: w=%f c=%f", w, c)
		}
		prevClosure = c
	}
}

func TestBlinkerDeterministicWithSeed(t *testing.T) {
	run := func() []float32 {
		host, ix := eyelidHost()
		b := NewBlinker(host, ix, DefaultBlinkConfig(), rand.New(rand.NewSource(42)), zerolog.Nop())
		trace := make([]float32, 0, 600)
		for i := 0; i < 600; i++ {
			b.Tick(1.0 / 60)
			trace = append(trace, b.Closure())
		}
		return trace
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("traces diverge at tick %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestBlinkerDoubleBlink(t *testing.T) {
	host, ix := eyelidHost()
	cfg := fastBlinkConfig()
	cfg.DoubleBlinkChance = 1 // always arm the second blink
	b := NewBlinker(host, ix, cfg, rand.New(rand.NewSource(3)), zerolog.Nop())

	const dt = float32(0.005)
	// Run through the first full cycle back to idle.
	for b.Phase() != BlinkOpening {
		b.Tick(dt)
	}
	for b.Phase() == BlinkOpening {
		b.Tick(dt)
	}
	if b.Phase() != BlinkIdle {
		t.Fatalf("expected armed idle gap, got %s", b.Phase())
	}

	// The gap before the second blink is short, never a full interval.
	elapsed := float32(0)
	for b.Phase() == BlinkIdle {
		b.Tick(dt)
		elapsed += dt
		if elapsed > 0.3 {
			t.Fatal("second blink of a double should fire within 0.25s")
		}
	}
	if b.Phase() != BlinkClosing {
		t.Fatalf("expected second closing, got %s", b.Phase())
	}

	// The armed blink fires immediately after the second cycle opens.
	for b.Phase() != BlinkOpening {
		b.Tick(dt)
	}
	for b.Phase() == BlinkOpening {
		b.Tick(dt)
	}
	if b.Phase() != BlinkClosing {
		t.Fatalf("armed double should chain straight into closing, got %s", b.Phase())
	}
}

func TestBlinkerNoEyelidsDisabled(t *testing.T) {
	host := mesh.NewHost()
	host.AddGroup("head", []string{"jawOpen"})
	ix := IndexHost(host)

	b := NewBlinker(host, ix, fastBlinkConfig(), rand.New(rand.NewSource(1)), zerolog.Nop())
	for i := 0; i < 1000; i++ {
		b.Tick(1.0 / 60)
	}
	if b.Phase() != BlinkIdle || b.Closure() != 0 {
		t.Errorf("blinker without targets should stay inert: phase=%s closure=%f", b.Phase(), b.Closure())
	}
}

func TestBlinkerReset(t *testing.T) {
	host, ix := eyelidHost()
	cfg := fastBlinkConfig()
	b := NewBlinker(host, ix, cfg, rand.New(rand.NewSource(1)), zerolog.Nop())
	left, _ := ix.Lookup("eyeBlinkLeft")

	// Advance into the closed hold.
	const dt = float32(0.005)
	for b.Phase() != BlinkClosed {
		b.Tick(dt)
	}
	if host.Weight(left) == 0 {
		t.Fatal("setup: eyelid should be closed")
	}

	b.Reset()
	if b.Phase() != BlinkIdle || b.Closure() != 0 {
		t.Errorf("reset should return to idle open: phase=%s closure=%f", b.Phase(), b.Closure())
	}
	if w := host.Weight(left); w != 0 {
		t.Errorf("reset should zero the eyelid weight, got %f", w)
	}
}
