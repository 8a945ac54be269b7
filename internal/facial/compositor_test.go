package facial

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

func arkitHost() (*mesh.Host, *MorphIndex) {
	host := mesh.NewHost()
	host.AddGroup("head", []string{
		"jawOpen", "mouthClose", "mouthFunnel", "mouthPucker",
		"mouthSmileLeft", "mouthSmileRight",
		"mouthStretchLeft", "mouthStretchRight",
		"eyeSquintLeft", "eyeSquintRight",
		"tongueOut",
	})
	return host, IndexHost(host)
}

func arkitTable(ix *MorphIndex) *MappingTable {
	return BuildMappingTable(ix, ProfileARKit, zerolog.Nop())
}

func lookup(t *testing.T, ix *MorphIndex, name string) mesh.Handle {
	t.Helper()
	hd, ok := ix.Lookup(name)
	if !ok {
		t.Fatalf("%s missing from index", name)
	}
	return hd
}

func TestCompositorTargetAlwaysClamped(t *testing.T) {
	host, ix := arkitHost()
	cfg := DefaultCompositorConfig()
	cfg.WeightMultiplier = 1000 // deliberately excessive
	comp := NewCompositor(host, arkitTable(ix), cfg)

	jawOpen := lookup(t, ix, "jawOpen")

	frame := &ScoreFrame{}
	for c := range frame.Visemes {
		frame.Visemes[c] = 1.0
	}
	for i := 0; i < 300; i++ {
		comp.Tick(frame, 1.0/60)
		w := host.Weight(jawOpen)
		if w < 0 || w > 100 {
			t.Fatalf("weight escaped [0,100]: %f", w)
		}
	}
	if host.Weight(jawOpen) < 99 {
		t.Errorf("expected saturation near 100, got %f", host.Weight(jawOpen))
	}
}

func TestCompositorSmoothingConvergesMonotonically(t *testing.T) {
	host, ix := arkitHost()
	comp := NewCompositor(host, arkitTable(ix), DefaultCompositorConfig())
	jawOpen := lookup(t, ix, "jawOpen")

	frame := &ScoreFrame{}
	frame.Visemes[VisemeAA] = 1.0

	prev := float32(-1)
	for i := 0; i < 400; i++ {
		comp.Tick(frame, 1.0/60)
		w := comp.Weight(jawOpen)
		if w < prev {
			t.Fatalf("weight moved away from target at tick %d: %f -> %f", i, prev, w)
		}
		if w > 100 {
			t.Fatalf("overshoot: %f", w)
		}
		prev = w
	}
	if prev < 99.5 {
		t.Errorf("expected convergence to ~100, got %f", prev)
	}
}

func TestCompositorDecayWhenUndriven(t *testing.T) {
	host, ix := arkitHost()
	comp := NewCompositor(host, arkitTable(ix), DefaultCompositorConfig())
	jawOpen := lookup(t, ix, "jawOpen")
	funnel := lookup(t, ix, "mouthFunnel")

	drive := &ScoreFrame{}
	drive.Visemes[VisemeAA] = 1.0
	drive.Visemes[VisemeOH] = 0.8
	for i := 0; i < 120; i++ {
		comp.Tick(drive, 1.0/60)
	}
	if comp.Weight(jawOpen) < 50 || comp.Weight(funnel) < 10 {
		t.Fatalf("setup failed to drive weights: jaw=%f funnel=%f", comp.Weight(jawOpen), comp.Weight(funnel))
	}

	// All scores below the activation floor for a while.
	quiet := &ScoreFrame{}
	for c := range quiet.Visemes {
		quiet.Visemes[c] = 0.005
	}
	for i := 0; i < 400; i++ {
		comp.Tick(quiet, 1.0/60)
	}
	if w := comp.Weight(jawOpen); w > 0.5 {
		t.Errorf("jawOpen should have decayed to ~0, got %f", w)
	}
	if w := comp.Weight(funnel); w > 0.5 {
		t.Errorf("mouthFunnel should have decayed to ~0, got %f", w)
	}
}

func TestCompositorContributionsAdditive(t *testing.T) {
	host, ix := arkitHost()
	cfg := DefaultCompositorConfig()
	comp := NewCompositor(host, arkitTable(ix), cfg)
	funnel := lookup(t, ix, "mouthFunnel")

	// FF (0.5) and OH (0.5) both feed mouthFunnel; together they exceed
	// either alone.
	frame := &ScoreFrame{}
	frame.Visemes[VisemeFF] = 0.5
	frame.Visemes[VisemeOH] = 0.5
	for i := 0; i < 300; i++ {
		comp.Tick(frame, 1.0/60)
	}
	combined := comp.Weight(funnel)

	host2, ix2 := arkitHost()
	comp2 := NewCompositor(host2, arkitTable(ix2), cfg)
	funnel2 := lookup(t, ix2, "mouthFunnel")
	solo := &ScoreFrame{}
	solo.Visemes[VisemeFF] = 0.5
	for i := 0; i < 300; i++ {
		comp2.Tick(solo, 1.0/60)
	}

	if combined <= comp2.Weight(funnel2) {
		t.Errorf("contributions should add: combined=%f solo=%f", combined, comp2.Weight(funnel2))
	}
}

func TestCompositorEpsilonSkip(t *testing.T) {
	host, ix := arkitHost()
	comp := NewCompositor(host, arkitTable(ix), DefaultCompositorConfig())
	jawOpen := lookup(t, ix, "jawOpen")

	frame := &ScoreFrame{}
	frame.Visemes[VisemeAA] = 0.009
	for i := 0; i < 100; i++ {
		comp.Tick(frame, 1.0/60)
	}
	if w := comp.Weight(jawOpen); w != 0 {
		t.Errorf("near-zero score should contribute nothing, got %f", w)
	}
}

func TestLaughterThresholdBoundary(t *testing.T) {
	host, ix := arkitHost()
	cfg := DefaultCompositorConfig()
	cfg.LaughterThreshold = 0.5
	comp := NewCompositor(host, arkitTable(ix), cfg)

	if v := comp.laughterTarget(0.5); v != 0 {
		t.Errorf("score at threshold should contribute zero, got %f", v)
	}
	if v := comp.laughterTarget(0.49); v != 0 {
		t.Errorf("score below threshold should contribute zero, got %f", v)
	}

	prev := float32(0)
	for _, score := range []float32{0.55, 0.65, 0.75, 0.85, 0.95, 1.0} {
		v := comp.laughterTarget(score)
		if v <= prev {
			t.Errorf("laughter contribution should strictly increase: score=%f v=%f prev=%f", score, v, prev)
		}
		prev = v
	}
	if prev != cfg.LaughterMultiplier {
		t.Errorf("full score should reach the multiplier cap, got %f want %f", prev, cfg.LaughterMultiplier)
	}
}

func TestLaughterDrivesSmileShapes(t *testing.T) {
	host, ix := arkitHost()
	comp := NewCompositor(host, arkitTable(ix), DefaultCompositorConfig())
	smile := lookup(t, ix, "mouthSmileLeft")

	frame := &ScoreFrame{Laughter: 1.0}
	for i := 0; i < 300; i++ {
		comp.Tick(frame, 1.0/60)
	}
	if w := host.Weight(smile); w < 40 {
		t.Errorf("sustained laughter should drive smile shapes, got %f", w)
	}

	// And decay once it stops.
	for i := 0; i < 400; i++ {
		comp.Tick(&ScoreFrame{}, 1.0/60)
	}
	if w := host.Weight(smile); w > 0.5 {
		t.Errorf("smile should decay after laughter stops, got %f", w)
	}
}
