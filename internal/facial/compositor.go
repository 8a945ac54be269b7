package facial

import (
	"github.com/normanking/facedriver/internal/mesh"
)

// scoreEpsilon is the activation floor below which a viseme class is
// skipped entirely for the frame.
const scoreEpsilon = 0.01

// CompositorConfig holds the static tuning of the viseme compositor.
// Weights are on the mesh-host scale of [0,100].
type CompositorConfig struct {
	// SmoothingRate is the per-second fraction by which a stored weight
	// closes the gap to its target.
	SmoothingRate float32
	// WeightMultiplier scales every viseme contribution; 100 maps a full
	// score through a 1.0 coefficient to full weight.
	WeightMultiplier float32

	// LaughterSmoothingRate is the (faster) rate for the laughter layer.
	LaughterSmoothingRate float32
	// LaughterThreshold is subtracted from the laughter score before it
	// contributes anything.
	LaughterThreshold float32
	// LaughterMultiplier scales the thresholded laughter term into weight
	// units.
	LaughterMultiplier float32
	// LaughterRescale stretches the post-threshold range back to [0,1] so
	// the multiplier cap stays reachable.
	LaughterRescale bool
}

func DefaultCompositorConfig() CompositorConfig {
	return CompositorConfig{
		SmoothingRate:         12,
		WeightMultiplier:      100,
		LaughterSmoothingRate: 18,
		LaughterThreshold:     0.5,
		LaughterMultiplier:    80,
		LaughterRescale:       true,
	}
}

// Compositor combines per-frame viseme scores through the mapping table
// into smoothed morph-target weights. Every handle the table can ever
// drive has an explicit zero-initialized entry, so targets that stop being
// driven decay back to zero instead of sticking.
type Compositor struct {
	host  *mesh.Host
	table *MappingTable
	cfg   CompositorConfig

	raw      map[mesh.Handle]float32
	weights  map[mesh.Handle]float32
	laughter float32
}

func NewCompositor(host *mesh.Host, table *MappingTable, cfg CompositorConfig) *Compositor {
	handles := table.Handles()
	c := &Compositor{
		host:    host,
		table:   table,
		cfg:     cfg,
		raw:     make(map[mesh.Handle]float32, len(handles)),
		weights: make(map[mesh.Handle]float32, len(handles)),
	}
	for _, hd := range handles {
		c.weights[hd] = 0
	}
	return c
}

// Retune swaps the tuning parameters between ticks.
func (c *Compositor) Retune(cfg CompositorConfig) {
	c.cfg = cfg
}

// Tick accumulates the frame's scores into raw targets, smooths every
// known handle toward its (possibly zero) target, and writes the results
// to the mesh host.
func (c *Compositor) Tick(frame *ScoreFrame, dt float32) {
	for hd := range c.raw {
		delete(c.raw, hd)
	}

	for class := VisemeClass(0); class < VisemeClassCount; class++ {
		score := frame.Visemes[class]
		if score < scoreEpsilon {
			continue
		}
		for _, entry := range c.table.Viseme[class] {
			c.raw[entry.Handle] += score * entry.Coeff * c.cfg.WeightMultiplier
		}
	}
	for hd, target := range c.raw {
		c.raw[hd] = clamp(target, 0, 100)
	}

	laughTarget := c.laughterTarget(frame.Laughter)
	c.laughter += (laughTarget - c.laughter) * blendFactor(dt, c.cfg.LaughterSmoothingRate)

	blend := blendFactor(dt, c.cfg.SmoothingRate)
	for hd, w := range c.weights {
		target := c.raw[hd] // zero when not driven this frame
		w += (target - w) * blend
		c.weights[hd] = w
		c.host.SetWeight(hd, clamp(w+c.laughterWeight(hd), 0, 100))
	}
}

// laughterTarget converts the raw laughter score into a weight-scale
// scalar: thresholded, optionally rescaled to span the full range, then
// multiplied out.
func (c *Compositor) laughterTarget(score float32) float32 {
	v := score - c.cfg.LaughterThreshold
	if v <= 0 {
		return 0
	}
	if c.cfg.LaughterRescale && c.cfg.LaughterThreshold < 1 {
		v /= 1 - c.cfg.LaughterThreshold
	}
	return clamp(v*c.cfg.LaughterMultiplier, 0, 100)
}

func (c *Compositor) laughterWeight(hd mesh.Handle) float32 {
	if c.laughter <= 0 {
		return 0
	}
	for _, entry := range c.table.Laughter {
		if entry.Handle == hd {
			return c.laughter * entry.Coeff
		}
	}
	return 0
}

// Weight exposes the stored smoothed weight for a handle, mainly for
// diagnostics and tests.
func (c *Compositor) Weight(hd mesh.Handle) float32 {
	return c.weights[hd]
}

// blendFactor converts a per-second rate into this tick's lerp fraction.
// Capped at 1 so a long frame never overshoots the target.
func blendFactor(dt, rate float32) float32 {
	f := dt * rate
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
