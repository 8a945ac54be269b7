package facial

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

// MicroConfig tunes the micro-motion bank.
type MicroConfig struct {
	// Intensity is the global excursion scale in weight units [0,100].
	Intensity float32
	// Speed scales how fast the noise fields are traversed.
	Speed float32
}

func DefaultMicroConfig() MicroConfig {
	return MicroConfig{
		Intensity: 16,
		Speed:     1.0,
	}
}

// microSlot is a catalog entry: a facial feature that may carry subtle
// idle motion, with candidate aliases across naming conventions and
// per-channel speed/intensity multipliers.
type microSlot struct {
	name      string
	aliases   []string
	speed     float32
	intensity float32
}

var microCatalog = []microSlot{
	{"browInnerUp", []string{"browInnerUp", "BRW_Sorrow", "brow_inner_up"}, 0.5, 1.0},
	{"browOuterUpLeft", []string{"browOuterUpLeft", "brow_outer_up_l"}, 0.4, 0.7},
	{"browOuterUpRight", []string{"browOuterUpRight", "brow_outer_up_r"}, 0.45, 0.7},
	{"cheekSquintLeft", []string{"cheekSquintLeft", "cheek_squint_l"}, 0.3, 0.5},
	{"cheekSquintRight", []string{"cheekSquintRight", "cheek_squint_r"}, 0.3, 0.5},
	{"eyeSquintLeft", []string{"eyeSquintLeft", "EYE_Joy_L", "eye_squint_l"}, 0.35, 0.6},
	{"eyeSquintRight", []string{"eyeSquintRight", "EYE_Joy_R", "eye_squint_r"}, 0.35, 0.6},
	{"mouthPressLeft", []string{"mouthPressLeft", "mouth_press_l"}, 0.6, 0.4},
	{"mouthPressRight", []string{"mouthPressRight", "mouth_press_r"}, 0.6, 0.4},
	{"noseSneerLeft", []string{"noseSneerLeft", "nose_sneer_l"}, 0.25, 0.3},
	{"noseSneerRight", []string{"noseSneerRight", "nose_sneer_r"}, 0.25, 0.3},
}

// MicroChannel binds one resolved morph target to two independent noise
// phases.
type MicroChannel struct {
	name      string
	handle    mesh.Handle
	phaseA    float32
	phaseB    float32
	speed     float32
	intensity float32
}

// MicroMotion drives a bank of noise channels writing subtle idle motion
// into the shared morph-target weight space. It runs after the compositor
// in the tick sequence, so on shared handles the idle layer wins by write
// order.
type MicroMotion struct {
	host     *mesh.Host
	noise    *noiseField
	channels []MicroChannel
	cfg      MicroConfig
	t        float32
}

// NewMicroMotion builds channels from the fixed catalog, filtered to the
// slots that resolved to a real morph target on the current mesh.
func NewMicroMotion(host *mesh.Host, ix *MorphIndex, cfg MicroConfig, rng *rand.Rand, log zerolog.Logger) *MicroMotion {
	m := &MicroMotion{
		host:  host,
		noise: newNoiseField(rng),
		cfg:   cfg,
	}
	for _, slot := range microCatalog {
		hd, ok := Resolve(ix, slot.aliases...)
		if !ok {
			continue
		}
		m.channels = append(m.channels, MicroChannel{
			name:      slot.name,
			handle:    hd,
			phaseA:    rng.Float32() * 100,
			phaseB:    100 + rng.Float32()*100,
			speed:     slot.speed,
			intensity: slot.intensity,
		})
	}
	log.Debug().Int("channels", len(m.channels)).Msg("Micro-motion channels bound")
	return m
}

// Retune swaps the tuning parameters between ticks.
func (m *MicroMotion) Retune(cfg MicroConfig) {
	m.cfg = cfg
}

// Tick samples every channel and writes its weight. The reshaping biases
// the distribution toward rest, with only occasional excursions toward
// full intensity.
func (m *MicroMotion) Tick(dt float32) {
	m.t += dt * m.cfg.Speed

	for i := range m.channels {
		ch := &m.channels[i]
		x := m.t * ch.speed
		a := m.noise.Sample(x, ch.phaseA)
		b := m.noise.Sample(x, ch.phaseB)

		v := 0.7*a + 0.3*b
		v -= 0.35
		if v < 0 {
			v = 0
		}
		v /= 0.65
		v *= v

		w := clamp(v*m.cfg.Intensity*ch.intensity, 0, 100)
		m.host.SetWeight(ch.handle, w)
	}
}

// Reset zeroes every channel's morph target. Called when the idle layer
// is toggled off; channel weights do not decay on their own.
func (m *MicroMotion) Reset() {
	for i := range m.channels {
		m.host.SetWeight(m.channels[i].handle, 0)
	}
}

// ChannelNames lists the active channels for diagnostics.
func (m *MicroMotion) ChannelNames() []string {
	names := make([]string, len(m.channels))
	for i := range m.channels {
		names[i] = m.channels[i].name
	}
	return names
}
