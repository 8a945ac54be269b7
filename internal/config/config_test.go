package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/facedriver/internal/facial"
)

func TestDefaultConfigMirrorsFacialDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	comp := facial.DefaultCompositorConfig()
	assert.Equal(t, comp.SmoothingRate, cfg.Animation.Morph.SmoothingRate)
	assert.Equal(t, comp.WeightMultiplier, cfg.Animation.Morph.WeightMultiplier)
	assert.Equal(t, comp.LaughterThreshold, cfg.Animation.Laughter.Threshold)
	assert.Equal(t, comp.LaughterRescale, cfg.Animation.Laughter.Rescale)

	jaw := facial.DefaultJawConfig()
	assert.Equal(t, jaw.Axis, cfg.Animation.Jaw.Axis)
	assert.Equal(t, jaw.MaxAngleDeg, cfg.Animation.Jaw.MaxAngleDeg)

	blink := facial.DefaultBlinkConfig()
	assert.Equal(t, blink.IntervalMin, cfg.Animation.Blink.IntervalMin)
	assert.Equal(t, blink.DoubleBlinkChance, cfg.Animation.Blink.DoubleBlinkChance)

	assert.True(t, cfg.Animation.Idle)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestFacialRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Animation.Profile = "arkit"
	cfg.Animation.Idle = false
	cfg.Animation.Morph.WeightMultiplier = 80
	cfg.Animation.Laughter.Threshold = 0.3
	cfg.Animation.Jaw.Bone = "LowerTeeth"
	cfg.Animation.Jaw.Axis = "-z"
	cfg.Animation.Blink.MaxWeight = 90
	cfg.Animation.Micro.Intensity = 5

	fc := cfg.Facial()
	assert.Equal(t, "arkit", fc.ForceProfile)
	assert.False(t, fc.IdleEnabled)
	assert.Equal(t, float32(80), fc.Compositor.WeightMultiplier)
	assert.Equal(t, float32(0.3), fc.Compositor.LaughterThreshold)
	assert.Equal(t, "LowerTeeth", fc.Jaw.BoneName)
	assert.Equal(t, "-z", fc.Jaw.Axis)
	assert.Equal(t, float32(90), fc.Blink.MaxWeight)
	assert.Equal(t, float32(5), fc.Micro.Intensity)
}

func TestFacialDefaultsAccepted(t *testing.T) {
	// A default config converted to the driver config must be usable
	// without further adjustment.
	fc := DefaultConfig().Facial()
	assert.Equal(t, facial.DefaultCompositorConfig(), fc.Compositor)
	assert.Equal(t, facial.DefaultJawConfig(), fc.Jaw)
	assert.Equal(t, facial.DefaultBlinkConfig(), fc.Blink)
	assert.Equal(t, facial.DefaultMicroConfig(), fc.Micro)
}
