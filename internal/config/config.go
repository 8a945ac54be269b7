// Package config provides configuration management for facedriver.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/normanking/facedriver/internal/facial"
)

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Model     ModelConfig     `mapstructure:"model"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Animation AnimationConfig `mapstructure:"animation"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

// ModelConfig points at the character meshes.
type ModelConfig struct {
	HeadPath   string `mapstructure:"head_path"`
	TonguePath string `mapstructure:"tongue_path"`
}

// FeedConfig configures the upstream viseme score feed.
type FeedConfig struct {
	URL string `mapstructure:"url"`
}

// AnimationConfig mirrors the facial driver tunables.
type AnimationConfig struct {
	Profile string `mapstructure:"profile"`
	Idle    bool   `mapstructure:"idle"`

	Morph    MorphConfig    `mapstructure:"morph"`
	Laughter LaughterConfig `mapstructure:"laughter"`
	Jaw      JawConfig      `mapstructure:"jaw"`
	Blink    BlinkConfig    `mapstructure:"blink"`
	Micro    MicroConfig    `mapstructure:"micro"`
}

// MorphConfig tunes the viseme compositor.
type MorphConfig struct {
	SmoothingRate    float32 `mapstructure:"smoothing_rate"`
	WeightMultiplier float32 `mapstructure:"weight_multiplier"`
}

// LaughterConfig tunes the laughter layer.
type LaughterConfig struct {
	SmoothingRate float32 `mapstructure:"smoothing_rate"`
	Threshold     float32 `mapstructure:"threshold"`
	Multiplier    float32 `mapstructure:"multiplier"`
	Rescale       bool    `mapstructure:"rescale"`
}

// JawConfig tunes the jaw rotation driver.
type JawConfig struct {
	Bone          string  `mapstructure:"bone"`
	Axis          string  `mapstructure:"axis"`
	MaxAngleDeg   float32 `mapstructure:"max_angle_deg"`
	SmoothingRate float32 `mapstructure:"smoothing_rate"`
	LaughterGain  float32 `mapstructure:"laughter_gain"`
}

// BlinkConfig tunes the blink state machine. Durations are seconds.
type BlinkConfig struct {
	IntervalMin       float32 `mapstructure:"interval_min"`
	IntervalMax       float32 `mapstructure:"interval_max"`
	CloseDuration     float32 `mapstructure:"close_duration"`
	HoldDuration      float32 `mapstructure:"hold_duration"`
	OpenDuration      float32 `mapstructure:"open_duration"`
	DoubleBlinkChance float32 `mapstructure:"double_blink_chance"`
	MaxWeight         float32 `mapstructure:"max_weight"`
}

// MicroConfig tunes the micro-motion bank.
type MicroConfig struct {
	Intensity float32 `mapstructure:"intensity"`
	Speed     float32 `mapstructure:"speed"`
}

// DefaultConfig returns sensible default configuration, mirroring the
// facial package defaults.
func DefaultConfig() *Config {
	comp := facial.DefaultCompositorConfig()
	jaw := facial.DefaultJawConfig()
	blink := facial.DefaultBlinkConfig()
	micro := facial.DefaultMicroConfig()

	home, _ := os.UserHomeDir()
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Dir:     filepath.Join(home, ".facedriver", "logs"),
			Console: true,
		},
		Model: ModelConfig{},
		Feed:  FeedConfig{URL: ""},
		Animation: AnimationConfig{
			Profile: "",
			Idle:    true,
			Morph: MorphConfig{
				SmoothingRate:    comp.SmoothingRate,
				WeightMultiplier: comp.WeightMultiplier,
			},
			Laughter: LaughterConfig{
				SmoothingRate: comp.LaughterSmoothingRate,
				Threshold:     comp.LaughterThreshold,
				Multiplier:    comp.LaughterMultiplier,
				Rescale:       comp.LaughterRescale,
			},
			Jaw: JawConfig{
				Bone:          jaw.BoneName,
				Axis:          jaw.Axis,
				MaxAngleDeg:   jaw.MaxAngleDeg,
				SmoothingRate: jaw.SmoothingRate,
				LaughterGain:  jaw.LaughterGain,
			},
			Blink: BlinkConfig{
				IntervalMin:       blink.IntervalMin,
				IntervalMax:       blink.IntervalMax,
				CloseDuration:     blink.CloseDuration,
				HoldDuration:      blink.HoldDuration,
				OpenDuration:      blink.OpenDuration,
				DoubleBlinkChance: blink.DoubleBlinkChance,
				MaxWeight:         blink.MaxWeight,
			},
			Micro: MicroConfig{
				Intensity: micro.Intensity,
				Speed:     micro.Speed,
			},
		},
	}
}

// Facial converts the animation section into the facial driver config.
func (c *Config) Facial() facial.Config {
	a := c.Animation
	return facial.Config{
		Compositor: facial.CompositorConfig{
			SmoothingRate:         a.Morph.SmoothingRate,
			WeightMultiplier:      a.Morph.WeightMultiplier,
			LaughterSmoothingRate: a.Laughter.SmoothingRate,
			LaughterThreshold:     a.Laughter.Threshold,
			LaughterMultiplier:    a.Laughter.Multiplier,
			LaughterRescale:       a.Laughter.Rescale,
		},
		Jaw: facial.JawConfig{
			BoneName:      a.Jaw.Bone,
			Axis:          a.Jaw.Axis,
			MaxAngleDeg:   a.Jaw.MaxAngleDeg,
			SmoothingRate: a.Jaw.SmoothingRate,
			LaughterGain:  a.Jaw.LaughterGain,
		},
		Blink: facial.BlinkConfig{
			IntervalMin:       a.Blink.IntervalMin,
			IntervalMax:       a.Blink.IntervalMax,
			CloseDuration:     a.Blink.CloseDuration,
			HoldDuration:      a.Blink.HoldDuration,
			OpenDuration:      a.Blink.OpenDuration,
			DoubleBlinkChance: a.Blink.DoubleBlinkChance,
			MaxWeight:         a.Blink.MaxWeight,
		},
		Micro: facial.MicroConfig{
			Intensity: a.Micro.Intensity,
			Speed:     a.Micro.Speed,
		},
		ForceProfile: a.Profile,
		IdleEnabled:  a.Idle,
	}
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".facedriver"), nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	dir, err := ConfigDir()
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("FACEDRIVER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to file.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	viper.Set("logging", cfg.Logging)
	viper.Set("model", cfg.Model)
	viper.Set("feed", cfg.Feed)
	viper.Set("animation", cfg.Animation)

	return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}
