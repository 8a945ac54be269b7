package facial

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

// Config aggregates the tuning of every layer plus profile selection.
type Config struct {
	Compositor CompositorConfig
	Jaw        JawConfig
	Blink      BlinkConfig
	Micro      MicroConfig

	// ForceProfile pins a naming convention by name, bypassing detection.
	ForceProfile string
	// IdleEnabled starts the blink/micro-motion layer.
	IdleEnabled bool
}

func DefaultConfig() Config {
	return Config{
		Compositor:  DefaultCompositorConfig(),
		Jaw:         DefaultJawConfig(),
		Blink:       DefaultBlinkConfig(),
		Micro:       DefaultMicroConfig(),
		IdleEnabled: true,
	}
}

// Driver owns the full facial animation stack for one character. All
// state is mutated only from Tick; there are no concurrent writers. The
// tick order — compositor, jaw, blink, micro-motion — is a correctness
// invariant: the idle layer executes after the compositor, so on shared
// handles the idle layer wins by write order.
type Driver struct {
	log  zerolog.Logger
	host *mesh.Host

	index   *MorphIndex
	profile Profile
	table   *MappingTable

	comp  *Compositor
	jaw   *JawDriver
	blink *Blinker
	micro *MicroMotion

	idleEnabled bool
}

// New builds the driver against a mesh host. A nil host is the one fatal
// condition: there is nothing to build mapping tables against. Every
// other missing piece (targets, bones, conventions) degrades per layer.
func New(host *mesh.Host, cfg Config, rng *rand.Rand, log zerolog.Logger) (*Driver, error) {
	if host == nil {
		return nil, fmt.Errorf("facial: nil mesh host")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	d := &Driver{
		log:         log,
		host:        host,
		idleEnabled: cfg.IdleEnabled,
	}

	d.index = IndexHost(host)

	if p, ok := ParseProfile(cfg.ForceProfile); ok {
		d.profile = p
		log.Info().Str("profile", p.String()).Msg("Naming convention forced by configuration")
	} else {
		d.profile = DetectProfile(d.index, log)
		log.Info().Str("profile", d.profile.String()).Msg("Naming convention detected")
	}

	d.table = BuildMappingTable(d.index, d.profile, log)
	d.comp = NewCompositor(host, d.table, cfg.Compositor)
	d.jaw = NewJawDriver(host, cfg.Jaw, log)
	d.blink = NewBlinker(host, d.index, cfg.Blink, rng, log)
	d.micro = NewMicroMotion(host, d.index, cfg.Micro, rng, log)

	return d, nil
}

// Tick advances every layer by one frame. dt is seconds since the
// previous tick.
func (d *Driver) Tick(frame ScoreFrame, dt float32) {
	d.comp.Tick(&frame, dt)
	d.jaw.Tick(&frame, dt)
	if d.idleEnabled {
		d.blink.Tick(dt)
		d.micro.Tick(dt)
	}
}

// SetIdleEnabled toggles the blink/micro-motion layer. Idle weights do
// not decay through the compositor, so disabling explicitly resets them
// to zero.
func (d *Driver) SetIdleEnabled(enabled bool) {
	if d.idleEnabled == enabled {
		return
	}
	d.idleEnabled = enabled
	if !enabled {
		d.blink.Reset()
		d.micro.Reset()
	}
}

// Retune applies updated tuning parameters between ticks. Profile,
// mapping table, and bone binding are fixed for the session.
func (d *Driver) Retune(cfg Config) {
	d.comp.Retune(cfg.Compositor)
	d.jaw.Retune(cfg.Jaw)
	d.blink.Retune(cfg.Blink)
	d.micro.Retune(cfg.Micro)
}

// Profile returns the active naming convention.
func (d *Driver) Profile() Profile {
	return d.profile
}

// Jaw exposes the jaw driver for diagnostics.
func (d *Driver) Jaw() *JawDriver {
	return d.jaw
}

// Blink exposes the blink state machine for diagnostics.
func (d *Driver) Blink() *Blinker {
	return d.blink
}

// LogSummary emits an advisory snapshot of what resolved on this mesh.
func (d *Driver) LogSummary() {
	mapped := 0
	for c := VisemeClass(0); c < VisemeClassCount; c++ {
		mapped += len(d.table.Viseme[c])
	}
	d.log.Info().
		Str("profile", d.profile.String()).
		Int("morph_targets", d.index.Len()).
		Int("viseme_contributions", mapped).
		Int("laughter_contributions", len(d.table.Laughter)).
		Bool("jaw", d.jaw.Enabled()).
		Strs("micro_channels", d.micro.ChannelNames()).
		Msg("Facial driver ready")
}
