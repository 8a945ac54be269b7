package facial

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

// JawAxis selects the principal axis the jaw rotates around, relative to
// the bone's captured rest orientation.
type JawAxis int

const (
	JawAxisXPos JawAxis = iota
	JawAxisXNeg
	JawAxisYPos
	JawAxisYNeg
	JawAxisZPos
	JawAxisZNeg
)

func (a JawAxis) String() string {
	switch a {
	case JawAxisXPos:
		return "+x"
	case JawAxisXNeg:
		return "-x"
	case JawAxisYPos:
		return "+y"
	case JawAxisYNeg:
		return "-y"
	case JawAxisZPos:
		return "+z"
	case JawAxisZNeg:
		return "-z"
	}
	return "invalid"
}

func (a JawAxis) vector() mgl32.Vec3 {
	switch a {
	case JawAxisXPos:
		return mgl32.Vec3{1, 0, 0}
	case JawAxisXNeg:
		return mgl32.Vec3{-1, 0, 0}
	case JawAxisYPos:
		return mgl32.Vec3{0, 1, 0}
	case JawAxisYNeg:
		return mgl32.Vec3{0, -1, 0}
	case JawAxisZPos:
		return mgl32.Vec3{0, 0, 1}
	default:
		return mgl32.Vec3{0, 0, -1}
	}
}

// ParseJawAxis reads an axis spec like "+x" or "-z". Defaults to +x, the
// common convention for jaw bones authored with X along the hinge.
func ParseJawAxis(s string) JawAxis {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+x", "x":
		return JawAxisXPos
	case "-x":
		return JawAxisXNeg
	case "+y", "y":
		return JawAxisYPos
	case "-y":
		return JawAxisYNeg
	case "+z", "z":
		return JawAxisZPos
	case "-z":
		return JawAxisZNeg
	}
	return JawAxisXPos
}

// JawConfig tunes the jaw rotation driver.
type JawConfig struct {
	// BoneName explicitly names the jaw bone; empty enables discovery.
	BoneName string
	// Axis is the rotation axis spec, e.g. "+x".
	Axis string
	// MaxAngleDeg is the rotation at full openness, in degrees.
	MaxAngleDeg float32
	// SmoothingRate closes the openness gap per second.
	SmoothingRate float32
	// LaughterGain scales the laughter score into an openness term that
	// widens the viseme-derived value.
	LaughterGain float32
}

func DefaultJawConfig() JawConfig {
	return JawConfig{
		Axis:          "+x",
		MaxAngleDeg:   14,
		SmoothingRate: 10,
		LaughterGain:  0.5,
	}
}

// jawOpenAmounts is the per-class mouth openness table. Authored once,
// independent of mesh naming.
var jawOpenAmounts = [VisemeClassCount]float32{
	VisemeSil: 0,
	VisemePP:  0,
	VisemeFF:  0.1,
	VisemeTH:  0.2,
	VisemeDD:  0.2,
	VisemeKK:  0.25,
	VisemeCH:  0.1,
	VisemeSS:  0.05,
	VisemeNN:  0.15,
	VisemeRR:  0.15,
	VisemeAA:  1.0,
	VisemeE:   0.6,
	VisemeIH:  0.3,
	VisemeOH:  0.8,
	VisemeOU:  0.4,
}

// jawBoneCandidates feed the name-based recursive search when neither
// explicit configuration nor a humanoid jaw slot is available.
var jawBoneCandidates = []string{"jaw", "jawbone", "jaw_root", "lowerjaw", "mandible", "chin"}

// JawDriver derives a scalar mouth openness from the per-frame viseme
// scores and applies it as a bone rotation relative to the captured rest
// pose. A missing jaw bone disables jaw motion without failing anything
// else.
type JawDriver struct {
	skel *mesh.Skeleton
	bone int
	rest mgl32.Quat

	axis     JawAxis
	maxAngle float32
	rate     float32
	gain     float32

	openness float32
}

// NewJawDriver discovers the jaw bone and captures its rest pose.
// Discovery order: explicit config name, humanoid jaw annotation, then a
// recursive candidate-name search.
func NewJawDriver(host *mesh.Host, cfg JawConfig, log zerolog.Logger) *JawDriver {
	j := &JawDriver{
		bone:     -1,
		axis:     ParseJawAxis(cfg.Axis),
		maxAngle: cfg.MaxAngleDeg,
		rate:     cfg.SmoothingRate,
		gain:     cfg.LaughterGain,
	}

	skel := host.Skeleton()
	if skel == nil {
		log.Warn().Msg("No skeleton on mesh host, jaw motion disabled")
		return j
	}
	j.skel = skel

	switch {
	case cfg.BoneName != "":
		j.bone = skel.Find(cfg.BoneName)
		if j.bone < 0 {
			log.Warn().Str("bone", cfg.BoneName).Msg("Configured jaw bone not found, falling back to discovery")
		}
	}
	if j.bone < 0 {
		j.bone = skel.HumanoidJaw()
	}
	if j.bone < 0 {
		j.bone = skel.FindContaining(jawBoneCandidates)
	}

	if j.bone < 0 {
		log.Warn().Msg("No jaw bone found, jaw motion disabled")
		return j
	}

	j.rest = skel.Rest(j.bone)
	log.Debug().
		Str("bone", skel.BoneName(j.bone)).
		Str("axis", j.axis.String()).
		Float32("max_deg", j.maxAngle).
		Msg("Jaw bone bound")
	return j
}

// Enabled reports whether a jaw bone was found.
func (j *JawDriver) Enabled() bool {
	return j.bone >= 0
}

// Retune swaps the tuning parameters between ticks. The bound bone and
// axis stay fixed for the session.
func (j *JawDriver) Retune(cfg JawConfig) {
	j.maxAngle = cfg.MaxAngleDeg
	j.rate = cfg.SmoothingRate
	j.gain = cfg.LaughterGain
}

// Tick smooths the openness toward this frame's target and rotates the
// jaw bone. The laughter term widens the target via max rather than
// adding, so laughter never double-counts jaw opening already driven by
// the open-vowel classes.
func (j *JawDriver) Tick(frame *ScoreFrame, dt float32) {
	if j.bone < 0 {
		return
	}

	var target float32
	for class := VisemeClass(0); class < VisemeClassCount; class++ {
		target += frame.Visemes[class] * jawOpenAmounts[class]
	}
	if laugh := frame.Laughter * j.gain; laugh > target {
		target = laugh
	}
	target = clamp(target, 0, 1)

	j.openness += (target - j.openness) * blendFactor(dt, j.rate)

	angle := mgl32.DegToRad(j.openness * j.maxAngle)
	j.skel.SetLocal(j.bone, j.rest.Mul(mgl32.QuatRotate(angle, j.axis.vector())))
}

// Openness exposes the smoothed open fraction in [0,1].
func (j *JawDriver) Openness() float32 {
	return j.openness
}

// AngleDeg exposes the current applied angle in degrees.
func (j *JawDriver) AngleDeg() float32 {
	return j.openness * j.maxAngle
}
