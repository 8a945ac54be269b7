// Package facial blends viseme-driven lip sync, jaw rotation, and a
// procedural idle layer (blink + micro-expression noise) into a shared
// pool of morph-target weights on a mesh host. It is single-threaded and
// tick-driven: one Tick per rendered frame.
package facial

// VisemeClass is one of the 15 recognized phoneme classes scored by the
// upstream lip-sync engine.
type VisemeClass int

const (
	VisemeSil VisemeClass = iota // silence
	VisemePP                     // p, b, m
	VisemeFF                     // f, v
	VisemeTH                     // th
	VisemeDD                     // t, d
	VisemeKK                     // k, g
	VisemeCH                     // ch, j, sh
	VisemeSS                     // s, z
	VisemeNN                     // n, l
	VisemeRR                     // r
	VisemeAA                     // a (open vowel)
	VisemeE                      // e
	VisemeIH                     // i
	VisemeOH                     // o
	VisemeOU                     // u
	VisemeClassCount
)

var visemeNames = [VisemeClassCount]string{
	"sil", "PP", "FF", "TH", "DD", "kk", "CH", "SS", "nn", "RR",
	"aa", "E", "ih", "oh", "ou",
}

func (c VisemeClass) String() string {
	if c < 0 || c >= VisemeClassCount {
		return "invalid"
	}
	return visemeNames[c]
}

// ScoreFrame is one frame of upstream scores: per-class viseme activations
// plus an independent laughter score, all conceptually in [0,1].
type ScoreFrame struct {
	Visemes  [VisemeClassCount]float32
	Laughter float32
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
