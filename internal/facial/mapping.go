package facial

import (
	"github.com/normanking/facedriver/internal/mesh"
	"github.com/rs/zerolog"
)

// aliasWeight is one hand-authored contribution: candidate aliases for a
// semantic slot plus the coefficient applied to the viseme score.
type aliasWeight struct {
	aliases []string
	coeff   float32
}

// MappingEntry is a resolved contribution: a concrete morph-target handle
// and its coefficient in [0,1].
type MappingEntry struct {
	Handle mesh.Handle
	Coeff  float32
}

// MappingTable maps each viseme class, plus laughter, to the resolved
// morph-target contributions for the active profile. Built once after
// profile detection, immutable during playback.
type MappingTable struct {
	Profile  Profile
	Viseme   [VisemeClassCount][]MappingEntry
	Laughter []MappingEntry
}

// Handles returns every morph-target handle the table can ever drive,
// deduplicated. The compositor pre-sizes its weight state from this.
func (t *MappingTable) Handles() []mesh.Handle {
	seen := make(map[mesh.Handle]bool)
	var out []mesh.Handle
	add := func(entries []MappingEntry) {
		for _, e := range entries {
			if !seen[e.Handle] {
				seen[e.Handle] = true
				out = append(out, e.Handle)
			}
		}
	}
	for c := VisemeClass(0); c < VisemeClassCount; c++ {
		add(t.Viseme[c])
	}
	add(t.Laughter)
	return out
}

// ARKit-style capture names.
var arkitVisemeSpec = [VisemeClassCount][]aliasWeight{
	VisemeSil: {},
	VisemePP: {
		{[]string{"mouthClose", "mouth_close"}, 0.8},
		{[]string{"mouthPucker", "mouth_pucker"}, 0.3},
	},
	VisemeFF: {
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.5},
		{[]string{"mouthLowerDownLeft", "mouth_lower_down_left"}, 0.2},
		{[]string{"mouthLowerDownRight", "mouth_lower_down_right"}, 0.2},
	},
	VisemeTH: {
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.3},
		{[]string{"tongueOut", "tongue_out"}, 0.4},
	},
	VisemeDD: {
		{[]string{"jawOpen", "jaw_open"}, 0.2},
		{[]string{"mouthUpperUpLeft", "mouth_upper_up_left"}, 0.2},
		{[]string{"mouthUpperUpRight", "mouth_upper_up_right"}, 0.2},
	},
	VisemeKK: {
		{[]string{"jawOpen", "jaw_open"}, 0.25},
		{[]string{"mouthStretchLeft", "mouth_stretch_left"}, 0.2},
		{[]string{"mouthStretchRight", "mouth_stretch_right"}, 0.2},
	},
	VisemeCH: {
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.4},
		{[]string{"mouthPucker", "mouth_pucker"}, 0.3},
	},
	VisemeSS: {
		{[]string{"mouthStretchLeft", "mouth_stretch_left"}, 0.3},
		{[]string{"mouthStretchRight", "mouth_stretch_right"}, 0.3},
	},
	VisemeNN: {
		{[]string{"jawOpen", "jaw_open"}, 0.15},
		{[]string{"mouthClose", "mouth_close"}, 0.3},
	},
	VisemeRR: {
		{[]string{"mouthPucker", "mouth_pucker"}, 0.4},
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.2},
	},
	VisemeAA: {
		{[]string{"jawOpen", "jaw_open"}, 1.0},
		{[]string{"mouthStretchLeft", "mouth_stretch_left"}, 0.2},
		{[]string{"mouthStretchRight", "mouth_stretch_right"}, 0.2},
	},
	VisemeE: {
		{[]string{"jawOpen", "jaw_open"}, 0.3},
		{[]string{"mouthSmileLeft", "mouth_smile_left"}, 0.3},
		{[]string{"mouthSmileRight", "mouth_smile_right"}, 0.3},
	},
	VisemeIH: {
		{[]string{"jawOpen", "jaw_open"}, 0.2},
		{[]string{"mouthSmileLeft", "mouth_smile_left"}, 0.4},
		{[]string{"mouthSmileRight", "mouth_smile_right"}, 0.4},
	},
	VisemeOH: {
		{[]string{"jawOpen", "jaw_open"}, 0.4},
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.5},
		{[]string{"mouthPucker", "mouth_pucker"}, 0.3},
	},
	VisemeOU: {
		{[]string{"jawOpen", "jaw_open"}, 0.25},
		{[]string{"mouthPucker", "mouth_pucker"}, 0.6},
		{[]string{"mouthFunnel", "mouth_funnel"}, 0.4},
	},
}

var arkitLaughterSpec = []aliasWeight{
	{[]string{"mouthSmileLeft", "mouth_smile_left"}, 0.6},
	{[]string{"mouthSmileRight", "mouth_smile_right"}, 0.6},
	{[]string{"eyeSquintLeft", "eye_squint_left"}, 0.3},
	{[]string{"eyeSquintRight", "eye_squint_right"}, 0.3},
	{[]string{"jawOpen", "jaw_open"}, 0.4},
}

// Dedicated per-viseme shapes, one-to-one.
var numberedVisemeSpec = [VisemeClassCount][]aliasWeight{
	VisemeSil: {{[]string{"v_sil", "viseme_sil"}, 1.0}},
	VisemePP:  {{[]string{"v_pp", "viseme_PP"}, 1.0}},
	VisemeFF:  {{[]string{"v_ff", "viseme_FF"}, 1.0}},
	VisemeTH:  {{[]string{"v_th", "viseme_TH"}, 1.0}},
	VisemeDD:  {{[]string{"v_dd", "viseme_DD"}, 1.0}},
	VisemeKK:  {{[]string{"v_kk", "viseme_kk"}, 1.0}},
	VisemeCH:  {{[]string{"v_ch", "viseme_CH"}, 1.0}},
	VisemeSS:  {{[]string{"v_ss", "viseme_SS"}, 1.0}},
	VisemeNN:  {{[]string{"v_nn", "viseme_nn"}, 1.0}},
	VisemeRR:  {{[]string{"v_rr", "viseme_RR"}, 1.0}},
	VisemeAA:  {{[]string{"v_aa", "viseme_aa"}, 1.0}},
	VisemeE:   {{[]string{"v_e", "viseme_E"}, 1.0}},
	VisemeIH:  {{[]string{"v_ih", "viseme_I"}, 1.0}},
	VisemeOH:  {{[]string{"v_oh", "viseme_O"}, 1.0}},
	VisemeOU:  {{[]string{"v_ou", "viseme_U"}, 1.0}},
}

var numberedLaughterSpec = []aliasWeight{
	{[]string{"v_aa", "viseme_aa"}, 0.4},
	{[]string{"v_ih", "viseme_I"}, 0.2},
	{[]string{"v_e", "viseme_E"}, 0.2},
}

// Artist-named vowel shapes (A/I/U/E/O conventions).
var (
	vowelA = []string{"MTH_A", "Mouth_A", "A"}
	vowelI = []string{"MTH_I", "Mouth_I", "I"}
	vowelU = []string{"MTH_U", "Mouth_U", "U"}
	vowelE = []string{"MTH_E", "Mouth_E", "E"}
	vowelO = []string{"MTH_O", "Mouth_O", "O"}
)

var traditionalDirectVisemeSpec = [VisemeClassCount][]aliasWeight{
	VisemeSil: {},
	VisemePP:  {{vowelU, 0.1}},
	VisemeFF:  {{vowelI, 0.2}},
	VisemeTH:  {{vowelE, 0.2}, {vowelA, 0.1}},
	VisemeDD:  {{vowelE, 0.3}},
	VisemeKK:  {{vowelE, 0.25}, {vowelA, 0.15}},
	VisemeCH:  {{vowelI, 0.35}, {vowelU, 0.2}},
	VisemeSS:  {{vowelI, 0.4}},
	VisemeNN:  {{vowelE, 0.2}},
	VisemeRR:  {{vowelU, 0.4}},
	VisemeAA:  {{vowelA, 1.0}},
	VisemeE:   {{vowelE, 0.9}},
	VisemeIH:  {{vowelI, 0.9}},
	VisemeOH:  {{vowelO, 0.9}},
	VisemeOU:  {{vowelU, 0.9}},
}

var traditionalDirectLaughterSpec = []aliasWeight{
	{vowelA, 0.5},
	{vowelI, 0.3},
}

// Generic mouth/jaw shapes for meshes without dedicated viseme or vowel
// targets.
var (
	mouthOpen   = []string{"MouthOpen", "mouth_open", "JawOpen", "OpenMouth"}
	mouthWide   = []string{"MouthWide", "MouthSmile", "Smile", "Wide"}
	mouthNarrow = []string{"MouthNarrow", "MouthPucker", "Pucker", "Kiss"}
)

var traditionalCompositeVisemeSpec = [VisemeClassCount][]aliasWeight{
	VisemeSil: {},
	VisemePP:  {{mouthNarrow, 0.2}},
	VisemeFF:  {{mouthWide, 0.2}},
	VisemeTH:  {{mouthOpen, 0.2}},
	VisemeDD:  {{mouthOpen, 0.25}},
	VisemeKK:  {{mouthOpen, 0.3}},
	VisemeCH:  {{mouthNarrow, 0.4}},
	VisemeSS:  {{mouthWide, 0.35}},
	VisemeNN:  {{mouthOpen, 0.15}},
	VisemeRR:  {{mouthNarrow, 0.45}},
	VisemeAA:  {{mouthOpen, 0.9}},
	VisemeE:   {{mouthOpen, 0.4}, {mouthWide, 0.5}},
	VisemeIH:  {{mouthOpen, 0.2}, {mouthWide, 0.7}},
	VisemeOH:  {{mouthOpen, 0.7}, {mouthNarrow, 0.5}},
	VisemeOU:  {{mouthOpen, 0.3}, {mouthNarrow, 0.8}},
}

var traditionalCompositeLaughterSpec = []aliasWeight{
	{mouthWide, 0.7},
	{mouthOpen, 0.3},
}

func profileSpecs(p Profile) (viseme [VisemeClassCount][]aliasWeight, laughter []aliasWeight) {
	switch p {
	case ProfileARKit:
		return arkitVisemeSpec, arkitLaughterSpec
	case ProfileVisemeNumbered:
		return numberedVisemeSpec, numberedLaughterSpec
	case ProfileTraditionalDirect:
		return traditionalDirectVisemeSpec, traditionalDirectLaughterSpec
	default:
		return traditionalCompositeVisemeSpec, traditionalCompositeLaughterSpec
	}
}

// BuildMappingTable resolves the authored alias tables of a profile
// against the name index. Unresolved aliases are omitted from their
// viseme's contribution list and warned about once each; missing shapes
// never fail the build.
func BuildMappingTable(ix *MorphIndex, p Profile, log zerolog.Logger) *MappingTable {
	visemeSpec, laughterSpec := profileSpecs(p)

	table := &MappingTable{Profile: p}
	warned := make(map[string]bool)

	resolveList := func(spec []aliasWeight, context string) []MappingEntry {
		var entries []MappingEntry
		for _, aw := range spec {
			hd, ok := Resolve(ix, aw.aliases...)
			if !ok {
				key := aw.aliases[0]
				if !warned[key] {
					warned[key] = true
					log.Warn().
						Str("alias", key).
						Str("context", context).
						Msg("Morph target not found on mesh, contribution skipped")
				}
				continue
			}
			entries = append(entries, MappingEntry{Handle: hd, Coeff: aw.coeff})
		}
		return entries
	}

	for c := VisemeClass(0); c < VisemeClassCount; c++ {
		table.Viseme[c] = resolveList(visemeSpec[c], c.String())
	}
	table.Laughter = resolveList(laughterSpec, "laughter")

	return table
}
