package facial

import (
	"strings"

	"github.com/rs/zerolog"
)

// Profile is the naming convention detected on the current mesh. It is
// selected once at activation and stored alongside its resolved mapping
// table; nothing re-dispatches on it per tick.
type Profile int

const (
	// ProfileARKit: standardized facial-capture names (jawOpen,
	// mouthFunnel, eyeBlinkLeft, ...).
	ProfileARKit Profile = iota
	// ProfileVisemeNumbered: dedicated per-viseme shapes from lip-sync
	// aware exporters (v_aa, v_pp, viseme_O, ...), mapped one-to-one.
	ProfileVisemeNumbered
	// ProfileTraditionalDirect: artist-named vowel shapes (A/I/U/E/O,
	// MTH_A, ...) driven directly.
	ProfileTraditionalDirect
	// ProfileTraditionalComposite: no dedicated mouth shapes; visemes are
	// composed from generic open/wide/narrow mouth and jaw shapes.
	ProfileTraditionalComposite
)

func (p Profile) String() string {
	switch p {
	case ProfileARKit:
		return "arkit"
	case ProfileVisemeNumbered:
		return "viseme-numbered"
	case ProfileTraditionalDirect:
		return "traditional-direct"
	case ProfileTraditionalComposite:
		return "traditional-composite"
	}
	return "unknown"
}

// ParseProfile maps a configured profile name to its tag. Empty or
// unrecognized input enables auto-detection.
func ParseProfile(s string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arkit":
		return ProfileARKit, true
	case "viseme-numbered", "numbered":
		return ProfileVisemeNumbered, true
	case "traditional-direct":
		return ProfileTraditionalDirect, true
	case "traditional-composite", "traditional":
		return ProfileTraditionalComposite, true
	}
	return ProfileTraditionalComposite, false
}

// Signature names unique to each convention, probed in precedence order.
var (
	arkitSignatures      = []string{"jawOpen", "mouthFunnel", "eyeBlinkLeft"}
	numberedSignatures   = []string{"v_aa", "v_oh", "viseme_aa", "viseme_O"}
	vowelShapeSignatures = []string{"MTH_A", "Mouth_A", "A"}
)

// DetectProfile probes the name index for convention signatures. The first
// convention with a signature present wins; with none present the
// composite traditional convention is assumed and the available names are
// dumped for diagnostics.
func DetectProfile(ix *MorphIndex, log zerolog.Logger) Profile {
	for _, sig := range arkitSignatures {
		if _, ok := ix.Lookup(sig); ok {
			return ProfileARKit
		}
	}
	for _, sig := range numberedSignatures {
		if _, ok := ix.Lookup(sig); ok {
			return ProfileVisemeNumbered
		}
	}
	for _, sig := range vowelShapeSignatures {
		if _, ok := ix.Lookup(sig); ok {
			return ProfileTraditionalDirect
		}
	}

	log.Warn().
		Int("targets", ix.Len()).
		Strs("names", ix.Names()).
		Msg("No naming convention signature found, assuming composite mouth shapes")
	return ProfileTraditionalComposite
}
