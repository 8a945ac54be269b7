package facial

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/mesh"
)

func TestDetectProfileARKit(t *testing.T) {
	ix := indexOf("jawOpen", "mouthFunnel", "eyeBlinkLeft")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileARKit {
		t.Errorf("expected arkit, got %s", p)
	}
}

func TestDetectProfileVisemeNumbered(t *testing.T) {
	ix := indexOf("v_sil", "v_aa", "v_oh", "v_ou")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileVisemeNumbered {
		t.Errorf("expected viseme-numbered, got %s", p)
	}
}

func TestDetectProfileVisemeNumberedDottedPrefix(t *testing.T) {
	// Exporters often prefix dedicated viseme shapes; the short alias
	// registration makes the signature probe still hit.
	ix := indexOf("vrc.v_aa", "vrc.v_oh")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileVisemeNumbered {
		t.Errorf("expected viseme-numbered, got %s", p)
	}
}

func TestDetectProfileTraditionalDirect(t *testing.T) {
	ix := indexOf("MTH_A", "MTH_I", "MTH_U", "MTH_E", "MTH_O")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileTraditionalDirect {
		t.Errorf("expected traditional-direct, got %s", p)
	}
}

func TestDetectProfileDefaultsToComposite(t *testing.T) {
	ix := indexOf("MouthOpen", "MouthWide", "Frown")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileTraditionalComposite {
		t.Errorf("expected traditional-composite default, got %s", p)
	}
}

func TestDetectProfilePrecedence(t *testing.T) {
	// A mesh carrying both capture names and dedicated viseme shapes
	// selects the first convention in precedence order.
	ix := indexOf("jawOpen", "v_aa")
	if p := DetectProfile(ix, zerolog.Nop()); p != ProfileARKit {
		t.Errorf("expected arkit by precedence, got %s", p)
	}
}

func TestParseProfile(t *testing.T) {
	cases := []struct {
		in   string
		want Profile
		ok   bool
	}{
		{"arkit", ProfileARKit, true},
		{"ARKit", ProfileARKit, true},
		{"numbered", ProfileVisemeNumbered, true},
		{"traditional-direct", ProfileTraditionalDirect, true},
		{"traditional", ProfileTraditionalComposite, true},
		{"", ProfileTraditionalComposite, false},
		{"garbage", ProfileTraditionalComposite, false},
	}
	for _, tc := range cases {
		got, ok := ParseProfile(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseProfile(%q) = %s,%v want %s,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBuildMappingTableSkipsUnresolved(t *testing.T) {
	// Only jawOpen exists; every other capture-name contribution is
	// dropped without error.
	ix := indexOf("jawOpen")
	table := BuildMappingTable(ix, ProfileARKit, zerolog.Nop())

	if len(table.Viseme[VisemeAA]) != 1 {
		t.Fatalf("expected a single resolved aa contribution, got %d", len(table.Viseme[VisemeAA]))
	}
	if table.Viseme[VisemeAA][0].Coeff != 1.0 {
		t.Errorf("unexpected coefficient %f", table.Viseme[VisemeAA][0].Coeff)
	}
	if len(table.Viseme[VisemeSS]) != 0 {
		t.Errorf("stretch shapes are absent and should resolve to nothing")
	}
}

func TestMappingTableHandlesDeduplicated(t *testing.T) {
	ix := indexOf("jawOpen", "mouthFunnel", "mouthPucker", "mouthClose")
	table := BuildMappingTable(ix, ProfileARKit, zerolog.Nop())

	handles := table.Handles()
	seen := make(map[mesh.Handle]bool)
	for _, hd := range handles {
		if seen[hd] {
			t.Fatalf("duplicate handle %+v", hd)
		}
		seen[hd] = true
	}
	if len(handles) != 4 {
		t.Errorf("expected 4 distinct handles, got %d", len(handles))
	}
}
