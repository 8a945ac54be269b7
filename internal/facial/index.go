package facial

import (
	"strings"

	"github.com/normanking/facedriver/internal/mesh"
)

type indexedName struct {
	name   string
	handle mesh.Handle
}

// MorphIndex is a case-insensitive lookup from morph-target names to
// handles, built once from one or more mesh groups. Every full name is
// present; a short alias (the name with its dot-delimited prefix stripped,
// e.g. "Body.jawOpen" -> "jawOpen") is present unless an earlier
// registration already claimed it.
type MorphIndex struct {
	entries map[string]mesh.Handle
	names   []indexedName
}

func NewMorphIndex() *MorphIndex {
	return &MorphIndex{entries: make(map[string]mesh.Handle)}
}

// IndexHost registers every morph group of the host in group order.
func IndexHost(h *mesh.Host) *MorphIndex {
	ix := NewMorphIndex()
	for g := 0; g < h.GroupCount(); g++ {
		ix.Register(g, h.TargetNames(g))
	}
	return ix
}

// Register adds the morph targets of one mesh group. First registration
// wins on key collisions.
func (ix *MorphIndex) Register(group int, targetNames []string) {
	for i, name := range targetNames {
		hd := mesh.Handle{Group: group, Index: i}
		key := strings.ToLower(name)
		if _, taken := ix.entries[key]; !taken {
			ix.entries[key] = hd
		}
		ix.names = append(ix.names, indexedName{name: name, handle: hd})

		if dot := strings.Index(name, "."); dot >= 0 && dot+1 < len(name) {
			short := strings.ToLower(name[dot+1:])
			if _, taken := ix.entries[short]; !taken {
				ix.entries[short] = hd
			}
		}
	}
}

// Lookup finds an exact (case-insensitive) match for a full name or a
// registered short alias.
func (ix *MorphIndex) Lookup(name string) (mesh.Handle, bool) {
	hd, ok := ix.entries[strings.ToLower(name)]
	return hd, ok
}

// Names returns every registered canonical name in registration order.
// Used for diagnostics when profile detection fails.
func (ix *MorphIndex) Names() []string {
	out := make([]string, len(ix.names))
	for i, n := range ix.names {
		out[i] = n.name
	}
	return out
}

// Len returns the number of registered morph targets.
func (ix *MorphIndex) Len() int {
	return len(ix.names)
}
