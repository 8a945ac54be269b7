// Package mesh hosts morph-target weight storage and the bone hierarchy
// for a skinned character. The animation core queries names and indices
// from here and writes weights and rotations back each tick.
package mesh

// Handle identifies a morph target as (mesh group, local index).
type Handle struct {
	Group int
	Index int
}

// MorphGroup is one sub-mesh exposing an ordered list of morph targets,
// e.g. the head mesh or a separate tongue mesh.
type MorphGroup struct {
	Name    string
	names   []string
	weights []float32
}

// Host owns the weight arrays for a set of morph groups plus an optional
// skeleton. Weights are in [0,100].
type Host struct {
	groups   []*MorphGroup
	skeleton *Skeleton
}

func NewHost() *Host {
	return &Host{}
}

// AddGroup registers a sub-mesh and returns its group id.
func (h *Host) AddGroup(name string, targetNames []string) int {
	g := &MorphGroup{
		Name:    name,
		names:   append([]string(nil), targetNames...),
		weights: make([]float32, len(targetNames)),
	}
	h.groups = append(h.groups, g)
	return len(h.groups) - 1
}

// GroupCount returns the number of registered morph groups.
func (h *Host) GroupCount() int {
	return len(h.groups)
}

func (h *Host) GroupName(group int) string {
	return h.groups[group].Name
}

// TargetNames returns the canonical morph-target names of a group in
// declaration order.
func (h *Host) TargetNames(group int) []string {
	return h.groups[group].names
}

func (h *Host) valid(hd Handle) bool {
	return hd.Group >= 0 && hd.Group < len(h.groups) &&
		hd.Index >= 0 && hd.Index < len(h.groups[hd.Group].weights)
}

// SetWeight writes a morph-target weight. Out-of-range handles are ignored.
func (h *Host) SetWeight(hd Handle, w float32) {
	if !h.valid(hd) {
		return
	}
	h.groups[hd.Group].weights[hd.Index] = w
}

// Weight reads the current weight of a morph target.
func (h *Host) Weight(hd Handle) float32 {
	if !h.valid(hd) {
		return 0
	}
	return h.groups[hd.Group].weights[hd.Index]
}

func (h *Host) SetSkeleton(s *Skeleton) {
	h.skeleton = s
}

// Skeleton returns the bone hierarchy, or nil when the character has none.
func (h *Host) Skeleton() *Skeleton {
	return h.skeleton
}
