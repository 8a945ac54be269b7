package mesh

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Bone is a node in the skeleton hierarchy. Rest is the rotation captured
// at load time; Local is the rotation currently applied by animation.
type Bone struct {
	Name     string
	Parent   int
	Children []int
	Rest     mgl32.Quat
	Local    mgl32.Quat
}

// Skeleton is a flat bone array with parent/child links. The humanoid jaw
// slot is an optional annotation set by the loader or by configuration.
type Skeleton struct {
	bones []Bone
	jaw   int
}

func NewSkeleton() *Skeleton {
	return &Skeleton{jaw: -1}
}

// AddBone appends a bone and returns its index. Pass parent -1 for roots.
func (s *Skeleton) AddBone(name string, parent int, rest mgl32.Quat) int {
	idx := len(s.bones)
	s.bones = append(s.bones, Bone{
		Name:   name,
		Parent: parent,
		Rest:   rest,
		Local:  rest,
	})
	if parent >= 0 && parent < idx {
		s.bones[parent].Children = append(s.bones[parent].Children, idx)
	}
	return idx
}

func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

func (s *Skeleton) BoneName(idx int) string {
	return s.bones[idx].Name
}

// SetHumanoidJaw marks a bone as the humanoid-rig jaw.
func (s *Skeleton) SetHumanoidJaw(idx int) {
	s.jaw = idx
}

// HumanoidJaw returns the annotated jaw bone index, or -1.
func (s *Skeleton) HumanoidJaw() int {
	return s.jaw
}

// Find returns the index of the bone with the given name, case-insensitive,
// or -1 when absent.
func (s *Skeleton) Find(name string) int {
	for i := range s.bones {
		if strings.EqualFold(s.bones[i].Name, name) {
			return i
		}
	}
	return -1
}

// FindContaining walks the hierarchy depth-first and returns the first bone
// whose name contains any of the candidates, case-insensitive, or -1.
func (s *Skeleton) FindContaining(candidates []string) int {
	for i := range s.bones {
		if s.bones[i].Parent == -1 {
			if idx := s.findContaining(i, candidates); idx >= 0 {
				return idx
			}
		}
	}
	return -1
}

func (s *Skeleton) findContaining(idx int, candidates []string) int {
	name := strings.ToLower(s.bones[idx].Name)
	for _, c := range candidates {
		if strings.Contains(name, strings.ToLower(c)) {
			return idx
		}
	}
	for _, child := range s.bones[idx].Children {
		if found := s.findContaining(child, candidates); found >= 0 {
			return found
		}
	}
	return -1
}

// Rest returns the rotation captured at load time.
func (s *Skeleton) Rest(idx int) mgl32.Quat {
	return s.bones[idx].Rest
}

// SetLocal applies a local rotation to a bone.
func (s *Skeleton) SetLocal(idx int, q mgl32.Quat) {
	s.bones[idx].Local = q
}

func (s *Skeleton) Local(idx int) mgl32.Quat {
	return s.bones[idx].Local
}
