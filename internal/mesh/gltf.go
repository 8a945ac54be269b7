package mesh

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// LoadGLTF builds a Host from a .gltf/.glb file: one morph group per mesh
// that carries morph targets, plus the node hierarchy as the skeleton.
// Morph-target names come from the mesh "targetNames" extras; meshes that
// omit them get synthetic names so indices stay addressable.
func LoadGLTF(path string) (*Host, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return hostFromDocument(doc)
}

func hostFromDocument(doc *gltf.Document) (*Host, error) {
	host := NewHost()

	for _, m := range doc.Meshes {
		if len(m.Primitives) == 0 {
			continue
		}
		count := len(m.Primitives[0].Targets)
		if count == 0 {
			continue
		}
		names := targetNamesFromExtras(m.Extras, count)
		groupName := m.Name
		if groupName == "" {
			groupName = fmt.Sprintf("mesh%d", host.GroupCount())
		}
		host.AddGroup(groupName, names)
	}

	if host.GroupCount() == 0 {
		return nil, fmt.Errorf("no morph targets in document")
	}

	host.SetSkeleton(skeletonFromDocument(doc))
	return host, nil
}

// targetNamesFromExtras digs the per-mesh target name list out of the
// extras blob. Depending on how the document was decoded the extras may
// still be raw JSON or already a generic map.
func targetNamesFromExtras(extras any, count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("morph_%02d", i)
	}

	var m map[string]any
	switch v := extras.(type) {
	case map[string]any:
		m = v
	case json.RawMessage:
		if json.Unmarshal(v, &m) != nil {
			return names
		}
	case []byte:
		if json.Unmarshal(v, &m) != nil {
			return names
		}
	default:
		return names
	}

	list, ok := m["targetNames"].([]any)
	if !ok {
		return names
	}
	for i, entry := range list {
		if i >= count {
			break
		}
		if s, ok := entry.(string); ok && s != "" {
			names[i] = s
		}
	}
	return names
}

func skeletonFromDocument(doc *gltf.Document) *Skeleton {
	skel := NewSkeleton()

	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			ci := int(c)
			if ci >= 0 && ci < len(parents) {
				parents[ci] = i
			}
		}
	}

	// Nodes arrive parent-before-child in well-formed exports; map glTF
	// node indices to bone indices as they are added.
	boneOf := make([]int, len(doc.Nodes))
	for i := range boneOf {
		boneOf[i] = -1
	}
	var add func(node int)
	add = func(node int) {
		if boneOf[node] >= 0 {
			return
		}
		parent := -1
		if p := parents[node]; p >= 0 {
			add(p)
			parent = boneOf[p]
		}
		n := doc.Nodes[node]
		boneOf[node] = skel.AddBone(n.Name, parent, restRotation(n))
	}
	for i := range doc.Nodes {
		add(i)
	}

	return skel
}

func restRotation(n *gltf.Node) mgl32.Quat {
	r := n.Rotation
	if r[0] == 0 && r[1] == 0 && r[2] == 0 && r[3] == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}
}
