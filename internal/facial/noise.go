package facial

import "math/rand"

// noiseField is a small 2-D value-noise lattice. Samples are continuous
// in both coordinates, so a slowly advancing time axis yields a smooth
// signal rather than per-frame randomness. The permutation is drawn from
// the injected random source, making fields reproducible under a fixed
// seed.
type noiseField struct {
	perm [256]uint8
}

func newNoiseField(rng *rand.Rand) *noiseField {
	n := &noiseField{}
	for i := range n.perm {
		n.perm[i] = uint8(i)
	}
	rng.Shuffle(len(n.perm), func(i, j int) {
		n.perm[i], n.perm[j] = n.perm[j], n.perm[i]
	})
	return n
}

func (n *noiseField) lattice(x, y int) float32 {
	h := n.perm[(int(n.perm[x&255])+y)&255]
	return float32(h) / 255
}

// Sample returns coherent noise in [0,1] at the given coordinates.
func (n *noiseField) Sample(x, y float32) float32 {
	xi, yi := floorInt(x), floorInt(y)
	fx, fy := x-float32(xi), y-float32(yi)

	// smoothstep fade on both axes
	u := fx * fx * (3 - 2*fx)
	v := fy * fy * (3 - 2*fy)

	a := n.lattice(xi, yi)
	b := n.lattice(xi+1, yi)
	c := n.lattice(xi, yi+1)
	d := n.lattice(xi+1, yi+1)

	top := a + (b-a)*u
	bottom := c + (d-c)*u
	return top + (bottom-top)*v
}

func floorInt(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}
