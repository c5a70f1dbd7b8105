package image

import "math"

// MipCount returns the length of a full chain for the given extents: one
// level per halving until every dimension reaches 1.
func MipCount(dims ...int) int {
	maxDim := 1
	for _, d := range dims {
		maxDim = max(maxDim, d)
	}
	return 1 + int(math.Floor(math.Log2(float64(maxDim))))
}

// GenerateMipmaps returns src followed by levels-1 successively halved
// planes. levels of 0 produces the full chain. Level 0 is src itself and
// is not copied.
func GenerateMipmaps(src *Plane, levels int, f Filter, addr AddressMode) ([]*Plane, error) {
	if src == nil {
		return nil, ErrInvalidDimensions
	}
	full := MipCount(src.width, src.height)
	if levels <= 0 || levels > full {
		levels = full
	}

	chain := make([]*Plane, levels)
	chain[0] = src
	for i := 1; i < levels; i++ {
		prev := chain[i-1]
		next, err := Resize(prev, max(1, prev.width/2), max(1, prev.height/2), f, addr)
		if err != nil {
			ReleaseMipmaps(chain[:i])
			return nil, err
		}
		chain[i] = next
	}
	return chain, nil
}

// DownsampleVolume halves a stack of depth slices in all three
// dimensions. Pairs of adjacent slices are averaged after each is resized.
func DownsampleVolume(slices []*Plane, f Filter, addr AddressMode) ([]*Plane, error) {
	if len(slices) == 0 {
		return nil, ErrInvalidDimensions
	}
	w := max(1, slices[0].width/2)
	h := max(1, slices[0].height/2)
	depth := max(1, len(slices)/2)

	out := make([]*Plane, depth)
	for z := 0; z < depth; z++ {
		a, err := Resize(slices[min(2*z, len(slices)-1)], w, h, f, addr)
		if err != nil {
			return nil, err
		}
		if 2*z+1 < len(slices) {
			b, err := Resize(slices[2*z+1], w, h, f, addr)
			if err != nil {
				return nil, err
			}
			for i := range a.pix {
				a.pix[i] = (a.pix[i] + b.pix[i]) / 2
			}
			PutToDefault(b)
		}
		out[z] = a
	}
	return out, nil
}

// ReleaseMipmaps returns every level except the first to the default pool.
func ReleaseMipmaps(chain []*Plane) {
	for i := 1; i < len(chain); i++ {
		PutToDefault(chain[i])
		chain[i] = nil
	}
}
