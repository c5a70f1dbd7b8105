package image

import (
	"math"

	"github.com/gogpu/dxtex/internal/cache"
)

// Filter selects the reconstruction kernel used when resampling.
type Filter uint8

const (
	// FilterPoint selects the closest source pixel.
	FilterPoint Filter = iota

	// FilterLinear interpolates between the two nearest pixels on each axis.
	FilterLinear

	// FilterCubic uses Catmull-Rom weights over a 4x4 neighborhood.
	FilterCubic

	// FilterBox averages every source pixel the destination pixel covers,
	// weighted by coverage. A 2:1 reduction is the classic 2x2 average.
	FilterBox
)

// String returns a string representation of the filter.
func (f Filter) String() string {
	switch f {
	case FilterPoint:
		return "Point"
	case FilterLinear:
		return "Linear"
	case FilterCubic:
		return "Cubic"
	case FilterBox:
		return "Box"
	default:
		return "Unknown"
	}
}

// AddressMode determines how taps outside the source are resolved.
type AddressMode uint8

const (
	// AddressClamp repeats the edge pixel (default).
	AddressClamp AddressMode = iota

	// AddressWrap tiles the source.
	AddressWrap

	// AddressMirror reflects the source at each edge.
	AddressMirror
)

// resolve maps a possibly out-of-range index into [0, n).
func (m AddressMode) resolve(i, n int) int {
	switch m {
	case AddressWrap:
		return ((i % n) + n) % n
	case AddressMirror:
		period := 2 * n
		i = ((i % period) + period) % period
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return clamp(i, 0, n-1)
	}
}

type tap struct {
	idx int
	w   float32
}

// taps computes, for each destination index along one axis, the source
// indices and normalized weights that contribute to it.
func taps(dstN, srcN int, f Filter, addr AddressMode) [][]tap {
	scale := float64(srcN) / float64(dstN)
	out := make([][]tap, dstN)
	for i := range out {
		center := (float64(i) + 0.5) * scale
		var ts []tap
		switch f {
		case FilterPoint:
			ts = []tap{{idx: int(math.Floor(center)), w: 1}}

		case FilterLinear:
			fx := center - 0.5
			x0 := int(math.Floor(fx))
			t := float32(fx - float64(x0))
			ts = []tap{{x0, 1 - t}, {x0 + 1, t}}

		case FilterCubic:
			fx := center - 0.5
			x0 := int(math.Floor(fx))
			t := fx - float64(x0)
			for k := -1; k <= 2; k++ {
				ts = append(ts, tap{x0 + k, float32(cubicWeight(t - float64(k)))})
			}

		default:
			lo := float64(i) * scale
			hi := lo + scale
			for x := int(math.Floor(lo)); float64(x) < hi; x++ {
				w := math.Min(hi, float64(x+1)) - math.Max(lo, float64(x))
				if w > 1e-9 {
					ts = append(ts, tap{x, float32(w)})
				}
			}
		}

		var sum float32
		for k := range ts {
			ts[k].idx = addr.resolve(ts[k].idx, srcN)
			sum += ts[k].w
		}
		if sum != 0 && sum != 1 {
			for k := range ts {
				ts[k].w /= sum
			}
		}
		out[i] = ts
	}
	return out
}

type tapKey struct {
	dstN, srcN int
	f          Filter
	addr       AddressMode
}

// tapTables memoizes per-axis tables. Mip chains and array slices resample
// the same axis sizes over and over.
var tapTables = cache.New[tapKey, [][]tap](128)

func cachedTaps(dstN, srcN int, f Filter, addr AddressMode) [][]tap {
	k := tapKey{dstN, srcN, f, addr}
	return tapTables.GetOrCreate(k, func() [][]tap { return taps(dstN, srcN, f, addr) })
}

// Resize resamples src to width x height with a separable filter. The
// result comes from the default pool.
func Resize(src *Plane, width, height int, f Filter, addr AddressMode) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	xt := cachedTaps(width, src.width, f, addr)
	yt := cachedTaps(height, src.height, f, addr)

	// Horizontal pass into a width x src.height scratch plane.
	tmp := GetFromDefault(width, src.height)
	defer PutToDefault(tmp)
	for y := 0; y < src.height; y++ {
		srow := src.Row(y)
		drow := tmp.Row(y)
		for x, ts := range xt {
			var acc [4]float32
			for _, t := range ts {
				s := srow[t.idx*4 : t.idx*4+4]
				acc[0] += s[0] * t.w
				acc[1] += s[1] * t.w
				acc[2] += s[2] * t.w
				acc[3] += s[3] * t.w
			}
			copy(drow[x*4:x*4+4], acc[:])
		}
	}

	dst := GetFromDefault(width, height)
	for y, ts := range yt {
		drow := dst.Row(y)
		for _, t := range ts {
			srow := tmp.Row(t.idx)
			for i := range drow {
				drow[i] += srow[i] * t.w
			}
		}
	}
	return dst, nil
}

// cubicWeight computes the Catmull-Rom cubic weight for distance t.
func cubicWeight(t float64) float64 {
	// Catmull-Rom spline (Mitchell-Netravali with B=0, C=0.5):
	// |t| < 1: (1.5|t|³ - 2.5|t|² + 1)
	// 1 ≤ |t| < 2: (-0.5|t|³ + 2.5|t|² - 4|t| + 2)
	// |t| ≥ 2: 0
	absT := math.Abs(t)
	if absT < 1 {
		return 1.5*absT*absT*absT - 2.5*absT*absT + 1.0
	}
	if absT < 2 {
		return -0.5*absT*absT*absT + 2.5*absT*absT - 4.0*absT + 2.0
	}
	return 0
}
