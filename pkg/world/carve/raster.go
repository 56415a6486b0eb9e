package carve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// floorBias flattens tunnel floors: cells whose normalised vertical offset
// is at or below it are never carved.
const floorBias = -0.7

// Region is one segment rasterised into the current chunk. Min and Max bound
// the clamped search box (Max exclusive).
type Region struct {
	Min, Max Pos
	Cells    []Pos
	Shell    []Pos
}

// Empty reports whether the region carves nothing.
func (r *Region) Empty() bool {
	return len(r.Cells) == 0 && len(r.Shell) == 0
}

// shape selects the inclusion test used by rasterize.
type shape struct {
	ravine   bool
	cutoff   float64       // ravine vertical divisor is 1+cutoff
	mutation *[256]float64 // ravine per-height horizontal multiplier
	shell    float64       // extra radius classified as shell
}

func (sh *shape) inside(h, dy float64, y int) bool {
	if h >= 1 {
		return false
	}
	if sh.ravine {
		m := 1.0
		if sh.mutation != nil {
			m = sh.mutation[y]
		}
		return h*m+dy*dy/(1+sh.cutoff) < 1
	}
	return dy > floorBias && h+dy*dy < 1
}

// rasterize enumerates the local cells of chunk (cx, cz) inside the
// ellipsoid centred on c with radii rXZ and rY.
func rasterize(cx, cz int, c mgl64.Vec3, rXZ, rY float64, sh shape) Region {
	if !(rXZ > 0) || !(rY > 0) {
		return Region{}
	}
	outXZ, outY := rXZ, rY
	if sh.shell > 0 {
		outXZ += sh.shell
		outY += sh.shell
	}

	ox, oz := cx*ChunkSize, cz*ChunkSize
	x0 := max(floor(c.X()-outXZ)-ox-1, 0)
	x1 := min(floor(c.X()+outXZ)-ox+1, ChunkSize)
	// Ravine cells stay inside this box even where the cutoff ellipsoid is taller.
	y0 := max(floor(c.Y()-outY)-1, MinY)
	y1 := min(floor(c.Y()+outY)+1, MaxY)
	z0 := max(floor(c.Z()-outXZ)-oz-1, 0)
	z1 := min(floor(c.Z()+outXZ)-oz+1, ChunkSize)

	reg := Region{Min: Pos{x0, y0, z0}, Max: Pos{x1, y1, z1}}
	if x0 >= x1 || y0 >= y1 || z0 >= z1 {
		return reg
	}

	for x := x0; x < x1; x++ {
		fx := float64(x+ox) + 0.5 - c.X()
		dx, ex := fx/rXZ, fx/outXZ
		for z := z0; z < z1; z++ {
			fz := float64(z+oz) + 0.5 - c.Z()
			dz, ez := fz/rXZ, fz/outXZ
			h, ho := dx*dx+dz*dz, ex*ex+ez*ez
			if ho >= 1 {
				continue
			}
			for y := y1 - 1; y >= y0; y-- {
				fy := float64(y) + 0.5 - c.Y()
				switch {
				case sh.inside(h, fy/rY, y):
					reg.Cells = append(reg.Cells, Pos{x, y, z})
				case sh.shell > 0 && sh.inside(ho, fy/outY, y):
					reg.Shell = append(reg.Shell, Pos{x, y, z})
				}
			}
		}
	}
	return reg
}

// mutationBuffer fills the per-height ravine wall multipliers, either from
// the walk RNG or, when noise is set, from a 1D slice of it through start.
func mutationBuffer(r *Random, noise NoiseSampler, amplitude float64, seed int64, start mgl64.Vec3) *[256]float64 {
	var buf [256]float64
	if noise != nil {
		for y := range buf {
			f := 1 + math.Abs(noise.Sample(seed, start.X(), float64(y), start.Z()))*amplitude
			buf[y] = f * f
		}
		return &buf
	}
	f := 1.0
	for y := range buf {
		if y == 0 || r.NextInt(3) == 0 {
			f = 1 + r.NextFloat()*r.NextFloat()
		}
		buf[y] = f * f
	}
	return &buf
}

func floor(v float64) int {
	return int(math.Floor(v))
}
