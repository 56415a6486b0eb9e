package noise

// Simplex is seeded simplex noise after Ken Perlin's algorithm. Samples lie
// in [-1, 1].
type Simplex struct {
	perm [512]int
}

// grad3 are the gradient directions shared by 2D and 3D lookups.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// NewSimplex builds the permutation table for seed.
func NewSimplex(seed int64) *Simplex {
	s := &Simplex{}

	var p [256]int
	for i := range p {
		p[i] = i
	}
	// Fisher-Yates driven by a 64-bit LCG.
	state := seed
	for i := 255; i > 0; i-- {
		state = state*6364136223846793005 + 1442695040888963407
		j := int((state>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

// Eval2 samples 2D noise.
func (s *Simplex) Eval2(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	sk := (x + y) * f2
	i := fastFloor(x + sk)
	j := fastFloor(y + sk)
	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	ii, jj := i&255, j&255
	n := corner(0.5, grad3[s.perm[ii+s.perm[jj]]%12], x0, y0, 0)
	n += corner(0.5, grad3[s.perm[ii+i1+s.perm[jj+j1]]%12], x0-float64(i1)+g2, y0-float64(j1)+g2, 0)
	n += corner(0.5, grad3[s.perm[ii+1+s.perm[jj+1]]%12], x0-1+2*g2, y0-1+2*g2, 0)
	return 70 * n
}

// Eval3 samples 3D noise.
func (s *Simplex) Eval3(x, y, z float64) float64 {
	const (
		f3 = 1.0 / 3.0
		g3 = 1.0 / 6.0
	)

	sk := (x + y + z) * f3
	i := fastFloor(x + sk)
	j := fastFloor(y + sk)
	k := fastFloor(z + sk)
	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	// Second and third corners of the simplex, by coordinate rank.
	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= y0 && x0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case y0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case x0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	ii, jj, kk := i&255, j&255, k&255
	p := &s.perm
	n := corner(0.6, grad3[p[ii+p[jj+p[kk]]]%12], x0, y0, z0)
	n += corner(0.6, grad3[p[ii+i1+p[jj+j1+p[kk+k1]]]%12],
		x0-float64(i1)+g3, y0-float64(j1)+g3, z0-float64(k1)+g3)
	n += corner(0.6, grad3[p[ii+i2+p[jj+j2+p[kk+k2]]]%12],
		x0-float64(i2)+2*g3, y0-float64(j2)+2*g3, z0-float64(k2)+2*g3)
	n += corner(0.6, grad3[p[ii+1+p[jj+1+p[kk+1]]]%12],
		x0-1+3*g3, y0-1+3*g3, z0-1+3*g3)
	return 32 * n
}

// Octave2 layers octaves of 2D noise. The result stays in [-1, 1].
func (s *Simplex) Octave2(x, y float64, octaves int, persistence float64) float64 {
	var total, norm float64
	freq, amp := 1.0, 1.0
	for range octaves {
		total += s.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= persistence
		freq *= 2
	}
	return total / norm
}

// corner is the contribution of one simplex corner with falloff radius r2.
func corner(r2 float64, g [3]float64, x, y, z float64) float64 {
	t := r2 - x*x - y*y - z*z
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (g[0]*x + g[1]*y + g[2]*z)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
