package layout

import "math"

// enclose returns the smallest circle containing every circle in cs, using
// Welzl's move-to-front scheme over a basis of at most three circles. The
// input order is kept as given so that repeated packs agree exactly.
func enclose(cs []Circle) Circle {
	if len(cs) == 0 {
		return Circle{}
	}

	var (
		basis []Circle
		e     Circle
		have  bool
	)
	limit := 4*len(cs)*len(cs) + 16
	for i, steps := 0, 0; i < len(cs); steps++ {
		if steps > limit {
			return boundingCircle(cs)
		}
		p := cs[i]
		if have && enclosesWeak(e, p) {
			i++
			continue
		}
		next, ok := extendBasis(basis, p)
		if !ok {
			return boundingCircle(cs)
		}
		basis = next
		e = encloseBasis(basis)
		have = true
		i = 0
	}
	return e
}

func extendBasis(basis []Circle, p Circle) ([]Circle, bool) {
	if enclosesWeakAll(p, basis) {
		return []Circle{p}, true
	}

	for i := range basis {
		if enclosesNot(p, basis[i]) && enclosesWeakAll(encloseBasis2(basis[i], p), basis) {
			return []Circle{basis[i], p}, true
		}
	}

	for i := 0; i < len(basis)-1; i++ {
		for j := i + 1; j < len(basis); j++ {
			if enclosesNot(encloseBasis2(basis[i], basis[j]), p) &&
				enclosesNot(encloseBasis2(basis[i], p), basis[j]) &&
				enclosesNot(encloseBasis2(basis[j], p), basis[i]) &&
				enclosesWeakAll(encloseBasis3(basis[i], basis[j], p), basis) {
				return []Circle{basis[i], basis[j], p}, true
			}
		}
	}
	return nil, false
}

func enclosesNot(a, b Circle) bool {
	dr := a.R - b.R
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b Circle) bool {
	dr := a.R - b.R + math.Max(math.Max(a.R, b.R), 1)*1e-9
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a Circle, basis []Circle) bool {
	for _, b := range basis {
		if !enclosesWeak(a, b) {
			return false
		}
	}
	return true
}

func encloseBasis(basis []Circle) Circle {
	switch len(basis) {
	case 1:
		return Circle{X: basis[0].X, Y: basis[0].Y, R: basis[0].R}
	case 2:
		return encloseBasis2(basis[0], basis[1])
	default:
		return encloseBasis3(basis[0], basis[1], basis[2])
	}
}

func encloseBasis2(a, b Circle) Circle {
	x21, y21, r21 := b.X-a.X, b.Y-a.Y, b.R-a.R
	l := math.Sqrt(x21*x21 + y21*y21)
	if l == 0 {
		return Circle{X: a.X, Y: a.Y, R: math.Max(a.R, b.R)}
	}
	return Circle{
		X: (a.X + b.X + x21/l*r21) / 2,
		Y: (a.Y + b.Y + y21/l*r21) / 2,
		R: (l + a.R + b.R) / 2,
	}
}

// encloseBasis3 solves for the circle internally tangent to a, b and c.
func encloseBasis3(a, b, c Circle) Circle {
	x1, y1, r1 := a.X, a.Y, a.R
	x2, y2, r2 := b.X, b.Y, b.R
	x3, y3, r3 := c.X, c.Y, c.R

	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3

	ab := a3*b2 - a2*b3
	if ab == 0 {
		// Collinear centres: the pairwise enclosure of the outer two wins.
		return widest(encloseBasis2(a, b), encloseBasis2(a, c), encloseBasis2(b, c))
	}
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab

	qa := xb*xb + yb*yb - 1
	qb := 2 * (r1 + xa*xb + ya*yb)
	qc := xa*xa + ya*ya - r1*r1

	var r float64
	if math.Abs(qa) > 1e-6 {
		r = -(qb + math.Sqrt(math.Max(0, qb*qb-4*qa*qc))) / (2 * qa)
	} else {
		r = -qc / qb
	}
	return Circle{X: x1 + xa + xb*r, Y: y1 + ya + yb*r, R: r}
}

func widest(cs ...Circle) Circle {
	best := cs[0]
	for _, c := range cs[1:] {
		if c.R > best.R {
			best = c
		}
	}
	return best
}

// boundingCircle is a loose enclosure centred on the bounding box, used when
// the exact solver fails to converge on degenerate input.
func boundingCircle(cs []Circle) Circle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range cs {
		minX, maxX = math.Min(minX, c.X-c.R), math.Max(maxX, c.X+c.R)
		minY, maxY = math.Min(minY, c.Y-c.R), math.Max(maxY, c.Y+c.R)
	}
	out := Circle{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	for _, c := range cs {
		if d := math.Hypot(c.X-out.X, c.Y-out.Y) + c.R; d > out.R {
			out.R = d
		}
	}
	return out
}
