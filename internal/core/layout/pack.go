package layout

import (
	"math"
	"sort"
)

// Weighted is one input of a circle packing.
type Weighted struct {
	Key    string
	Weight float64
}

// Circle is a packed circle. For an enclosing circle Key is empty.
type Circle struct {
	Key    string  `json:"key,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
	Weight float64 `json:"weight,omitempty"`
}

// Packing is the result of Pack: non-overlapping circles, largest first, and
// the smallest circle enclosing them all (with padding).
type Packing struct {
	Circles   []Circle `json:"circles"`
	Enclosing Circle   `json:"enclosing"`
}

// Pack lays out one circle per item with area proportional to weight
// (radius = sqrt(weight)), keeping at least padding between neighbours.
//
// Items are placed largest first, so the big circles end up in the middle
// and small ones fill the gaps along the front chain. Equal weights keep
// their input order, which makes the layout deterministic for a given input.
// Items with zero, negative or non-finite weight are dropped.
// The enclosing circle is centred on the origin.
func Pack(items []Weighted, padding float64) Packing {
	if padding < 0 || math.IsNaN(padding) {
		padding = 0
	}

	circles := make([]Circle, 0, len(items))
	for _, it := range items {
		if !(it.Weight > 0) || math.IsInf(it.Weight, 0) {
			continue
		}
		circles = append(circles, Circle{Key: it.Key, Weight: it.Weight, R: math.Sqrt(it.Weight)})
	}
	sort.SliceStable(circles, func(i, j int) bool { return circles[i].Weight > circles[j].Weight })

	if len(circles) == 0 {
		return Packing{Circles: circles}
	}

	half := padding / 2
	for i := range circles {
		circles[i].R += half
	}
	enclosing := packSiblings(circles)
	for i := range circles {
		circles[i].R -= half
	}
	return Packing{Circles: circles, Enclosing: enclosing}
}

// PackInto packs items and fits them into a width x height viewport so that
// the gap between neighbouring circles is about padding pixels on screen.
func PackInto(items []Weighted, width, height, padding float64) Packing {
	first := Pack(items, 0)
	if len(first.Circles) == 0 || first.Enclosing.R <= 0 {
		return first.Fit(width, height)
	}
	k := math.Min(width, height) / 2 / first.Enclosing.R
	return Pack(items, padding/k).Fit(width, height)
}

// Fit scales the packing uniformly so the enclosing circle fills the
// smaller viewport dimension, centred in the viewport.
func (p Packing) Fit(width, height float64) Packing {
	out := Packing{
		Circles:   make([]Circle, len(p.Circles)),
		Enclosing: Circle{X: width / 2, Y: height / 2},
	}
	if len(p.Circles) == 0 || p.Enclosing.R <= 0 {
		return out
	}

	k := math.Min(width, height) / 2 / p.Enclosing.R
	for i, c := range p.Circles {
		out.Circles[i] = Circle{
			Key:    c.Key,
			Weight: c.Weight,
			X:      width/2 + (c.X-p.Enclosing.X)*k,
			Y:      height/2 + (c.Y-p.Enclosing.Y)*k,
			R:      c.R * k,
		}
	}
	out.Enclosing.R = p.Enclosing.R * k
	return out
}

// Area returns the total area covered by the packed circles.
func (p Packing) Area() float64 {
	a := 0.0
	for _, c := range p.Circles {
		a += math.Pi * c.R * c.R
	}
	return a
}

// packSiblings positions circles (radii preset) by front-chain packing and
// translates them so the enclosing circle is centred on the origin.
func packSiblings(circles []Circle) Circle {
	n := len(circles)
	a := &circles[0]
	a.X, a.Y = 0, 0
	if n == 1 {
		return Circle{R: a.R}
	}

	b := &circles[1]
	a.X, b.X, b.Y = -b.R, a.R, 0
	if n == 2 {
		// Tangent on the x axis with outer edges at -(a.R+b.R) and a.R+b.R.
		return Circle{R: a.R + b.R}
	}

	place(b, a, &circles[2])

	// Front chain as a doubly linked ring of circle indices.
	next := make([]int, n)
	prev := make([]int, n)
	ai, bi, ci := 0, 1, 2
	next[ai], prev[ci] = bi, bi
	next[bi], prev[ai] = ci, ci
	next[ci], prev[bi] = ai, ai

pack:
	for i := 3; i < n; i++ {
		ci = i
		place(&circles[ai], &circles[bi], &circles[ci])

		// Find the closest intersecting circle on the front chain, if any,
		// measuring distance along the chain in both directions.
		j, k := next[bi], prev[ai]
		sj, sk := circles[bi].R, circles[ai].R
		for {
			if sj <= sk {
				if intersects(circles[j], circles[ci]) {
					bi = j
					next[ai], prev[bi] = bi, ai
					i--
					continue pack
				}
				sj += circles[j].R
				j = next[j]
			} else {
				if intersects(circles[k], circles[ci]) {
					ai = k
					next[ai], prev[bi] = bi, ai
					i--
					continue pack
				}
				sk += circles[k].R
				k = prev[k]
			}
			if j == next[k] {
				break
			}
		}

		// Insert c between a and b.
		prev[ci], next[ci] = ai, bi
		next[ai], prev[bi] = ci, ci
		bi = ci

		// Pick the chain pair closest to the origin for the next placement.
		best, bestScore := ai, score(circles, ai, next[ai])
		for c := next[ci]; c != bi; c = next[c] {
			if s := score(circles, c, next[c]); s < bestScore {
				best, bestScore = c, s
			}
		}
		ai = best
		bi = next[ai]
	}

	chain := []Circle{circles[bi]}
	for c := next[bi]; c != bi; c = next[c] {
		chain = append(chain, circles[c])
	}
	e := enclose(chain)
	translate(circles, e.X, e.Y)
	return Circle{R: e.R}
}

func translate(circles []Circle, dx, dy float64) {
	for i := range circles {
		circles[i].X -= dx
		circles[i].Y -= dy
	}
}

// place positions c tangent to both a and b.
func place(b, a, c *Circle) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.X, c.Y = a.X+c.R, a.Y
		return
	}

	a2 := (a.R + c.R) * (a.R + c.R)
	b2 := (b.R + c.R) * (b.R + c.R)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.X = b.X - x*dx - y*dy
		c.Y = b.Y - x*dy + y*dx
		return
	}
	x := (d2 + a2 - b2) / (2 * d2)
	y := math.Sqrt(math.Max(0, a2/d2-x*x))
	c.X = a.X + x*dx - y*dy
	c.Y = a.Y + x*dy + y*dx
}

// intersectEpsilon tolerates the rounding error of tangent placement.
const intersectEpsilon = 1e-6

func intersects(a, b Circle) bool {
	dr := a.R + b.R - intersectEpsilon
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the weighted midpoint of
// the tangent pair (i, j).
func score(circles []Circle, i, j int) float64 {
	a, b := circles[i], circles[j]
	ab := a.R + b.R
	dx := (a.X*b.R + b.X*a.R) / ab
	dy := (a.Y*b.R + b.Y*a.R) / ab
	return dx*dx + dy*dy
}
