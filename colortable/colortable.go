// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package colortable maps scalar values to RGBA through piecewise-linear
// color and opacity transfer functions.
//
// Control points live in a normalized [0, 1] domain; the table is then
// rescaled to the scalar range of the data it colors. Colors and opacities
// are interpolated independently, in linear RGB.
package colortable

import (
	"math"
	"sort"
)

// DefaultSamples is the resolution of lookup tables built by Bake.
const DefaultSamples = 256

type colorPoint struct {
	x   float32
	rgb [3]float32
}

type alphaPoint struct {
	x float32
	a float32
}

// Table is a color and opacity transfer function.
// A Table is not safe for concurrent mutation; Map is safe once built.
type Table struct {
	colors []colorPoint
	alphas []alphaPoint
	lo, hi float32
}

// New returns an empty table over the range [0, 1].
// An empty table maps every value to opaque white.
func New() *Table {
	return &Table{lo: 0, hi: 1}
}

// AddPoint adds an RGB control point at normalized position x.
func (t *Table) AddPoint(x float32, rgb [3]float32) {
	t.colors = append(t.colors, colorPoint{x: x, rgb: rgb})
	sort.SliceStable(t.colors, func(i, j int) bool { return t.colors[i].x < t.colors[j].x })
}

// AddPointAlpha adds an opacity control point at normalized position x.
func (t *Table) AddPointAlpha(x, a float32) {
	t.alphas = append(t.alphas, alphaPoint{x: x, a: a})
	sort.SliceStable(t.alphas, func(i, j int) bool { return t.alphas[i].x < t.alphas[j].x })
}

// RescaleToRange sets the scalar range mapped onto the normalized domain.
// A degenerate range is widened so that Map never divides by zero.
func (t *Table) RescaleToRange(lo, hi float32) {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi-lo < 1e-12 {
		hi = lo + 1
	}
	t.lo, t.hi = lo, hi
}

// Range returns the scalar range of the table.
func (t *Table) Range() (lo, hi float32) {
	return t.lo, t.hi
}

// Map returns the RGBA value for scalar v. Values outside the range clamp
// to the end points.
func (t *Table) Map(v float32) [4]float32 {
	x := (v - t.lo) / (t.hi - t.lo)
	if math.IsNaN(float64(x)) {
		x = 0
	}
	x = clamp01(x)

	rgb := [3]float32{1, 1, 1}
	switch n := len(t.colors); {
	case n == 1:
		rgb = t.colors[0].rgb
	case n > 1:
		i := sort.Search(n, func(i int) bool { return t.colors[i].x >= x })
		switch {
		case i == 0:
			rgb = t.colors[0].rgb
		case i == n:
			rgb = t.colors[n-1].rgb
		default:
			a, b := t.colors[i-1], t.colors[i]
			f := segment(a.x, b.x, x)
			for c := range rgb {
				rgb[c] = a.rgb[c] + (b.rgb[c]-a.rgb[c])*f
			}
		}
	}

	alpha := float32(1)
	switch n := len(t.alphas); {
	case n == 1:
		alpha = t.alphas[0].a
	case n > 1:
		i := sort.Search(n, func(i int) bool { return t.alphas[i].x >= x })
		switch {
		case i == 0:
			alpha = t.alphas[0].a
		case i == n:
			alpha = t.alphas[n-1].a
		default:
			a, b := t.alphas[i-1], t.alphas[i]
			alpha = a.a + (b.a-a.a)*segment(a.x, b.x, x)
		}
	}

	return [4]float32{rgb[0], rgb[1], rgb[2], alpha}
}

// FromArrays builds a table the way a 1D transfer function volume does:
// n colors become n evenly spaced control points over [0, 1], a single
// color becomes a constant table, and the same holds for opacities.
// No opacities leaves the table fully opaque.
func FromArrays(colors [][3]float32, opacities []float32, lo, hi float32) *Table {
	t := New()

	switch n := len(colors); {
	case n == 1:
		t.AddPoint(0, colors[0])
		t.AddPoint(1, colors[0])
	case n > 1:
		scale := 1 / float32(n-1)
		for i, c := range colors {
			t.AddPoint(float32(i)*scale, c)
		}
	}

	switch n := len(opacities); {
	case n == 1:
		t.AddPointAlpha(0, opacities[0])
		t.AddPointAlpha(1, opacities[0])
	case n > 1:
		scale := 1 / float32(n-1)
		for i, a := range opacities {
			t.AddPointAlpha(float32(i)*scale, a)
		}
	}

	t.RescaleToRange(lo, hi)
	return t
}

// LUT is a baked, evenly sampled lookup table over a scalar range.
// LUT is immutable and safe for concurrent use.
type LUT struct {
	entries [][4]float32
	lo      float32
	scale   float32
}

// Bake samples the table at n evenly spaced values over its range.
// n below 2 selects DefaultSamples.
func (t *Table) Bake(n int) *LUT {
	if n < 2 {
		n = DefaultSamples
	}
	lut := &LUT{
		entries: make([][4]float32, n),
		lo:      t.lo,
		scale:   float32(n-1) / (t.hi - t.lo),
	}
	step := (t.hi - t.lo) / float32(n-1)
	for i := range lut.entries {
		lut.entries[i] = t.Map(t.lo + float32(i)*step)
	}
	return lut
}

// Lookup returns the nearest baked RGBA value for scalar v.
func (l *LUT) Lookup(v float32) [4]float32 {
	f := (v - l.lo) * l.scale
	if math.IsNaN(float64(f)) || f <= 0 {
		return l.entries[0]
	}
	last := len(l.entries) - 1
	if f >= float32(last) {
		return l.entries[last]
	}
	return l.entries[int(math.Round(float64(f)))]
}

// Len returns the number of baked entries.
func (l *LUT) Len() int {
	return len(l.entries)
}

func segment(x0, x1, x float32) float32 {
	if x1 <= x0 {
		return 0
	}
	return (x - x0) / (x1 - x0)
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
