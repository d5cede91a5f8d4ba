// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"math"
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// FieldParams describes a scalar field sampled on a structured regular grid.
// Data is x-fastest: index = x + Dims[0]*(y + Dims[1]*z).
type FieldParams struct {
	Dims    [3]int
	Origin  mgl32.Vec3
	Spacing mgl32.Vec3
	Data    []float32
}

type fieldState struct {
	FieldParams
	lo, hi float32
}

// SpatialField is a committed structured regular scalar field.
type SpatialField struct {
	object.Base
	state atomic.Pointer[fieldState]
	valid atomic.Bool
}

// NewSpatialField creates an empty, invalid field.
func NewSpatialField(dev *anari.Device) *SpatialField {
	f := &SpatialField{}
	f.Init(dev, nil)
	f.state.Store(&fieldState{})
	return f
}

// Commit validates and publishes p. Data is copied.
func (f *SpatialField) Commit(p FieldParams) {
	p.Data = slices.Clone(p.Data)
	for i := range p.Spacing {
		if p.Spacing[i] <= 0 {
			p.Spacing[i] = 1
		}
	}

	st := &fieldState{FieldParams: p}
	n := p.Dims[0] * p.Dims[1] * p.Dims[2]
	valid := p.Dims[0] > 0 && p.Dims[1] > 0 && p.Dims[2] > 0 && len(p.Data) == n
	if valid {
		st.lo, st.hi = valueRange(p.Data)
	} else {
		f.Device().ReportMessage(anari.SeverityWarning,
			"spatialField: %d values for dims %v", len(p.Data), p.Dims)
	}

	f.state.Store(st)
	f.valid.Store(valid)
	f.MarkChanged()
}

// IsValid reports whether the data matches the grid dimensions.
func (f *SpatialField) IsValid() bool {
	return f.valid.Load()
}

// Params returns the committed parameters. Data must not be modified.
func (f *SpatialField) Params() FieldParams {
	return f.state.Load().FieldParams
}

// Range returns the minimum and maximum data value.
func (f *SpatialField) Range() (lo, hi float32) {
	st := f.state.Load()
	return st.lo, st.hi
}

// Bounds returns the axis-aligned box covered by the grid.
func (f *SpatialField) Bounds() (lo, hi mgl32.Vec3) {
	p := f.state.Load().FieldParams
	return p.Bounds()
}

// Bounds returns the axis-aligned box covered by the grid.
func (p *FieldParams) Bounds() (lo, hi mgl32.Vec3) {
	lo = p.Origin
	for i := range 3 {
		hi[i] = p.Origin[i] + float32(max(p.Dims[i]-1, 0))*p.Spacing[i]
	}
	return lo, hi
}

// Sample trilinearly interpolates the field at world position pos.
// It returns false outside the grid.
func (p *FieldParams) Sample(pos mgl32.Vec3) (float32, bool) {
	var idx [3]int
	var frac [3]float32
	for i := range 3 {
		g := (pos[i] - p.Origin[i]) / p.Spacing[i]
		last := float32(p.Dims[i] - 1)
		if g < 0 || g > last || math.IsNaN(float64(g)) {
			return 0, false
		}
		fl := float32(math.Floor(float64(g)))
		if fl >= last {
			fl = max(last-1, 0)
		}
		idx[i] = int(fl)
		frac[i] = g - fl
	}

	at := func(x, y, z int) float32 {
		x = min(x, p.Dims[0]-1)
		y = min(y, p.Dims[1]-1)
		z = min(z, p.Dims[2]-1)
		return p.Data[x+p.Dims[0]*(y+p.Dims[1]*z)]
	}

	x, y, z := idx[0], idx[1], idx[2]
	fx, fy, fz := frac[0], frac[1], frac[2]

	c00 := lerp(at(x, y, z), at(x+1, y, z), fx)
	c10 := lerp(at(x, y+1, z), at(x+1, y+1, z), fx)
	c01 := lerp(at(x, y, z+1), at(x+1, y, z+1), fx)
	c11 := lerp(at(x, y+1, z+1), at(x+1, y+1, z+1), fx)

	return lerp(lerp(c00, c10, fy), lerp(c01, c11, fy), fz), true
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func valueRange(data []float32) (lo, hi float32) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range data {
		if math.IsNaN(float64(v)) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}
