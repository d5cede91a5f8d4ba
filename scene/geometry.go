// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// GeometrySphere is the subtype of sphere-set geometry.
const GeometrySphere = "sphere"

// defaultSphereRadius is used when neither Radius nor Radii is given.
const defaultSphereRadius = 0.01

// GeometryParams holds the primitives of a geometry.
type GeometryParams struct {
	// Centers holds one sphere center per primitive.
	Centers []mgl32.Vec3

	// Radius is the radius of every sphere when Radii is empty.
	Radius float32

	// Radii holds one radius per primitive, overriding Radius.
	Radii []float32

	// PrimitiveIDs optionally renames primitives in the primitive-ID
	// channel. Without it, a primitive's ID is its index.
	PrimitiveIDs []uint32
}

// Geometry is a committed set of primitives.
// Geometry of an unsupported subtype is never valid.
type Geometry struct {
	object.Base
	subtype string
	params  atomic.Pointer[GeometryParams]
	valid   atomic.Bool
}

// NewGeometry creates an empty geometry of the given subtype.
func NewGeometry(dev *anari.Device, subtype string) *Geometry {
	g := &Geometry{subtype: subtype}
	g.Init(dev, nil)
	g.params.Store(&GeometryParams{})
	if subtype != GeometrySphere {
		dev.ReportMessage(anari.SeverityWarning, "geometry: unsupported subtype %q", subtype)
	}
	return g
}

// Subtype returns the geometry subtype.
func (g *Geometry) Subtype() string {
	return g.subtype
}

// Commit validates and publishes p. The slices are copied.
func (g *Geometry) Commit(p GeometryParams) {
	p.Centers = slices.Clone(p.Centers)
	p.Radii = slices.Clone(p.Radii)
	p.PrimitiveIDs = slices.Clone(p.PrimitiveIDs)
	if p.Radius <= 0 && len(p.Radii) == 0 {
		p.Radius = defaultSphereRadius
	}

	valid := g.subtype == GeometrySphere
	switch {
	case !valid:
	case len(p.Centers) == 0:
		g.Device().ReportMessage(anari.SeverityWarning, "geometry: sphere geometry has no centers")
		valid = false
	case len(p.Radii) != 0 && len(p.Radii) != len(p.Centers):
		g.Device().ReportMessage(anari.SeverityWarning,
			"geometry: %d radii for %d spheres", len(p.Radii), len(p.Centers))
		valid = false
	case len(p.PrimitiveIDs) != 0 && len(p.PrimitiveIDs) != len(p.Centers):
		g.Device().ReportMessage(anari.SeverityWarning,
			"geometry: %d primitive ids for %d spheres", len(p.PrimitiveIDs), len(p.Centers))
		valid = false
	}

	g.params.Store(&p)
	g.valid.Store(valid)
	g.MarkChanged()
}

// Params returns the committed parameters. The slices must not be modified.
func (g *Geometry) Params() GeometryParams {
	return *g.params.Load()
}

// IsValid reports whether the geometry has renderable primitives.
func (g *Geometry) IsValid() bool {
	return g.valid.Load()
}

// RadiusOf returns the radius of sphere i.
func (p *GeometryParams) RadiusOf(i int) float32 {
	if len(p.Radii) != 0 {
		return p.Radii[i]
	}
	return p.Radius
}

// PrimitiveID returns the primitive-ID channel value of primitive i.
func (p *GeometryParams) PrimitiveID(i int) uint32 {
	if len(p.PrimitiveIDs) != 0 {
		return p.PrimitiveIDs[i]
	}
	return uint32(i) //nolint:gosec // G115: primitive counts fit in uint32
}
