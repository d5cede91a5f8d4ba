// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// SurfaceParams binds a geometry to its appearance.
type SurfaceParams struct {
	Geometry *Geometry

	// Color is the linear RGBA base color.
	Color [4]float32

	// ID is written to the object-ID channel for pixels showing this surface.
	ID uint32
}

type surfaceState struct {
	geometry *Geometry
	color    [4]float32
	id       uint32
}

// Surface is a committed geometry with a material color.
type Surface struct {
	object.Base

	mu       sync.Mutex // serializes Commit and release
	geometry object.Handle[*Geometry]

	state atomic.Pointer[surfaceState]
}

// NewSurface creates a surface without geometry. It is invalid until a
// commit provides a valid geometry.
func NewSurface(dev *anari.Device) *Surface {
	s := &Surface{}
	s.Init(dev, s.free)
	s.state.Store(&surfaceState{color: [4]float32{0.8, 0.8, 0.8, 1}})
	return s
}

// Commit publishes p and takes a share of its geometry.
func (s *Surface) Commit(p SurfaceParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Geometry != nil {
		s.geometry.Set(p.Geometry)
	} else {
		s.Device().ReportMessage(anari.SeverityWarning, "surface: missing geometry")
		s.geometry.Clear()
	}

	s.state.Store(&surfaceState{geometry: p.Geometry, color: p.Color, id: p.ID})
	s.MarkChanged()
}

// Geometry returns the committed geometry, or nil.
func (s *Surface) Geometry() *Geometry {
	return s.state.Load().geometry
}

// Color returns the committed base color.
func (s *Surface) Color() [4]float32 {
	return s.state.Load().color
}

// ID returns the committed object ID.
func (s *Surface) ID() uint32 {
	return s.state.Load().id
}

// IsValid reports whether the surface has a valid geometry.
func (s *Surface) IsValid() bool {
	g := s.state.Load().geometry
	return g != nil && g.IsValid()
}

// LastChanged returns the newer of the surface's and its geometry's
// commit timestamps.
func (s *Surface) LastChanged() anari.TimeStamp {
	ts := s.Base.LastChanged()
	if g := s.state.Load().geometry; g != nil {
		ts = max(ts, g.LastChanged())
	}
	return ts
}

func (s *Surface) free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.Clear()
}
