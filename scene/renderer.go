// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// RendererParams holds the renderer settings a backend shades with.
type RendererParams struct {
	// Background is the linear RGBA color of pixels that hit nothing.
	Background [4]float32

	// AmbientRadiance scales the surface color when lighting a hit.
	AmbientRadiance float32

	// LightDirection points from the scene toward a directional light.
	LightDirection mgl32.Vec3

	// VolumeSamplingRate is the number of volume samples per unit distance.
	VolumeSamplingRate float32
}

// DefaultRendererParams returns a black background with a headlight.
func DefaultRendererParams() RendererParams {
	return RendererParams{
		Background:         [4]float32{0, 0, 0, 1},
		AmbientRadiance:    0.2,
		LightDirection:     mgl32.Vec3{0, 0, 1},
		VolumeSamplingRate: 4,
	}
}

// Renderer is a committed set of renderer settings. Renderers are always
// valid; unusable values are corrected at commit.
type Renderer struct {
	object.Base
	params atomic.Pointer[RendererParams]
}

// NewRenderer creates a renderer holding DefaultRendererParams.
func NewRenderer(dev *anari.Device) *Renderer {
	r := &Renderer{}
	r.Init(dev, nil)
	p := DefaultRendererParams()
	r.params.Store(&p)
	return r
}

// Commit publishes p.
func (r *Renderer) Commit(p RendererParams) {
	if p.VolumeSamplingRate <= 0 {
		p.VolumeSamplingRate = DefaultRendererParams().VolumeSamplingRate
	}
	if p.LightDirection.Len() > 0 {
		p.LightDirection = p.LightDirection.Normalize()
	}
	r.params.Store(&p)
	r.MarkChanged()
}

// Params returns the committed parameters.
func (r *Renderer) Params() RendererParams {
	return *r.params.Load()
}

// IsValid always returns true.
func (r *Renderer) IsValid() bool {
	return true
}
