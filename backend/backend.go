// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend defines the interface between frames and the code that
// computes pixel samples.
//
// A frame calls RenderBackend.Prepare once per dispatched render with the
// committed world, camera and renderer. The returned Sampler is then called
// once per pixel, concurrently from many goroutines, with disjoint screen
// coordinates. Preparation is the place for per-render work such as
// building acceleration structures or baking transfer functions; its error
// is the render's error.
package backend

import (
	"context"
	"math"

	"github.com/gogpu/anari/object"
	"golang.org/x/image/math/f32"
)

// NoID is the ID channel value of pixels where no object was hit.
const NoID = ^uint32(0)

// Scene is the set of committed objects one render samples. The frame
// holds shares of all three for the duration of the render.
type Scene struct {
	World    object.Ref
	Camera   object.Ref
	Renderer object.Ref
}

// Sample is the result of sampling one screen coordinate.
// Channels a backend cannot supply keep the values of EmptySample.
type Sample struct {
	// Color is linear RGBA.
	Color [4]float32

	// Depth is the distance along the primary ray to the first visible
	// object, +Inf when nothing was hit.
	Depth float32

	PrimID uint32
	ObjID  uint32
	InstID uint32
}

// EmptySample returns a transparent sample that hit nothing.
func EmptySample() Sample {
	return Sample{
		Depth:  float32(math.Inf(1)),
		PrimID: NoID,
		ObjID:  NoID,
		InstID: NoID,
	}
}

// Sampler computes samples for one prepared render.
// Sample must be safe for concurrent use.
type Sampler interface {
	// Sample returns the sample at a screen coordinate in [0, 1]^2 with the
	// origin at the bottom-left corner of the image.
	Sample(screen f32.Vec2) Sample
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(screen f32.Vec2) Sample

// Sample calls f(screen).
func (f SamplerFunc) Sample(screen f32.Vec2) Sample {
	return f(screen)
}

// RenderBackend prepares samplers for renders.
type RenderBackend interface {
	// Prepare binds a sampler to the committed scene. ctx is cancelled
	// when the frame discards the render. A non-nil error fails the
	// render and is returned from the frame's Wait.
	Prepare(ctx context.Context, scene Scene) (Sampler, error)
}

// Func adapts a function to the RenderBackend interface.
type Func func(ctx context.Context, scene Scene) (Sampler, error)

// Prepare calls f(ctx, scene).
func (f Func) Prepare(ctx context.Context, scene Scene) (Sampler, error) {
	return f(ctx, scene)
}
