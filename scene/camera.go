// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// CameraParams describes a perspective camera.
type CameraParams struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Up        mgl32.Vec3

	// FovY is the vertical field of view in radians.
	FovY float32

	// Aspect is width / height of the image plane.
	Aspect float32
}

// DefaultCameraParams returns a camera at the origin looking down -Z.
func DefaultCameraParams() CameraParams {
	return CameraParams{
		Direction: mgl32.Vec3{0, 0, -1},
		Up:        mgl32.Vec3{0, 1, 0},
		FovY:      math.Pi / 3,
		Aspect:    1,
	}
}

// Camera is a committed perspective camera.
type Camera struct {
	object.Base
	params atomic.Pointer[CameraParams]
	valid  atomic.Bool
}

// NewCamera creates a camera holding DefaultCameraParams.
func NewCamera(dev *anari.Device) *Camera {
	c := &Camera{}
	c.Init(dev, nil)
	p := DefaultCameraParams()
	c.params.Store(&p)
	c.valid.Store(true)
	return c
}

// Commit validates and publishes p.
// An unusable aspect ratio falls back to 1 with a warning; a degenerate
// view basis leaves the camera invalid.
func (c *Camera) Commit(p CameraParams) {
	if p.Aspect <= 0 || isNaN(p.Aspect) {
		c.Device().ReportMessage(anari.SeverityWarning, "camera: invalid aspect %v, using 1", p.Aspect)
		p.Aspect = 1
	}

	valid := true
	switch {
	case p.Direction.Len() == 0:
		c.Device().ReportMessage(anari.SeverityWarning, "camera: zero-length direction")
		valid = false
	case p.Direction.Cross(p.Up).Len() == 0:
		c.Device().ReportMessage(anari.SeverityWarning, "camera: up vector parallel to direction")
		valid = false
	case p.FovY <= 0 || p.FovY >= math.Pi:
		c.Device().ReportMessage(anari.SeverityWarning, "camera: fovy %v out of range (0, pi)", p.FovY)
		valid = false
	}

	c.params.Store(&p)
	c.valid.Store(valid)
	c.MarkChanged()
}

// Params returns the committed parameters.
func (c *Camera) Params() CameraParams {
	return *c.params.Load()
}

// IsValid reports whether the last commit produced a usable view basis.
func (c *Camera) IsValid() bool {
	return c.valid.Load()
}

func isNaN(f float32) bool {
	return math.IsNaN(float64(f))
}
