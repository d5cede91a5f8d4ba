// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/internal/config"
	"github.com/gogpu/anari/scene"
)

// Object IDs of the demo scene.
const (
	idSpheres = 1
	idGround  = 2
	idVolume  = 3
)

const (
	orbitRadius = 6
	orbitHeight = 1.5
	volumeDims  = 24
)

// demoScene is a ring of spheres on a ground sphere, optionally with a
// volume in the middle of the ring.
type demoScene struct {
	camera   *scene.Camera
	renderer *scene.Renderer
	world    *scene.World
	aspect   float32
}

func newDemoScene(dev *anari.Device, cfg *config.Config) *demoScene {
	d := &demoScene{
		camera:   scene.NewCamera(dev),
		renderer: scene.NewRenderer(dev),
		world:    scene.NewWorld(dev),
		aspect:   float32(cfg.Width) / float32(cfg.Height),
	}

	d.renderer.Commit(scene.RendererParams{
		Background:      [4]float32{0.05, 0.05, 0.1, 1},
		AmbientRadiance: 0.15,
		LightDirection:  mgl32.Vec3{1, 2, 1},
	})

	ring := scene.NewGeometry(dev, scene.GeometrySphere)
	centers := make([]mgl32.Vec3, cfg.Spheres)
	for i := range centers {
		a := 2 * math.Pi * float64(i) / float64(len(centers))
		centers[i] = mgl32.Vec3{2 * float32(math.Cos(a)), 0, 2 * float32(math.Sin(a))}
	}
	ring.Commit(scene.GeometryParams{Centers: centers, Radius: 0.5})

	ground := scene.NewGeometry(dev, scene.GeometrySphere)
	ground.Commit(scene.GeometryParams{Centers: []mgl32.Vec3{{0, -100.5, 0}}, Radius: 100})

	spheres := scene.NewSurface(dev)
	spheres.Commit(scene.SurfaceParams{Geometry: ring, Color: [4]float32{0.9, 0.35, 0.2, 1}, ID: idSpheres})
	floor := scene.NewSurface(dev)
	floor.Commit(scene.SurfaceParams{Geometry: ground, Color: [4]float32{0.6, 0.6, 0.6, 1}, ID: idGround})

	wp := scene.WorldParams{Surfaces: []*scene.Surface{spheres, floor}}

	var field *scene.SpatialField
	var vol *scene.Volume
	if cfg.Volume {
		field = scene.NewSpatialField(dev)
		field.Commit(blobField())
		vol = scene.NewVolume(dev)
		vol.Commit(scene.VolumeParams{
			Field:     field,
			Colors:    [][3]float32{{0.1, 0.2, 1}, {0.2, 1, 0.3}, {1, 0.9, 0.1}},
			Opacities: []float32{0, 0.05, 0.6},
			ID:        idVolume,
		})
		wp.Volumes = []*scene.Volume{vol}
	}

	d.world.Commit(wp)

	// The world holds its own shares.
	for _, o := range []interface{ Release() }{ring, ground, spheres, floor} {
		o.Release()
	}
	if cfg.Volume {
		field.Release()
		vol.Release()
	}

	d.Orbit(0, 1)
	return d
}

// blobField is a radial falloff centered at the origin.
func blobField() scene.FieldParams {
	const n = volumeDims
	spacing := float32(2) / (n - 1)
	data := make([]float32, n*n*n)
	for z := range n {
		for y := range n {
			for x := range n {
				p := mgl32.Vec3{float32(x), float32(y), float32(z)}.Mul(spacing).Sub(mgl32.Vec3{1, 1, 1})
				data[x+n*(y+n*z)] = max(1-p.Len(), 0)
			}
		}
	}
	return scene.FieldParams{
		Dims:    [3]int{n, n, n},
		Origin:  mgl32.Vec3{-1, -1, -1},
		Spacing: mgl32.Vec3{spacing, spacing, spacing},
		Data:    data,
	}
}

// Orbit places the camera at step i of n around the scene.
func (d *demoScene) Orbit(i, n int) {
	a := 2 * math.Pi * float64(i) / float64(max(n, 1))
	pos := mgl32.Vec3{
		orbitRadius * float32(math.Sin(a)),
		orbitHeight,
		orbitRadius * float32(math.Cos(a)),
	}
	p := scene.DefaultCameraParams()
	p.Position = pos
	p.Direction = pos.Mul(-1).Normalize()
	p.Aspect = d.aspect
	d.camera.Commit(p)
}

// Release drops the scene's references.
func (d *demoScene) Release() {
	d.world.Release()
	d.renderer.Release()
	d.camera.Release()
}
