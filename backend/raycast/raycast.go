// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raycast is a CPU reference backend. It casts one primary ray per
// sample against the world's sphere geometries and marches the world's
// volumes at a fixed step, compositing front to back.
//
// Importing the package registers the backend under Name:
//
//	import _ "github.com/gogpu/anari/backend/raycast"
//
//	b, err := backend.New(raycast.Name, dev)
package raycast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/colortable"
	"github.com/gogpu/anari/internal/cache"
	"github.com/gogpu/anari/scene"
	"golang.org/x/image/math/f32"
)

// Name is the registry name of the backend.
const Name = "raycast"

// lutCacheSize bounds the number of baked transfer functions kept across
// renders.
const lutCacheSize = 64

// hitEpsilon keeps rays from re-hitting the surface they start on.
const hitEpsilon = 1e-4

// opaqueThreshold stops volume marching once a ray is nearly opaque.
const opaqueThreshold = 0.99

// ErrUnsupportedObject is returned by Prepare when the scene holds objects
// this backend cannot render.
var ErrUnsupportedObject = errors.New("raycast: unsupported object")

func init() {
	backend.Register(Name, func(dev *anari.Device) backend.RenderBackend {
		return New(dev)
	})
}

type lutKey struct {
	volume *scene.Volume
	ts     anari.TimeStamp
}

// Backend renders scene package objects.
// Backend is safe for concurrent use by several frames.
type Backend struct {
	dev  *anari.Device
	luts *cache.Cache[lutKey, *colortable.LUT]
}

// New creates a ray casting backend for dev.
func New(dev *anari.Device) *Backend {
	return &Backend{
		dev:  dev,
		luts: cache.New[lutKey, *colortable.LUT](lutCacheSize),
	}
}

// Prepare flattens the committed world into a sampler. The scene must hold
// a *scene.World, *scene.Camera and *scene.Renderer.
func (b *Backend) Prepare(ctx context.Context, sc backend.Scene) (backend.Sampler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	world, ok := sc.World.(*scene.World)
	if !ok {
		return nil, fmt.Errorf("%w: world %T", ErrUnsupportedObject, sc.World)
	}
	cam, ok := sc.Camera.(*scene.Camera)
	if !ok {
		return nil, fmt.Errorf("%w: camera %T", ErrUnsupportedObject, sc.Camera)
	}
	ren, ok := sc.Renderer.(*scene.Renderer)
	if !ok {
		return nil, fmt.Errorf("%w: renderer %T", ErrUnsupportedObject, sc.Renderer)
	}

	r := &render{}
	r.setCamera(cam.Params())

	rp := ren.Params()
	r.background = rp.Background
	r.ambient = clamp01(rp.AmbientRadiance)
	r.light = rp.LightDirection
	r.headlight = r.light.Len() == 0
	r.step = 1 / rp.VolumeSamplingRate

	for _, s := range world.Surfaces() {
		g := s.Geometry()
		if g == nil || !g.IsValid() {
			continue
		}
		gp := g.Params()
		color, id := s.Color(), s.ID()
		for i, c := range gp.Centers {
			r.spheres = append(r.spheres, sphere{
				center: c,
				radius: gp.RadiusOf(i),
				primID: gp.PrimitiveID(i),
				objID:  id,
				color:  color,
			})
		}
	}

	live := make(map[*scene.Volume]anari.TimeStamp, len(world.Volumes()))
	for _, v := range world.Volumes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := v.Field()
		if f == nil || !f.IsValid() {
			continue
		}

		ts := v.LastChanged()
		live[v] = ts
		lut := b.luts.GetOrCreate(lutKey{volume: v, ts: ts}, func() *colortable.LUT {
			return v.Table().Bake(colortable.DefaultSamples)
		})

		fp := f.Params()
		lo, hi := fp.Bounds()
		r.volumes = append(r.volumes, volume{
			field:        fp,
			lut:          lut,
			lo:           lo,
			hi:           hi,
			unitDistance: v.UnitDistance(),
			id:           v.ID(),
		})
	}

	// Tables baked for earlier commits of these volumes are never looked up
	// again.
	b.luts.DeleteFunc(func(k lutKey) bool {
		ts, ok := live[k.volume]
		return ok && ts != k.ts
	})

	anari.Logger().Debug("raycast: prepared",
		"spheres", len(r.spheres),
		"volumes", len(r.volumes))

	return r, nil
}

type sphere struct {
	center mgl32.Vec3
	radius float32
	primID uint32
	objID  uint32
	color  [4]float32
}

// intersect returns the nearest ray parameter in front of the origin.
func (s *sphere) intersect(org, dir mgl32.Vec3) (float32, bool) {
	oc := org.Sub(s.center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.radius*s.radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < hitEpsilon {
		t = -b + sq
	}
	if t < hitEpsilon {
		return 0, false
	}
	return t, true
}

type volume struct {
	field        scene.FieldParams
	lut          *colortable.LUT
	lo, hi       mgl32.Vec3
	unitDistance float32
	id           uint32
}

// render is the sampler of one prepared render. It is immutable.
type render struct {
	eye, forward, right, up mgl32.Vec3
	tanHalfY, aspect        float32

	background [4]float32
	ambient    float32
	light      mgl32.Vec3
	headlight  bool
	step       float32

	spheres []sphere
	volumes []volume
}

func (r *render) setCamera(p scene.CameraParams) {
	r.eye = p.Position
	r.forward = p.Direction.Normalize()
	r.right = r.forward.Cross(p.Up).Normalize()
	r.up = r.right.Cross(r.forward)
	r.tanHalfY = float32(math.Tan(float64(p.FovY) / 2))
	r.aspect = p.Aspect
}

func (r *render) rayDir(screen f32.Vec2) mgl32.Vec3 {
	x := (screen[0]*2 - 1) * r.tanHalfY * r.aspect
	y := (screen[1]*2 - 1) * r.tanHalfY
	return r.forward.Add(r.right.Mul(x)).Add(r.up.Mul(y)).Normalize()
}

// Sample casts the primary ray through screen. Depth and IDs come from the
// first visible contribution along the ray. The world is rendered as a
// single instance with ID 0.
func (r *render) Sample(screen f32.Vec2) backend.Sample {
	out := backend.EmptySample()
	dir := r.rayDir(screen)

	tHit := float32(math.Inf(1))
	hit := -1
	for i := range r.spheres {
		if t, ok := r.spheres[i].intersect(r.eye, dir); ok && t < tHit {
			tHit, hit = t, i
		}
	}

	// premultiplied accumulation
	var acc [4]float32
	depthSet := false

	for _, seg := range r.volumeSegments(dir, tHit) {
		t, ok := r.march(seg, dir, &acc)
		if ok && !depthSet {
			out.Depth = t
			out.ObjID = seg.vol.id
			out.InstID = 0
			depthSet = true
		}
		if acc[3] >= opaqueThreshold {
			break
		}
	}

	if hit >= 0 {
		s := &r.spheres[hit]
		if !depthSet {
			out.Depth = tHit
			out.PrimID = s.primID
			out.ObjID = s.objID
			out.InstID = 0
		}

		pos := r.eye.Add(dir.Mul(tHit))
		n := pos.Sub(s.center).Normalize()
		l := r.light
		if r.headlight {
			l = dir.Mul(-1)
		}
		shade := r.ambient + (1-r.ambient)*max(n.Dot(l), 0)

		w := (1 - acc[3]) * s.color[3]
		for c := range 3 {
			acc[c] += w * s.color[c] * shade
		}
		acc[3] += w
	}

	bg := r.background
	rest := 1 - acc[3]
	for c := range 3 {
		out.Color[c] = acc[c] + rest*bg[c]*bg[3]
	}
	out.Color[3] = acc[3] + rest*bg[3]
	return out
}

type segment struct {
	vol    *volume
	t0, t1 float32
}

// volumeSegments returns the ray intervals inside each volume, clipped to
// tMax and ordered by entry distance.
func (r *render) volumeSegments(dir mgl32.Vec3, tMax float32) []segment {
	if len(r.volumes) == 0 {
		return nil
	}
	segs := make([]segment, 0, len(r.volumes))
	for i := range r.volumes {
		v := &r.volumes[i]
		t0, t1, ok := intersectBox(r.eye, dir, v.lo, v.hi)
		if !ok {
			continue
		}
		t0 = max(t0, 0)
		t1 = min(t1, tMax)
		if t0 < t1 {
			segs = append(segs, segment{vol: v, t0: t0, t1: t1})
		}
	}
	slices.SortFunc(segs, func(a, b segment) int {
		switch {
		case a.t0 < b.t0:
			return -1
		case a.t0 > b.t0:
			return 1
		}
		return 0
	})
	return segs
}

// march composites one volume segment into acc and returns the distance of
// the first sample with non-zero opacity.
func (r *render) march(seg segment, dir mgl32.Vec3, acc *[4]float32) (float32, bool) {
	v := seg.vol
	exponent := float64(r.step / v.unitDistance)

	var first float32
	found := false
	for t := seg.t0 + r.step/2; t < seg.t1 && acc[3] < opaqueThreshold; t += r.step {
		value, ok := v.field.Sample(r.eye.Add(dir.Mul(t)))
		if !ok {
			continue
		}
		c := v.lut.Lookup(value)
		a := 1 - float32(math.Pow(float64(1-clamp01(c[3])), exponent))
		if a <= 0 {
			continue
		}
		if !found {
			first, found = t, true
		}
		w := (1 - acc[3]) * a
		for i := range 3 {
			acc[i] += w * c[i]
		}
		acc[3] += w
	}
	return first, found
}

// intersectBox is the slab test against an axis-aligned box.
func intersectBox(org, dir, lo, hi mgl32.Vec3) (t0, t1 float32, ok bool) {
	t0, t1 = float32(math.Inf(-1)), float32(math.Inf(1))
	for i := range 3 {
		if dir[i] == 0 {
			if org[i] < lo[i] || org[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		a, b := (lo[i]-org[i])*inv, (hi[i]-org[i])*inv
		if a > b {
			a, b = b, a
		}
		t0 = max(t0, a)
		t1 = min(t1, b)
	}
	return t0, t1, t0 <= t1 && t1 >= 0
}

func clamp01(x float32) float32 {
	return min(max(x, 0), 1)
}
