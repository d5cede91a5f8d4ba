// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/scene"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// testBackend samples a gradient: color is (screen.x, screen.y, frame, 1)
// where frame is the number of Prepare calls, so every render produces
// distinguishable pixels. A non-nil gate blocks Prepare until it is closed
// or the render is discarded.
type testBackend struct {
	prepared atomic.Int32
	gate     chan struct{}
	err      error
	panicAt  *f32.Vec2
}

func (b *testBackend) Prepare(ctx context.Context, _ backend.Scene) (backend.Sampler, error) {
	n := b.prepared.Add(1)
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return backend.SamplerFunc(func(screen f32.Vec2) backend.Sample {
		if b.panicAt != nil {
			panic("sampler failure")
		}
		s := backend.EmptySample()
		s.Color = [4]float32{screen[0], screen[1], float32(n) / 10, 1}
		s.Depth = float32(n)
		s.PrimID = uint32(n)
		s.ObjID = 100 + uint32(n)
		s.InstID = 0
		return s
	}), nil
}

// stallBackend ignores cancellation. Render number stallRender blocks,
// in Prepare or in its first sample when inSample is set, until release is
// closed. Every sample of render n has color (n, n, n, 1).
type stallBackend struct {
	stallRender int32
	inSample    bool

	renders atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStallBackend(stallRender int32, inSample bool) *stallBackend {
	return &stallBackend{
		stallRender: stallRender,
		inSample:    inSample,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *stallBackend) stall() {
	b.once.Do(func() { close(b.entered) })
	<-b.release
}

func (b *stallBackend) Prepare(_ context.Context, _ backend.Scene) (backend.Sampler, error) {
	n := b.renders.Add(1)
	stall := n == b.stallRender
	if stall && !b.inSample {
		b.stall()
	}
	return backend.SamplerFunc(func(f32.Vec2) backend.Sample {
		if stall && b.inSample {
			b.stall()
		}
		s := backend.EmptySample()
		v := float32(n)
		s.Color = [4]float32{v, v, v, 1}
		return s
	}), nil
}

// within fails the test if fn does not return in time.
func within(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not return", what)
	}
}

type testScene struct {
	dev      *anari.Device
	camera   *scene.Camera
	renderer *scene.Renderer
	world    *scene.World
}

func newTestDevice(t *testing.T, opts ...anari.DeviceOption) *anari.Device {
	t.Helper()
	opts = append([]anari.DeviceOption{anari.WithWorkers(2), anari.WithDispatchWorkers(1)}, opts...)
	dev := anari.NewDevice(opts...)
	t.Cleanup(dev.Close)
	return dev
}

func newTestScene(dev *anari.Device) *testScene {
	return &testScene{
		dev:      dev,
		camera:   scene.NewCamera(dev),
		renderer: scene.NewRenderer(dev),
		world:    scene.NewWorld(dev),
	}
}

func (s *testScene) params(size image.Point) Params {
	return Params{
		Size:     size,
		Color:    anari.DataTypeFloat32Vec4,
		Camera:   s.camera,
		Renderer: s.renderer,
		World:    s.world,
	}
}

func newTestFrame(t *testing.T, dev *anari.Device, b backend.RenderBackend) *Frame {
	t.Helper()
	f := New(dev, b)
	t.Cleanup(f.Release)
	return f
}

// render runs one render to completion.
func render(t *testing.T, f *Frame) {
	t.Helper()
	f.RenderFrame()
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func mapColor(t *testing.T, f *Frame) []float32 {
	t.Helper()
	m, ok := f.Map(ChannelColor)
	if !ok {
		t.Fatal("Map(ChannelColor) failed")
	}
	defer f.Unmap(ChannelColor)
	return slices.Clone(m.Float32)
}

// =============================================================================
// End-to-end
// =============================================================================

func TestEndToEnd(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{}
	f := newTestFrame(t, dev, b)

	p := sc.params(image.Pt(4, 2))
	p.Color = anari.DataTypeUfixed8Vec4
	f.Commit(p)

	render(t, f)
	m, ok := f.Map(ChannelColor)
	if !ok {
		t.Fatal("Map(ChannelColor) failed")
	}
	if m.Width != 4 || m.Height != 2 || len(m.Pix) != 4*2*4 {
		t.Errorf("Map() = %dx%d with %d bytes, want 4x2 with 32", m.Width, m.Height, len(m.Pix))
	}
	if m.Type != anari.DataTypeUfixed8Vec4 || m.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Map() type = %v format = %v, want UFIXED8_VEC4 RGBA8Unorm", m.Type, m.Format)
	}
	first := slices.Clone(m.Pix)
	f.Unmap(ChannelColor)

	if got := f.FrameID(); got != 1 {
		t.Errorf("FrameID() = %d, want 1", got)
	}

	render(t, f)
	if got := f.FrameID(); got != 1 {
		t.Errorf("FrameID() after unchanged RenderFrame = %d, want 1", got)
	}
	m, _ = f.Map(ChannelColor)
	if !slices.Equal(m.Pix, first) {
		t.Error("unchanged RenderFrame modified the color channel")
	}
	f.Unmap(ChannelColor)

	cam := scene.NewCamera(dev)
	defer cam.Release()
	p.Camera = cam
	f.Commit(p)
	render(t, f)
	if got := f.FrameID(); got != 2 {
		t.Errorf("FrameID() after new camera = %d, want 2", got)
	}
	if got := b.prepared.Load(); got != 2 {
		t.Errorf("backend prepared %d renders, want 2", got)
	}
}

// =============================================================================
// Staleness
// =============================================================================

func TestStaleness(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, f *Frame, sc *testScene, p *Params)
		want   bool
	}{
		{"nothing", func(*testing.T, *Frame, *testScene, *Params) {}, false},
		{"frame recommit", func(_ *testing.T, f *Frame, _ *testScene, p *Params) {
			f.Commit(*p)
		}, false},
		{"camera commit", func(_ *testing.T, _ *Frame, sc *testScene, _ *Params) {
			sc.camera.Commit(scene.DefaultCameraParams())
		}, true},
		{"renderer commit", func(_ *testing.T, _ *Frame, sc *testScene, _ *Params) {
			sc.renderer.Commit(scene.DefaultRendererParams())
		}, true},
		{"world commit", func(_ *testing.T, _ *Frame, sc *testScene, _ *Params) {
			sc.world.Commit(scene.WorldParams{})
		}, true},
		{"geometry inside world", func(t *testing.T, _ *Frame, sc *testScene, _ *Params) {
			g := sc.world.Surfaces()[0].Geometry()
			g.Commit(scene.GeometryParams{Centers: []mgl32.Vec3{{1, 2, 3}}})
		}, true},
		{"size", func(_ *testing.T, f *Frame, _ *testScene, p *Params) {
			p.Size = image.Pt(5, 5)
			f.Commit(*p)
		}, true},
		{"channel type", func(_ *testing.T, f *Frame, _ *testScene, p *Params) {
			p.Depth = anari.DataTypeFloat32
			f.Commit(*p)
		}, true},
		{"older camera object", func(t *testing.T, f *Frame, sc *testScene, p *Params) {
			// Created and committed before the current camera's commit.
			old := sc.camera
			newer := scene.NewCamera(sc.dev)
			t.Cleanup(newer.Release)
			newer.Commit(scene.DefaultCameraParams())
			p.Camera = newer
			f.Commit(*p)
			render(t, f)
			p.Camera = old
			f.Commit(*p)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newTestDevice(t)
			sc := newTestScene(dev)
			g := scene.NewGeometry(dev, scene.GeometrySphere)
			g.Commit(scene.GeometryParams{Centers: []mgl32.Vec3{{}}})
			surf := scene.NewSurface(dev)
			surf.Commit(scene.SurfaceParams{Geometry: g})
			sc.world.Commit(scene.WorldParams{Surfaces: []*scene.Surface{surf}})

			f := newTestFrame(t, dev, &testBackend{})
			p := sc.params(image.Pt(3, 3))
			f.Commit(p)
			render(t, f)

			tt.change(t, f, sc, &p)
			before := f.FrameID()
			render(t, f)

			if got := f.FrameID() > before; got != tt.want {
				t.Errorf("rendered = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameIDMonotonic(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	f := newTestFrame(t, dev, &testBackend{})
	f.Commit(sc.params(image.Pt(2, 2)))

	var last uint32
	for i := range 10 {
		if i%3 == 0 {
			sc.camera.Commit(scene.DefaultCameraParams())
		}
		render(t, f)
		id := f.FrameID()
		if id < last {
			t.Fatalf("FrameID() went from %d to %d", last, id)
		}
		last = id
	}
	if last != 4 {
		t.Errorf("FrameID() = %d after 4 changes, want 4", last)
	}
}

func TestBufferStabilityUnderNoOp(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(7, 3)))

	render(t, f)
	before := mapColor(t, f)

	for range 5 {
		render(t, f)
	}
	if after := mapColor(t, f); !slices.Equal(before, after) {
		t.Error("color channel changed without a scene change")
	}
	if b.prepared.Load() != 1 {
		t.Errorf("backend prepared %d renders, want 1", b.prepared.Load())
	}
}

// =============================================================================
// Validity
// =============================================================================

func TestInvalidFrameIsNoOp(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)

	badCam := scene.NewCamera(dev)
	defer badCam.Release()
	badCam.Commit(scene.CameraParams{})

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no world", func(p *Params) { p.World = nil }},
		{"no camera", func(p *Params) { p.Camera = nil }},
		{"no renderer", func(p *Params) { p.Renderer = nil }},
		{"invalid camera", func(p *Params) { p.Camera = badCam }},
		{"zero size", func(p *Params) { p.Size = image.Point{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &testBackend{}
			f := newTestFrame(t, dev, b)
			p := sc.params(image.Pt(2, 2))
			tt.mutate(&p)
			f.Commit(p)

			if f.IsValid() {
				t.Fatal("IsValid() = true, want false")
			}
			f.RenderFrame()
			if err := f.Wait(); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
			if f.FrameID() != 0 || b.prepared.Load() != 0 {
				t.Errorf("FrameID() = %d, prepared = %d, want no render", f.FrameID(), b.prepared.Load())
			}
			if _, ok := f.Map(ChannelColor); ok {
				t.Error("Map() on invalid frame succeeded")
			}
		})
	}
}

func TestFrameBecomesValid(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	f := newTestFrame(t, dev, &testBackend{})

	p := sc.params(image.Pt(2, 2))
	p.World = nil
	f.Commit(p)
	render(t, f)

	p.World = sc.world
	f.Commit(p)
	render(t, f)
	if f.FrameID() != 1 {
		t.Errorf("FrameID() = %d, want 1", f.FrameID())
	}
}

// =============================================================================
// Async dispatch
// =============================================================================

func TestRenderFrameWhileInFlight(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(4, 4)))

	f.RenderFrame()
	if f.Ready() || f.FrameReady(anari.NoWait) != 0 {
		t.Error("frame ready while Prepare is blocked")
	}

	sc.camera.Commit(scene.DefaultCameraParams())
	f.RenderFrame()
	if f.FrameID() != 1 {
		t.Errorf("FrameID() = %d during render, want 1", f.FrameID())
	}

	close(b.gate)
	if got := f.FrameReady(anari.Wait); got != 1 {
		t.Errorf("FrameReady(Wait) = %d, want 1", got)
	}

	// The commit during the render is picked up by the next call.
	render(t, f)
	if f.FrameID() != 2 {
		t.Errorf("FrameID() = %d, want 2", f.FrameID())
	}
}

func TestCommitDuringRenderReallocates(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)

	p := sc.params(image.Pt(4, 4))
	f.Commit(p)
	f.RenderFrame()

	p.Size = image.Pt(8, 2)
	f.Commit(p)
	close(b.gate)
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	m, ok := f.Map(ChannelColor)
	if !ok || m.Width != 8 || m.Height != 2 || len(m.Float32) != 8*2*4 {
		t.Fatalf("Map() = %dx%d len %d, want 8x2 len 64", m.Width, m.Height, len(m.Float32))
	}
	f.Unmap(ChannelColor)

	render(t, f)
	if f.FrameID() != 2 {
		t.Errorf("FrameID() = %d, want resized frame rendered again", f.FrameID())
	}
}

func TestDiscard(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(4, 4)))

	f.RenderFrame()
	f.Discard()

	if !f.Ready() {
		t.Error("Ready() = false after Discard")
	}
	if err := f.Wait(); err != nil {
		t.Errorf("Wait() after Discard error = %v, want nil", err)
	}

	close(b.gate)
	render(t, f)
	if f.FrameID() != 2 {
		t.Errorf("FrameID() = %d, want discarded render to be redone", f.FrameID())
	}
	got := mapColor(t, f)
	if got[2] != 0.2 {
		t.Errorf("color blue = %v, want pixels of the second render", got[2])
	}
}

func TestDiscardDetachesBuffers(t *testing.T) {
	dev := newTestDevice(t, anari.WithWorkers(1))
	sc := newTestScene(dev)
	b := newStallBackend(2, true)
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	render(t, f)
	sc.camera.Commit(scene.DefaultCameraParams())

	// The second render stalls inside its first tile and ignores the
	// cancellation, so its tile finishes after Discard returns.
	f.RenderFrame()
	<-b.entered
	f.Discard()

	if !f.Ready() {
		t.Fatal("Ready() = false after Discard")
	}
	m, ok := f.Map(ChannelColor)
	if !ok {
		t.Fatal("Map(ChannelColor) failed after Discard")
	}
	before := slices.Clone(m.Float32)
	f.Unmap(ChannelColor)

	close(b.release)
	// Closing the device joins the abandoned tile.
	within(t, "Device.Close", dev.Close)

	if !slices.Equal(m.Float32, before) {
		t.Errorf("mapped color changed after Discard: before=%v after=%v", before, m.Float32)
	}
	for _, v := range m.Float32 {
		if v == 2 {
			t.Fatalf("mapped color = %v, holds pixels of the discarded render", m.Float32)
		}
	}
}

func TestRenderAfterDiscardWaitsForPredecessor(t *testing.T) {
	dev := newTestDevice(t, anari.WithDispatchWorkers(2))
	sc := newTestScene(dev)
	b := newStallBackend(1, false)
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	f.RenderFrame()
	<-b.entered
	f.Discard()

	// The successor must not park the second dispatcher while the
	// discarded render holds the first; another frame still renders.
	within(t, "RenderFrame after Discard", f.RenderFrame)
	f.mu.Lock()
	state := f.task.status()
	f.mu.Unlock()
	if state != taskIdle {
		t.Errorf("successor state = %d before its predecessor completed, want idle", state)
	}

	other := newTestFrame(t, dev, &testBackend{})
	other.Commit(sc.params(image.Pt(2, 2)))
	within(t, "render on another frame", func() {
		other.RenderFrame()
		if err := other.Wait(); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})

	close(b.release)
	within(t, "Wait", func() {
		if err := f.Wait(); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})
	if got := mapColor(t, f); got[0] != 2 {
		t.Errorf("color = %v, want pixels of the second render", got[0])
	}
}

func TestRenderFrameOnSaturatedDevice(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := newStallBackend(1, false)
	a := newTestFrame(t, dev, b)
	a.Commit(sc.params(image.Pt(2, 2)))

	a.RenderFrame()
	<-b.entered

	// Many more renders than the dispatcher queue holds.
	others := make([]*Frame, 40)
	within(t, "RenderFrame on a saturated device", func() {
		for i := range others {
			others[i] = New(dev, &testBackend{})
			others[i].Commit(sc.params(image.Pt(2, 2)))
			others[i].RenderFrame()
		}
	})
	t.Cleanup(func() {
		for _, f := range others {
			f.Release()
		}
	})

	a.Discard()
	within(t, "RenderFrame after Discard", a.RenderFrame)
	within(t, "Ready", func() { a.Ready() })

	close(b.release)
	within(t, "Wait on every frame", func() {
		for _, f := range append(others, a) {
			if err := f.Wait(); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		}
	})
	for i, f := range others {
		if f.FrameID() != 1 || !f.Ready() {
			t.Errorf("frame %d: FrameID() = %d, Ready() = %v, want 1, true", i, f.FrameID(), f.Ready())
		}
	}
}

func TestDiscardIdle(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	f := newTestFrame(t, dev, &testBackend{})
	f.Commit(sc.params(image.Pt(2, 2)))

	f.Discard()
	render(t, f)
	f.Discard()

	render(t, f)
	if f.FrameID() != 1 {
		t.Errorf("FrameID() = %d, Discard of a completed render must not invalidate it", f.FrameID())
	}
}

// =============================================================================
// Failures
// =============================================================================

func TestPrepareError(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	boom := errors.New("out of memory")
	b := &testBackend{err: boom}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	f.RenderFrame()
	err := f.Wait()
	if !errors.Is(err, anari.ErrRenderFailed) || !errors.Is(err, boom) {
		t.Fatalf("Wait() error = %v, want ErrRenderFailed wrapping %v", err, boom)
	}

	b.err = nil
	render(t, f)
	if f.FrameID() != 2 {
		t.Errorf("FrameID() = %d, want failed render retried", f.FrameID())
	}
}

func TestSamplerPanic(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	f := newTestFrame(t, dev, &testBackend{panicAt: &f32.Vec2{}})
	f.Commit(sc.params(image.Pt(100, 100)))

	f.RenderFrame()
	if err := f.Wait(); !errors.Is(err, anari.ErrRenderFailed) {
		t.Errorf("Wait() error = %v, want ErrRenderFailed", err)
	}
}

func TestPreparePanic(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	var fail atomic.Bool
	fail.Store(true)
	b := backend.Func(func(ctx context.Context, s backend.Scene) (backend.Sampler, error) {
		if fail.Load() {
			panic("prepare failure")
		}
		return (&testBackend{}).Prepare(ctx, s)
	})
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	f.RenderFrame()
	err := f.Wait()
	if !errors.Is(err, anari.ErrRenderFailed) {
		t.Fatalf("Wait() error = %v, want ErrRenderFailed", err)
	}

	// The dispatcher survived and the failed render is retried.
	fail.Store(false)
	render(t, f)
	if f.FrameID() != 2 {
		t.Errorf("FrameID() = %d, want 2", f.FrameID())
	}
}

func TestDeviceClosed(t *testing.T) {
	dev := anari.NewDevice(anari.WithWorkers(1), anari.WithDispatchWorkers(1))
	sc := newTestScene(dev)
	f := New(dev, &testBackend{})
	defer f.Release()
	f.Commit(sc.params(image.Pt(2, 2)))

	dev.Close()
	f.RenderFrame()
	if err := f.Wait(); !errors.Is(err, anari.ErrDeviceClosed) {
		t.Errorf("Wait() error = %v, want ErrDeviceClosed", err)
	}
}

// =============================================================================
// Properties / lifetime
// =============================================================================

func TestGetProperty(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(16, 16)))
	f.RenderFrame()
	close(b.gate)

	duration := float32(-1)
	if !f.GetProperty(PropertyDuration, anari.DataTypeFloat32, &duration, anari.Wait) {
		t.Fatal("GetProperty(duration) = false")
	}
	if duration < 0 {
		t.Errorf("duration = %v, want >= 0", duration)
	}

	var id uint32
	if !f.GetProperty(PropertyFrameID, anari.DataTypeUint32, &id, anari.NoWait) || id != 1 {
		t.Errorf("GetProperty(frameID) = %d, want 1", id)
	}

	tests := []struct {
		name string
		typ  anari.DataType
		out  any
	}{
		{"unknown", anari.DataTypeFloat32, new(float32)},
		{PropertyDuration, anari.DataTypeUint32, new(uint32)},
		{PropertyDuration, anari.DataTypeFloat32, new(float64)},
		{PropertyFrameID, anari.DataTypeUint32, nil},
	}
	for _, tt := range tests {
		if f.GetProperty(tt.name, tt.typ, tt.out, anari.NoWait) {
			t.Errorf("GetProperty(%q, %v, %T) = true, want false", tt.name, tt.typ, tt.out)
		}
	}

	untouched := float32(42)
	f.GetProperty("unknown", anari.DataTypeFloat32, &untouched, anari.NoWait)
	if untouched != 42 {
		t.Errorf("unsupported GetProperty wrote %v", untouched)
	}
}

func TestReleaseDropsShares(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := New(dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	if sc.camera.UseCount() != 2 {
		t.Fatalf("camera UseCount() = %d after Commit, want 2", sc.camera.UseCount())
	}

	f.RenderFrame()
	go close(b.gate)
	f.Release()

	for _, o := range []interface{ UseCount() int64 }{sc.camera, sc.renderer, sc.world} {
		if o.UseCount() != 1 {
			t.Errorf("%T UseCount() = %d after frame release, want 1", o, o.UseCount())
		}
	}
}

func TestConcurrentRenderAndPoll(t *testing.T) {
	dev := newTestDevice(t, anari.WithDispatchWorkers(2))
	sc := newTestScene(dev)
	f := newTestFrame(t, dev, &testBackend{})
	f.Commit(sc.params(image.Pt(32, 32)))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				f.RenderFrame()
				f.Ready()
				f.FrameReady(anari.NoWait)
			}
		}()
	}
	for range 20 {
		sc.camera.Commit(scene.DefaultCameraParams())
	}
	wg.Wait()

	if err := f.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if f.FrameID() == 0 {
		t.Error("FrameID() = 0, want at least one render")
	}
}
