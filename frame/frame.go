// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"image"
	"sync"
	"time"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/object"
	"golang.org/x/image/math/f32"
)

// Params is the committed state of a frame.
type Params struct {
	// Size is the resolution in pixels.
	Size image.Point

	// Requested channel representations. DataTypeUnknown leaves a channel
	// unrequested. Color accepts the color types, Depth FLOAT32 and the ID
	// channels UINT32.
	Color       anari.DataType
	Depth       anari.DataType
	PrimitiveID anari.DataType
	ObjectID    anari.DataType
	InstanceID  anari.DataType

	// Objects the frame renders. The frame holds a share of each.
	Camera   object.Ref
	Renderer object.Ref
	World    object.Ref
}

// Frame renders a committed world through a camera into typed channel
// buffers. Rendering is asynchronous: RenderFrame dispatches a task to the
// device and returns, and Ready, Wait and FrameReady observe the task.
//
// Frame is safe for concurrent use, but it expects a single consumer: Map
// and Unmap must not be called while a render is running.
type Frame struct {
	object.Base

	backend backend.RenderBackend

	mu sync.Mutex

	size    image.Point
	invSize f32.Vec2
	buffers *channelBuffers

	camera   object.Handle[object.Ref]
	renderer object.Handle[object.Ref]
	world    object.Handle[object.Ref]

	// Dependent timestamps observed at the last dispatch.
	cameraLastChanged   anari.TimeStamp
	rendererLastChanged anari.TimeStamp
	worldLastChanged    anari.TimeStamp
	renderedSize        image.Point

	// dependentsSwapped is set when a commit replaces the camera, renderer
	// or world with a different object.
	dependentsSwapped bool

	// frameLastRendered is zero until a render into the current buffers
	// completes.
	frameLastRendered anari.TimeStamp

	frameID  uint32
	duration time.Duration

	task      *renderTask
	discarded bool
}

// New creates an uncommitted frame that renders with b. The frame is
// invalid until a commit supplies a camera, renderer and world.
func New(dev *anari.Device, b backend.RenderBackend) *Frame {
	f := &Frame{backend: b}
	f.Init(dev, f.free)
	f.buffers = newChannelBuffers(image.Point{}, channelTypes{})
	return f
}

// Commit applies p. It never renders; staleness is decided by the next
// RenderFrame.
//
// Channel buffers are reallocated only when the size or a channel type
// changes. A render still running keeps writing into the buffers it was
// dispatched with.
func (f *Frame) Commit(p Params) {
	dev := f.Device()
	if p.Size.X <= 0 || p.Size.Y <= 0 {
		dev.ReportMessage(anari.SeverityWarning, "frame: invalid size %v", p.Size)
		p.Size = image.Point{}
	}
	types := negotiate(dev, &p)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.buffers.matches(p.Size, types) {
		if f.buffers == nil || f.buffers.types.color != types.color {
			checkSurfaceFormat(dev, types.color)
		}
		f.buffers = newChannelBuffers(p.Size, types)
		f.frameLastRendered = 0
	}
	f.size = p.Size
	if p.Size.X > 0 && p.Size.Y > 0 {
		f.invSize = f32.Vec2{1 / float32(p.Size.X), 1 / float32(p.Size.Y)}
	} else {
		f.invSize = f32.Vec2{}
	}

	if setDependent(&f.camera, p.Camera) {
		f.dependentsSwapped = true
	}
	if setDependent(&f.renderer, p.Renderer) {
		f.dependentsSwapped = true
	}
	if setDependent(&f.world, p.World) {
		f.dependentsSwapped = true
	}

	f.MarkChanged()

	if !f.validLocked() {
		dev.ReportMessage(anari.SeverityWarning,
			"frame: incomplete (camera=%t renderer=%t world=%t size=%v)",
			f.camera.Valid(), f.renderer.Valid(), f.world.Valid(), f.size)
	}
}

// setDependent points h at obj and reports whether the object changed.
// A different object makes the frame stale even if its last commit is
// older than the previous object's.
func setDependent(h *object.Handle[object.Ref], obj object.Ref) bool {
	old, had := h.Get()
	if obj == nil {
		h.Clear()
		return had
	}
	h.Set(obj)
	return !had || old != obj
}

// IsValid reports whether the frame has a positive size and valid camera,
// renderer and world.
func (f *Frame) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validLocked()
}

func (f *Frame) validLocked() bool {
	return f.size.X > 0 && f.size.Y > 0 &&
		f.camera.Valid() && f.renderer.Valid() && f.world.Valid()
}

// staleLocked reports whether the current buffers do not show the current
// scene.
func (f *Frame) staleLocked() bool {
	return f.frameLastRendered == 0 ||
		f.dependentsSwapped ||
		f.size != f.renderedSize ||
		f.camera.LastChanged() > f.cameraLastChanged ||
		f.renderer.LastChanged() > f.rendererLastChanged ||
		f.world.LastChanged() > f.worldLastChanged
}

// inFlightLocked reports whether a render owned by the frame is running.
func (f *Frame) inFlightLocked() bool {
	return f.task != nil && !f.discarded && !f.task.completed()
}

// RenderFrame starts rendering the committed scene if it changed since the
// last render. It never blocks: the render runs on the device, and
// RenderFrame returns while a previous render is still in flight or when
// the frame is invalid.
func (f *Frame) RenderFrame() {
	f.mu.Lock()
	t, job, prev := f.prepareRenderLocked()
	f.mu.Unlock()
	if t == nil {
		return
	}

	finish := func(t *renderTask) {
		job.scene.Camera.Release()
		job.scene.Renderer.Release()
		job.scene.World.Release()
		f.finish(t, job)
	}
	start := func() {
		if err := job.dev.Dispatch(func() { t.run(job, finish) }); err != nil {
			t.fail(err, finish)
		}
	}

	// A discarded predecessor may still be sampling; its successor starts
	// when it completes instead of occupying a dispatcher meanwhile.
	if prev != nil {
		prev.then(start)
		return
	}
	start()
}

// prepareRenderLocked captures the baseline of a new render and records its
// task. It returns a nil task when nothing needs rendering.
func (f *Frame) prepareRenderLocked() (*renderTask, *renderJob, *renderTask) {
	if f.inFlightLocked() {
		return nil, nil, nil
	}
	if !f.validLocked() {
		anari.Logger().Debug("frame: skipping render of incomplete frame")
		return nil, nil, nil
	}
	if !f.staleLocked() {
		return nil, nil, nil
	}

	cam, _ := f.camera.Get()
	ren, _ := f.renderer.Get()
	world, _ := f.world.Get()

	f.cameraLastChanged = cam.LastChanged()
	f.rendererLastChanged = ren.LastChanged()
	f.worldLastChanged = world.LastChanged()
	f.renderedSize = f.size
	f.dependentsSwapped = false
	f.frameID++

	// The task holds its own shares so a commit during the render cannot
	// free what it samples.
	for _, o := range []object.Ref{cam, ren, world} {
		o.Retain()
	}
	job := &renderJob{
		dev:     f.Device(),
		backend: f.backend,
		scene:   backend.Scene{World: world, Camera: cam, Renderer: ren},
		buffers: f.buffers,
		invSize: f.invSize,
		frameID: f.frameID,
	}

	var prev *renderTask
	if f.task != nil && !f.task.completed() {
		prev = f.task
	}
	t := newRenderTask(f.buffers)
	f.task = t
	f.discarded = false
	return t, job, prev
}

// finish records the result of a task. Results of discarded or superseded
// tasks are dropped.
func (f *Frame) finish(t *renderTask, job *renderJob) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t != f.task || f.discarded {
		return
	}
	if t.err != nil {
		f.frameLastRendered = 0
		f.Device().ReportMessage(anari.SeverityError, "frame: render %d failed: %v", job.frameID, t.err)
		return
	}
	f.duration = t.duration
	if job.buffers == f.buffers {
		f.frameLastRendered = f.Device().NewTimeStamp()
	}
	anari.Logger().Debug("frame: rendered",
		"frameID", job.frameID,
		"size", job.buffers.size,
		"duration", t.duration)
}

// FrameID returns the number of renders dispatched so far.
func (f *Frame) FrameID() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frameID
}

// Duration returns the wall-clock time of the last completed render.
func (f *Frame) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

// ScreenFromPixel maps a pixel coordinate to screen space [0, 1]^2 using
// the pixel-center convention. p may carry a sub-pixel offset.
func (f *Frame) ScreenFromPixel(p f32.Vec2) f32.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return screenFromPixel(p, f.invSize)
}

// Ready reports whether no render is in flight.
func (f *Frame) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.inFlightLocked()
}

// Wait blocks until the in-flight render completes and returns its error.
// Errors wrap anari.ErrRenderFailed, or anari.ErrDeviceClosed when the
// device no longer accepted the render. Wait returns nil immediately when
// nothing is in flight.
func (f *Frame) Wait() error {
	f.mu.Lock()
	t := f.task
	if t == nil || f.discarded {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()
	return t.wait()
}

// FrameReady returns 1 if the last render is complete and 0 otherwise.
// With anari.Wait it blocks until the render completes first.
func (f *Frame) FrameReady(m anari.WaitMask) int {
	if m == anari.Wait {
		_ = f.Wait()
	}
	if f.Ready() {
		return 1
	}
	return 0
}

// Map returns a view of a channel of the last completed render. It returns
// false when the channel was not requested at the last commit or the frame
// is invalid.
//
// The caller must make sure no render is running, with Wait or by polling
// Ready, and call Unmap when done with the view.
func (f *Frame) Map(name ChannelName) (MappedChannel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.assertNotRunningLocked("Map")
	if !f.validLocked() {
		return MappedChannel{}, false
	}
	return f.buffers.mapped(name)
}

// Unmap ends the use of a view returned by Map. The buffer is not changed.
func (f *Frame) Unmap(name ChannelName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assertNotRunningLocked("Unmap")
}

func (f *Frame) assertNotRunningLocked(op string) {
	if f.inFlightLocked() {
		assertNotRunning(f.Device(), op)
	}
}

// Discard abandons the in-flight render without blocking. The render stops
// sampling at the next tile boundary and the frame forgets it: Ready
// reports true, Wait returns immediately, and the next RenderFrame renders
// again.
//
// Tiles already being sampled keep writing into the storage the render was
// given, so the frame moves to fresh, empty buffers of the same layout.
func (f *Frame) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.task == nil || f.discarded || f.task.completed() {
		return
	}
	f.task.cancel()
	f.discarded = true
	f.frameLastRendered = 0
	if f.task.buffers == f.buffers {
		f.buffers = newChannelBuffers(f.buffers.size, f.buffers.types)
	}
	f.Device().ReportMessage(anari.SeverityDebug, "frame: render %d discarded", f.frameID)
}

// Property names readable with GetProperty.
const (
	PropertyDuration = "duration"
	PropertyFrameID  = "frameID"
)

// GetProperty stores a typed property in out and reports whether name and
// typ identify a supported property. With anari.Wait it first waits for the
// in-flight render. Unsupported requests leave out unchanged.
//
//	duration  FLOAT32  *float32  seconds taken by the last completed render
//	frameID   UINT32   *uint32   number of renders dispatched
func (f *Frame) GetProperty(name string, typ anari.DataType, out any, flags anari.WaitMask) bool {
	if flags == anari.Wait {
		_ = f.Wait()
	}

	switch {
	case name == PropertyDuration && typ == anari.DataTypeFloat32:
		p, ok := out.(*float32)
		if !ok || p == nil {
			return false
		}
		*p = float32(f.Duration().Seconds())
		return true
	case name == PropertyFrameID && typ == anari.DataTypeUint32:
		p, ok := out.(*uint32)
		if !ok || p == nil {
			return false
		}
		*p = f.FrameID()
		return true
	}
	return false
}

// free joins the last task and drops the frame's shares. Tasks start only
// after their discarded predecessor has completed, so the last task
// completes last.
func (f *Frame) free() {
	f.mu.Lock()
	t := f.task
	f.mu.Unlock()

	if t != nil {
		_ = t.wait()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.camera.Clear()
	f.renderer.Clear()
	f.world.Clear()
	f.buffers = newChannelBuffers(image.Point{}, channelTypes{})
}
