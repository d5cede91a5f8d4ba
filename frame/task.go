// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/internal/parallel"
	"golang.org/x/image/math/f32"
)

// taskState is the lifecycle of a render task.
type taskState int32

const (
	taskIdle taskState = iota
	taskRunning
	taskCompleted
)

// errDiscarded is the task error of a discarded render. It never reaches
// Wait: a discarded task is detached from its frame.
var errDiscarded = errors.New("frame: render discarded")

// renderJob is everything a task reads. It is captured at dispatch and not
// shared with the frame afterwards, except for the buffers, which only the
// task writes until it completes or the frame discards it.
type renderJob struct {
	dev     *anari.Device
	backend backend.RenderBackend
	scene   backend.Scene
	buffers *channelBuffers
	invSize f32.Vec2
	frameID uint32
}

// renderTask is one asynchronous render. Its result is published by
// closing done; err and duration are written before that.
type renderTask struct {
	state atomic.Int32
	done  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// buffers is the storage the task writes into.
	buffers *channelBuffers

	// next starts the successor of a discarded task once this one has
	// completed. Guarded by mu together with the completed flag.
	mu       sync.Mutex
	finished bool
	next     func()

	err      error
	duration time.Duration
}

func newRenderTask(buffers *channelBuffers) *renderTask {
	ctx, cancel := context.WithCancel(context.Background())
	return &renderTask{
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		buffers: buffers,
	}
}

func (t *renderTask) status() taskState {
	return taskState(t.state.Load())
}

// completed reports whether the task has finished without blocking.
func (t *renderTask) completed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// wait blocks until the task has finished and returns its error.
func (t *renderTask) wait() error {
	<-t.done
	return t.err
}

// then runs start once t has completed: right away if it already has,
// otherwise on the goroutine that completes t. Only one successor is kept.
func (t *renderTask) then(start func()) {
	t.mu.Lock()
	if !t.finished {
		t.next = start
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	start()
}

// run executes the job and then calls finish with the task result. finish
// runs before done is closed, so anyone observing completion also observes
// its effects.
func (t *renderTask) run(job *renderJob, finish func(*renderTask)) {
	if t.ctx.Err() != nil {
		// Discarded before it started.
		t.fail(errDiscarded, finish)
		return
	}

	t.state.Store(int32(taskRunning))
	start := time.Now()
	t.err = t.render(job)
	t.duration = time.Since(start)

	if t.err == nil && t.ctx.Err() != nil {
		t.err = errDiscarded
	}
	t.complete(finish)
}

// fail completes a task that never ran.
func (t *renderTask) fail(err error, finish func(*renderTask)) {
	t.err = err
	t.complete(finish)
}

func (t *renderTask) complete(finish func(*renderTask)) {
	t.cancel()
	finish(t)
	t.state.Store(int32(taskCompleted))

	t.mu.Lock()
	t.finished = true
	next := t.next
	t.next = nil
	t.mu.Unlock()

	close(t.done)
	if next != nil {
		next()
	}
}

// render prepares the backend and samples every pixel, one tile per work
// item. Discarding the task cancels ctx; tiles not yet started are then
// skipped. A panic in Prepare fails the render like an error does; tile
// panics are recovered on the tile workers.
func (t *renderTask) render(job *renderJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: prepare panic: %v", anari.ErrRenderFailed, r)
		}
	}()

	sampler, err := job.backend.Prepare(t.ctx, job.scene)
	if err != nil {
		if t.ctx.Err() != nil {
			return errDiscarded
		}
		return fmt.Errorf("%w: prepare: %w", anari.ErrRenderFailed, err)
	}

	var (
		panicOnce sync.Once
		panicErr  error
	)

	tiles := parallel.Tiles(job.buffers.size.X, job.buffers.size.Y)
	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			if t.ctx.Err() != nil {
				return
			}
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() {
						panicErr = fmt.Errorf("%w: sampler panic: %v", anari.ErrRenderFailed, r)
					})
					t.cancel()
				}
			}()
			job.renderTile(sampler, tile)
		}
	}
	job.dev.ExecuteAll(work)

	return panicErr
}

// renderTile samples every pixel of one tile.
func (job *renderJob) renderTile(sampler backend.Sampler, tile parallel.Tile) {
	width := job.buffers.size.X
	for y := tile.Y0; y < tile.Y1; y++ {
		row := y * width
		for x := tile.X0; x < tile.X1; x++ {
			screen := screenFromPixel(f32.Vec2{float32(x), float32(y)}, job.invSize)
			s := sampler.Sample(screen)
			job.buffers.write(row+x, &s)
		}
	}
}

// screenFromPixel maps a pixel coordinate, plus any sub-pixel offset the
// caller added, to screen space using the pixel-center convention.
func screenFromPixel(p, invSize f32.Vec2) f32.Vec2 {
	return f32.Vec2{(p[0] + 0.5) * invSize[0], (p[1] + 0.5) * invSize[1]}
}
