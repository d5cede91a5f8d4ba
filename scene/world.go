// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/object"
)

// WorldParams lists the contents of a world.
type WorldParams struct {
	Surfaces []*Surface
	Volumes  []*Volume
}

type worldState struct {
	surfaces []*Surface
	volumes  []*Volume
}

// World is a committed collection of surfaces and volumes. An empty world
// is valid and renders as background.
type World struct {
	object.Base

	mu       sync.Mutex
	surfaces []object.Handle[*Surface]
	volumes  []object.Handle[*Volume]

	state atomic.Pointer[worldState]
}

// NewWorld creates an empty world.
func NewWorld(dev *anari.Device) *World {
	w := &World{}
	w.Init(dev, w.free)
	w.state.Store(&worldState{})
	return w
}

// Commit takes shares of the listed objects, releases the previous ones
// and publishes the new contents. Nil entries and invalid objects are
// reported and skipped.
func (w *World) Commit(p WorldParams) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := &worldState{}
	surfaces := make([]object.Handle[*Surface], 0, len(p.Surfaces))
	for i, s := range p.Surfaces {
		if s == nil || !s.IsValid() {
			w.Device().ReportMessage(anari.SeverityWarning, "world: skipping invalid surface %d", i)
			continue
		}
		surfaces = append(surfaces, object.NewHandle(s))
		st.surfaces = append(st.surfaces, s)
	}
	volumes := make([]object.Handle[*Volume], 0, len(p.Volumes))
	for i, v := range p.Volumes {
		if v == nil || !v.IsValid() {
			w.Device().ReportMessage(anari.SeverityWarning, "world: skipping invalid volume %d", i)
			continue
		}
		volumes = append(volumes, object.NewHandle(v))
		st.volumes = append(st.volumes, v)
	}

	w.releaseContents()
	w.surfaces, w.volumes = surfaces, volumes

	w.state.Store(st)
	w.MarkChanged()
}

// Surfaces returns the committed surfaces. The slice must not be modified.
func (w *World) Surfaces() []*Surface {
	return w.state.Load().surfaces
}

// Volumes returns the committed volumes. The slice must not be modified.
func (w *World) Volumes() []*Volume {
	return w.state.Load().volumes
}

// IsValid always returns true.
func (w *World) IsValid() bool {
	return true
}

// LastChanged returns the newest commit timestamp of the world and
// everything it contains.
func (w *World) LastChanged() anari.TimeStamp {
	ts := w.Base.LastChanged()
	st := w.state.Load()
	for _, s := range st.surfaces {
		ts = max(ts, s.LastChanged())
	}
	for _, v := range st.volumes {
		ts = max(ts, v.LastChanged())
	}
	return ts
}

// releaseContents drops the world's shares. Caller must hold w.mu.
func (w *World) releaseContents() {
	for i := range w.surfaces {
		w.surfaces[i].Clear()
	}
	for i := range w.volumes {
		w.volumes[i].Clear()
	}
	w.surfaces, w.volumes = nil, nil
}

func (w *World) free() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.releaseContents()
	w.state.Store(&worldState{})
}
