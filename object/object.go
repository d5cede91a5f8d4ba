// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package object provides the shared-ownership and change-tracking
// primitives every committed scene object is built on.
//
// Objects are reference counted: the creator holds the first reference and
// anything that keeps an object alive beyond a call (a frame holding its
// camera, a world holding its surfaces) holds another through a [Handle].
// An object is freed when its last reference is released.
//
// Objects also carry the timestamp of their last commit, issued by the
// device clock. Dependents compare timestamps rather than pointers to find
// out whether something they render changed, because a shared object may be
// recommitted by its owner at any time.
package object

import (
	"sync/atomic"

	"github.com/gogpu/anari"
)

// Object is a committed scene object a frame can render against.
type Object interface {
	// IsValid reports whether the object's last commit left it in a
	// renderable state.
	IsValid() bool

	// LastChanged returns the timestamp of the object's last commit.
	LastChanged() anari.TimeStamp
}

// Ref is an Object whose lifetime is shared through reference counting.
type Ref interface {
	Object
	Retain()
	Release()
}

// Base implements the Ref bookkeeping for scene objects. Embed it and call
// Init from the constructor.
//
// Base is safe for concurrent use.
type Base struct {
	dev         *anari.Device
	refs        atomic.Int64
	lastChanged atomic.Uint64
	free        func()
}

// Init binds the object to its device and takes the creator's reference.
// free, if non-nil, runs once when the last reference is released.
func (b *Base) Init(dev *anari.Device, free func()) {
	b.dev = dev
	b.free = free
	b.refs.Store(1)
}

// Device returns the device the object belongs to.
func (b *Base) Device() *anari.Device {
	return b.dev
}

// Retain adds a reference.
func (b *Base) Retain() {
	b.refs.Add(1)
}

// Release drops a reference and frees the object when none remain.
func (b *Base) Release() {
	n := b.refs.Add(-1)
	switch {
	case n == 0:
		if b.free != nil {
			b.free()
		}
	case n < 0:
		b.refs.Add(1)
		anari.Logger().Error("anari: object released more times than retained")
	}
}

// UseCount returns the number of live references.
func (b *Base) UseCount() int64 {
	return b.refs.Load()
}

// Released reports whether the last reference has been dropped.
func (b *Base) Released() bool {
	return b.refs.Load() <= 0
}

// LastChanged returns the timestamp of the last MarkChanged call, or zero.
func (b *Base) LastChanged() anari.TimeStamp {
	return anari.TimeStamp(b.lastChanged.Load())
}

// MarkChanged stamps the object with a fresh device timestamp. Commit
// implementations call it after the new state is visible to readers.
func (b *Base) MarkChanged() anari.TimeStamp {
	ts := b.dev.NewTimeStamp()
	b.lastChanged.Store(uint64(ts))
	return ts
}
