// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package object

import "github.com/gogpu/anari"

// Handle is a non-exclusive share of a reference-counted object. The zero
// Handle is empty.
//
// Handle is not safe for concurrent use; its owner serializes access.
type Handle[T Ref] struct {
	obj T
	ok  bool
}

// NewHandle returns a handle holding a new reference to obj.
func NewHandle[T Ref](obj T) Handle[T] {
	var h Handle[T]
	h.Set(obj)
	return h
}

// Set replaces the held object. The new object is retained before the old
// one is released, so setting the same object again never frees it.
func (h *Handle[T]) Set(obj T) {
	obj.Retain()
	h.Clear()
	h.obj = obj
	h.ok = true
}

// Clear releases the held object, if any.
func (h *Handle[T]) Clear() {
	if !h.ok {
		return
	}
	old := h.obj
	var zero T
	h.obj = zero
	h.ok = false
	old.Release()
}

// Get returns the held object and whether there is one.
func (h *Handle[T]) Get() (T, bool) {
	return h.obj, h.ok
}

// Present reports whether the handle holds an object.
func (h *Handle[T]) Present() bool {
	return h.ok
}

// Valid reports whether the handle holds an object that is itself valid.
func (h *Handle[T]) Valid() bool {
	return h.ok && h.obj.IsValid()
}

// LastChanged returns the held object's commit timestamp, or zero.
func (h *Handle[T]) LastChanged() anari.TimeStamp {
	if !h.ok {
		return 0
	}
	return h.obj.LastChanged()
}
