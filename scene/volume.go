// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/colortable"
	"github.com/gogpu/anari/object"
)

// VolumeParams configures a 1D transfer function volume.
type VolumeParams struct {
	// Field is the scalar field the volume colors. Required.
	Field *SpatialField

	// ValueRange is the scalar range mapped onto the transfer function.
	// Nil selects [0, 1].
	ValueRange *[2]float32

	// Colors are evenly spaced over the value range. When empty, Color is
	// used for the whole range; a zero Color selects white.
	Colors [][3]float32
	Color  [3]float32

	// Opacities are evenly spaced over the value range. Empty means opaque.
	Opacities []float32

	// UnitDistance is the distance over which an opacity of 1 fully
	// occludes. Zero selects 1.
	UnitDistance float32

	// ID is written to the object-ID channel for pixels the volume covers.
	ID uint32
}

var (
	defaultVolumeColor = [3]float32{1, 1, 1}
	defaultValueRange  = [2]float32{0, 1}
)

// DefaultVolumeParams returns a white volume mapping [0, 1] without a
// field.
func DefaultVolumeParams() VolumeParams {
	r := defaultValueRange
	return VolumeParams{
		ValueRange:   &r,
		Color:        defaultVolumeColor,
		UnitDistance: 1,
	}
}

type volumeState struct {
	field        *SpatialField
	table        *colortable.Table
	unitDistance float32
	id           uint32
}

// Volume is a committed scalar field colored by a 1D transfer function.
type Volume struct {
	object.Base

	mu    sync.Mutex
	field object.Handle[*SpatialField]

	state atomic.Pointer[volumeState]
}

// NewVolume creates a volume without a field. It is invalid until a commit
// provides one.
func NewVolume(dev *anari.Device) *Volume {
	v := &Volume{}
	v.Init(dev, v.free)
	v.state.Store(&volumeState{table: colortable.New(), unitDistance: 1})
	return v
}

// Commit builds the transfer function and publishes it with the field.
// A missing field is reported and leaves the volume invalid.
func (v *Volume) Commit(p VolumeParams) {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := &volumeState{unitDistance: p.UnitDistance, id: p.ID}
	if st.unitDistance <= 0 {
		st.unitDistance = 1
	}

	if p.Field == nil {
		v.Device().ReportMessage(anari.SeverityWarning, "transferFunction1D volume missing field")
		v.field.Clear()
		st.table = colortable.New()
		v.state.Store(st)
		v.MarkChanged()
		return
	}
	v.field.Set(p.Field)
	st.field = p.Field

	colors := p.Colors
	if len(colors) == 0 {
		c := p.Color
		if c == ([3]float32{}) {
			c = defaultVolumeColor
		}
		colors = [][3]float32{c}
	}

	lo, hi := defaultValueRange[0], defaultValueRange[1]
	if p.ValueRange != nil {
		lo, hi = p.ValueRange[0], p.ValueRange[1]
	}
	st.table = colortable.FromArrays(colors, p.Opacities, lo, hi)

	v.state.Store(st)
	v.MarkChanged()
}

// Field returns the committed field, or nil.
func (v *Volume) Field() *SpatialField {
	return v.state.Load().field
}

// Table returns the committed transfer function. It must not be modified.
func (v *Volume) Table() *colortable.Table {
	return v.state.Load().table
}

// UnitDistance returns the committed opacity unit distance.
func (v *Volume) UnitDistance() float32 {
	return v.state.Load().unitDistance
}

// ID returns the committed object ID.
func (v *Volume) ID() uint32 {
	return v.state.Load().id
}

// IsValid reports whether the volume has a valid field.
func (v *Volume) IsValid() bool {
	f := v.state.Load().field
	return f != nil && f.IsValid()
}

// LastChanged returns the newer of the volume's and its field's commit
// timestamps.
func (v *Volume) LastChanged() anari.TimeStamp {
	ts := v.Base.LastChanged()
	if f := v.state.Load().field; f != nil {
		ts = max(ts, f.LastChanged())
	}
	return ts
}

func (v *Volume) free() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.field.Clear()
}
