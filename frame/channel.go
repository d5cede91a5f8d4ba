// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"image"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/internal/color"
	"github.com/gogpu/gputypes"
)

// ChannelName names an output channel of a frame.
type ChannelName string

// Output channels.
const (
	ChannelColor       ChannelName = "channel.color"
	ChannelDepth       ChannelName = "channel.depth"
	ChannelPrimitiveID ChannelName = "channel.primitiveId"
	ChannelObjectID    ChannelName = "channel.objectId"
	ChannelInstanceID  ChannelName = "channel.instanceId"
)

// MappedChannel is a read-only view of one channel of the last completed
// render. Exactly one of Pix, Float32 and Uint32 is set, according to Type.
//
// Pixels are stored row-major starting at the bottom-left corner of the
// image, the origin of screen space.
type MappedChannel struct {
	Width, Height int

	Type   anari.DataType
	Format gputypes.TextureFormat

	// Pix holds UFIXED8_VEC4 and UFIXED8_RGBA_SRGB color, four bytes per pixel.
	Pix []uint8

	// Float32 holds FLOAT32_VEC4 color (four per pixel) or FLOAT32 depth.
	Float32 []float32

	// Uint32 holds the ID channels.
	Uint32 []uint32
}

// Stride returns the number of elements between vertically adjacent pixels
// in whichever slice is set.
func (m MappedChannel) Stride() int {
	switch m.Type {
	case anari.DataTypeUfixed8Vec4, anari.DataTypeUfixed8RGBASRGB, anari.DataTypeFloat32Vec4:
		return 4 * m.Width
	default:
		return m.Width
	}
}

// channelTypes is the representation negotiated for every channel.
// DataTypeUnknown marks a channel that was not requested.
type channelTypes struct {
	color, depth, primID, objID, instID anari.DataType
}

// negotiate returns the channel types requested by p, downgrading types a
// channel cannot hold to DataTypeUnknown with a warning.
func negotiate(dev *anari.Device, p *Params) channelTypes {
	check := func(name ChannelName, t anari.DataType, ok bool) anari.DataType {
		if t == anari.DataTypeUnknown || ok {
			return t
		}
		dev.ReportMessage(anari.SeverityWarning, "frame: %s cannot hold %s, channel disabled", name, t)
		return anari.DataTypeUnknown
	}
	return channelTypes{
		color:  check(ChannelColor, p.Color, p.Color.IsColor()),
		depth:  check(ChannelDepth, p.Depth, p.Depth == anari.DataTypeFloat32),
		primID: check(ChannelPrimitiveID, p.PrimitiveID, p.PrimitiveID == anari.DataTypeUint32),
		objID:  check(ChannelObjectID, p.ObjectID, p.ObjectID == anari.DataTypeUint32),
		instID: check(ChannelInstanceID, p.InstanceID, p.InstanceID == anari.DataTypeUint32),
	}
}

// checkSurfaceFormat reports a performance warning when the requested color
// representation differs from the format of the host GPU surface, since
// presenting such a channel needs a conversion pass.
func checkSurfaceFormat(dev *anari.Device, color anari.DataType) {
	surface := dev.SurfaceFormat()
	if color == anari.DataTypeUnknown || surface == gputypes.TextureFormatUndefined {
		return
	}
	if color.Format() != surface {
		dev.ReportMessage(anari.SeverityPerformanceWarning,
			"frame: %s is %s but the host surface uses %s", ChannelColor, color.Format(), surface)
	}
}

// channelBuffers is the storage of every requested channel at one size.
// A render task writes into the buffers it was dispatched with; Commit
// replaces the whole set instead of resizing it, so a running task never
// observes a reallocation.
type channelBuffers struct {
	size  image.Point
	types channelTypes

	color8   []uint8
	colorF32 []float32
	depth    []float32
	primID   []uint32
	objID    []uint32
	instID   []uint32
}

func newChannelBuffers(size image.Point, types channelTypes) *channelBuffers {
	n := max(size.X, 0) * max(size.Y, 0)
	b := &channelBuffers{size: size, types: types}

	switch types.color {
	case anari.DataTypeUfixed8Vec4, anari.DataTypeUfixed8RGBASRGB:
		b.color8 = make([]uint8, 4*n)
	case anari.DataTypeFloat32Vec4:
		b.colorF32 = make([]float32, 4*n)
	}
	if types.depth != anari.DataTypeUnknown {
		b.depth = make([]float32, n)
	}
	if types.primID != anari.DataTypeUnknown {
		b.primID = make([]uint32, n)
	}
	if types.objID != anari.DataTypeUnknown {
		b.objID = make([]uint32, n)
	}
	if types.instID != anari.DataTypeUnknown {
		b.instID = make([]uint32, n)
	}
	return b
}

// matches reports whether the buffers already have the given layout.
func (b *channelBuffers) matches(size image.Point, types channelTypes) bool {
	return b != nil && b.size == size && b.types == types
}

// write stores a sample at flat pixel index i, converting to each
// channel's negotiated type. Unrequested channels are skipped.
func (b *channelBuffers) write(i int, s *backend.Sample) {
	switch b.types.color {
	case anari.DataTypeUfixed8Vec4:
		px := b.color8[4*i : 4*i+4 : 4*i+4]
		px[0] = color.ToUnorm8(s.Color[0])
		px[1] = color.ToUnorm8(s.Color[1])
		px[2] = color.ToUnorm8(s.Color[2])
		px[3] = color.ToUnorm8(s.Color[3])
	case anari.DataTypeUfixed8RGBASRGB:
		px := b.color8[4*i : 4*i+4 : 4*i+4]
		px[0] = color.LinearToSRGB8(s.Color[0])
		px[1] = color.LinearToSRGB8(s.Color[1])
		px[2] = color.LinearToSRGB8(s.Color[2])
		px[3] = color.ToUnorm8(s.Color[3])
	case anari.DataTypeFloat32Vec4:
		copy(b.colorF32[4*i:4*i+4], s.Color[:])
	}

	if b.depth != nil {
		b.depth[i] = s.Depth
	}
	if b.primID != nil {
		b.primID[i] = s.PrimID
	}
	if b.objID != nil {
		b.objID[i] = s.ObjID
	}
	if b.instID != nil {
		b.instID[i] = s.InstID
	}
}

// mapped returns the view of channel name, or false if it was not requested.
func (b *channelBuffers) mapped(name ChannelName) (MappedChannel, bool) {
	m := MappedChannel{Width: b.size.X, Height: b.size.Y}

	switch name {
	case ChannelColor:
		m.Type = b.types.color
		m.Pix, m.Float32 = b.color8, b.colorF32
	case ChannelDepth:
		m.Type = b.types.depth
		m.Float32 = b.depth
	case ChannelPrimitiveID:
		m.Type = b.types.primID
		m.Uint32 = b.primID
	case ChannelObjectID:
		m.Type = b.types.objID
		m.Uint32 = b.objID
	case ChannelInstanceID:
		m.Type = b.types.instID
		m.Uint32 = b.instID
	}

	if m.Type == anari.DataTypeUnknown {
		return MappedChannel{}, false
	}
	m.Format = m.Type.Format()
	return m, true
}
