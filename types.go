// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import "github.com/gogpu/gputypes"

// DataType identifies the element representation of a frame channel or a
// typed property value.
type DataType uint32

const (
	// DataTypeUnknown marks a channel that was not requested.
	DataTypeUnknown DataType = iota

	// DataTypeUint32 is one 32-bit unsigned integer (ID channels).
	DataTypeUint32

	// DataTypeFloat32 is one 32-bit float (depth channel, duration property).
	DataTypeFloat32

	// DataTypeUfixed8Vec4 is linear RGBA, 8 bits per component.
	DataTypeUfixed8Vec4

	// DataTypeUfixed8RGBASRGB is sRGB-encoded RGB with linear alpha, 8 bits per component.
	DataTypeUfixed8RGBASRGB

	// DataTypeFloat32Vec4 is linear RGBA, 32-bit float per component.
	DataTypeFloat32Vec4
)

var dataTypeNames = [...]string{
	DataTypeUnknown:         "UNKNOWN",
	DataTypeUint32:          "UINT32",
	DataTypeFloat32:         "FLOAT32",
	DataTypeUfixed8Vec4:     "UFIXED8_VEC4",
	DataTypeUfixed8RGBASRGB: "UFIXED8_RGBA_SRGB",
	DataTypeFloat32Vec4:     "FLOAT32_VEC4",
}

// String returns the data type name.
func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "UNKNOWN"
}

// Size returns the number of bytes one element of this type occupies.
func (t DataType) Size() int {
	switch t {
	case DataTypeUint32, DataTypeFloat32, DataTypeUfixed8Vec4, DataTypeUfixed8RGBASRGB:
		return 4
	case DataTypeFloat32Vec4:
		return 16
	default:
		return 0
	}
}

// Format returns the texture format matching this data type, so that mapped
// channels can be uploaded to a host GPU device without reinterpretation.
func (t DataType) Format() gputypes.TextureFormat {
	switch t {
	case DataTypeUint32:
		return gputypes.TextureFormatR32Uint
	case DataTypeFloat32:
		return gputypes.TextureFormatR32Float
	case DataTypeUfixed8Vec4:
		return gputypes.TextureFormatRGBA8Unorm
	case DataTypeUfixed8RGBASRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case DataTypeFloat32Vec4:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatUndefined
	}
}

// IsColor reports whether t is a valid color channel representation.
func (t DataType) IsColor() bool {
	return t == DataTypeUfixed8Vec4 || t == DataTypeUfixed8RGBASRGB || t == DataTypeFloat32Vec4
}

// WaitMask selects blocking behavior for FrameReady and GetProperty.
type WaitMask uint32

const (
	// NoWait polls without blocking.
	NoWait WaitMask = iota

	// Wait blocks until the in-flight render completes.
	Wait
)

// Severity classifies device status messages.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityPerformanceWarning
	SeverityWarning
	SeverityError
	SeverityFatalError
)

var severityNames = [...]string{
	SeverityDebug:              "debug",
	SeverityInfo:               "info",
	SeverityPerformanceWarning: "performance-warning",
	SeverityWarning:            "warning",
	SeverityError:              "error",
	SeverityFatalError:         "fatal",
}

// String returns the severity name.
func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}
