// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDataType(t *testing.T) {
	tests := []struct {
		typ     DataType
		name    string
		size    int
		format  gputypes.TextureFormat
		isColor bool
	}{
		{DataTypeUnknown, "UNKNOWN", 0, gputypes.TextureFormatUndefined, false},
		{DataTypeUint32, "UINT32", 4, gputypes.TextureFormatR32Uint, false},
		{DataTypeFloat32, "FLOAT32", 4, gputypes.TextureFormatR32Float, false},
		{DataTypeUfixed8Vec4, "UFIXED8_VEC4", 4, gputypes.TextureFormatRGBA8Unorm, true},
		{DataTypeUfixed8RGBASRGB, "UFIXED8_RGBA_SRGB", 4, gputypes.TextureFormatRGBA8UnormSrgb, true},
		{DataTypeFloat32Vec4, "FLOAT32_VEC4", 16, gputypes.TextureFormatRGBA32Float, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.typ.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
			if got := tt.typ.Format(); got != tt.format {
				t.Errorf("Format() = %v, want %v", got, tt.format)
			}
			if got := tt.typ.IsColor(); got != tt.isColor {
				t.Errorf("IsColor() = %v, want %v", got, tt.isColor)
			}
		})
	}
}

func TestDataTypeOutOfRange(t *testing.T) {
	if got := DataType(999).String(); got != "UNKNOWN" {
		t.Errorf("DataType(999).String() = %q, want UNKNOWN", got)
	}
	if got := Severity(-1).String(); got != "unknown" {
		t.Errorf("Severity(-1).String() = %q, want unknown", got)
	}
}
