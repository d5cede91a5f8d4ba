// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package color converts linear float color components to the 8-bit
// encodings frame channels store.
//
// sRGB encoding uses lookup tables: the per-pixel write path of a render
// converts three components per pixel, and math.Pow in that loop dominates
// the cost of small scenes.
package color

import "math"

// srgbToLinearLUT maps an sRGB byte to linear [0, 1].
var srgbToLinearLUT [256]float32

// linearToSRGBLUT maps linear [0, 1] quantized to 12 bits to an sRGB byte.
// 12 bits keep every output within one step of the exact encoding.
var linearToSRGBLUT [4096]uint8

func init() {
	for i := range srgbToLinearLUT {
		srgbToLinearLUT[i] = float32(decode(float64(i) / 255))
	}
	for i := range linearToSRGBLUT {
		linearToSRGBLUT[i] = quantize(encode(float64(i) / 4095))
	}
}

// LinearToSRGB8 encodes a linear component as an sRGB byte.
// Input is clamped to [0, 1]; NaN encodes as 0.
func LinearToSRGB8(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*4095+0.5)]
}

// SRGB8ToLinear decodes an sRGB byte to a linear component.
func SRGB8ToLinear(s uint8) float32 {
	return srgbToLinearLUT[s]
}

// ToUnorm8 stores a component as an 8-bit unsigned normalized value.
// Input is clamped to [0, 1]; NaN stores as 0.
func ToUnorm8(f float32) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}

// encode is the exact sRGB transfer function.
func encode(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}

// decode is the exact inverse sRGB transfer function.
func decode(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func quantize(s float64) uint8 {
	//nolint:gosec // G115: clamped to [0,255]
	return uint8(min(max(int(s*255+0.5), 0), 255))
}
