// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package export converts mapped frame channels to images and encodes them
// to image files.
//
// Frame channels start at the bottom-left corner of the image; images
// returned here start at the top-left corner, as image files expect.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	"github.com/gogpu/anari/frame"
	"github.com/gogpu/anari/internal/color"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var (
	// ErrUnknownFormat is returned for file names without a supported
	// image extension.
	ErrUnknownFormat = errors.New("export: unknown image format")

	// ErrUnsupportedChannel is returned for channels without pixels or of a
	// type that cannot be converted to an image.
	ErrUnsupportedChannel = errors.New("export: unsupported channel")
)

// Format is an image file format.
type Format int

// Supported formats.
const (
	PNG Format = iota
	WebP
	TGA
	BMP
	TIFF
)

var formatNames = [...]string{
	PNG:  "png",
	WebP: "webp",
	TGA:  "tga",
	BMP:  "bmp",
	TIFF: "tiff",
}

// String returns the format's file extension without the dot.
func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".webp":
		return WebP, nil
	case ".tga":
		return TGA, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Options controls encoding.
type Options struct {
	// Width and Height resample the image before encoding. Zero keeps the
	// channel resolution; one zero dimension keeps the aspect ratio.
	Width, Height int

	// Nearest resamples without filtering. Use it for depth and ID
	// channels, whose values must not be blended.
	Nearest bool
}

// Image converts a mapped channel to an image.
//
// Color channels become *image.NRGBA; FLOAT32_VEC4 color is sRGB encoded.
// Depth becomes *image.Gray16 with the nearest depth white and the farthest
// finite depth dark; pixels without a hit are black. ID channels become a
// false-color *image.NRGBA with pixels without an ID transparent.
func Image(m frame.MappedChannel) (image.Image, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d channel", ErrUnsupportedChannel, m.Width, m.Height)
	}
	n := m.Width * m.Height

	switch m.Type {
	case anari.DataTypeUfixed8Vec4, anari.DataTypeUfixed8RGBASRGB:
		if len(m.Pix) < 4*n {
			return nil, fmt.Errorf("%w: short color buffer", ErrUnsupportedChannel)
		}
		img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
		for y := range m.Height {
			src := m.Pix[4*m.Width*y : 4*m.Width*(y+1)]
			copy(img.Pix[img.PixOffset(0, m.Height-1-y):], src)
		}
		return img, nil

	case anari.DataTypeFloat32Vec4:
		if len(m.Float32) < 4*n {
			return nil, fmt.Errorf("%w: short color buffer", ErrUnsupportedChannel)
		}
		img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
		for y := range m.Height {
			for x := range m.Width {
				s := m.Float32[4*(y*m.Width+x):]
				d := img.Pix[img.PixOffset(x, m.Height-1-y):]
				d[0] = color.LinearToSRGB8(s[0])
				d[1] = color.LinearToSRGB8(s[1])
				d[2] = color.LinearToSRGB8(s[2])
				d[3] = color.ToUnorm8(s[3])
			}
		}
		return img, nil

	case anari.DataTypeFloat32:
		if len(m.Float32) < n {
			return nil, fmt.Errorf("%w: short depth buffer", ErrUnsupportedChannel)
		}
		return depthImage(m), nil

	case anari.DataTypeUint32:
		if len(m.Uint32) < n {
			return nil, fmt.Errorf("%w: short id buffer", ErrUnsupportedChannel)
		}
		img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
		for y := range m.Height {
			for x := range m.Width {
				id := m.Uint32[y*m.Width+x]
				if id == backend.NoID {
					continue
				}
				r, g, b := IDColor(id)
				d := img.Pix[img.PixOffset(x, m.Height-1-y):]
				d[0], d[1], d[2], d[3] = r, g, b, 255
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: type %s", ErrUnsupportedChannel, m.Type)
}

func depthImage(m frame.MappedChannel) *image.Gray16 {
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, d := range m.Float32[:m.Width*m.Height] {
		if math.IsInf(float64(d), 0) || math.IsNaN(float64(d)) {
			continue
		}
		lo = min(lo, d)
		hi = max(hi, d)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		for x := range m.Width {
			d := m.Float32[y*m.Width+x]
			if lo > hi || math.IsInf(float64(d), 0) || math.IsNaN(float64(d)) {
				continue
			}
			// nearest 1, farthest 1/16
			v := 1 - (d-lo)/span*(15.0/16)
			i := img.PixOffset(x, m.Height-1-y)
			g := uint16(v*65535 + 0.5)
			img.Pix[i], img.Pix[i+1] = uint8(g>>8), uint8(g)
		}
	}
	return img
}

// IDColor returns a stable, well-spread color for an object or primitive ID.
func IDColor(id uint32) (r, g, b uint8) {
	// Finalizer of murmur3: adjacent IDs get unrelated colors.
	h := id
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	// Keep every component away from black.
	return uint8(h) | 0x40, uint8(h>>8) | 0x40, uint8(h>>16) | 0x40
}

// Encode writes a channel to w in the given format.
func Encode(w io.Writer, m frame.MappedChannel, f Format, opts *Options) error {
	img, err := Image(m)
	if err != nil {
		return err
	}
	if opts != nil {
		img = resample(img, opts.Width, opts.Height, opts.Nearest)
	}

	switch f {
	case PNG:
		err = png.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", f, err)
	}
	return nil
}

// WriteFile encodes a channel to path, choosing the format from the
// extension.
func WriteFile(path string, m frame.MappedChannel, opts *Options) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()

	return Encode(out, m, f, opts)
}

// resample scales img to width x height with Catmull-Rom filtering, or
// by nearest neighbor.
func resample(img image.Image, width, height int, nearest bool) image.Image {
	b := img.Bounds()
	switch {
	case width <= 0 && height <= 0:
		return img
	case width <= 0:
		width = max(b.Dx()*height/b.Dy(), 1)
	case height <= 0:
		height = max(b.Dy()*width/b.Dx(), 1)
	}
	if width == b.Dx() && height == b.Dy() {
		return img
	}

	r := image.Rect(0, 0, width, height)
	var dst draw.Image
	if _, ok := img.(*image.Gray16); ok {
		dst = image.NewGray16(r)
	} else {
		dst = image.NewNRGBA(r)
	}
	var scaler draw.Scaler = draw.CatmullRom
	if nearest {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, r, img, b, draw.Src, nil)
	return dst
}
