// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel provides the worker pools and tile decomposition used to
// render frames in parallel.
//
// A frame is divided into 64x64 pixel tiles. Tiles cover disjoint pixel
// ranges, so the pixels of different tiles can be written into the same
// flat channel buffers concurrently without synchronization.
package parallel

// Tile size constants.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 64

	// TileHeight is the height of a tile in pixels.
	TileHeight = 64
)

// Tile is a rectangular pixel region of a frame.
// Edge tiles may be smaller than TileWidth x TileHeight.
type Tile struct {
	// X0, Y0 is the top-left pixel, inclusive.
	X0, Y0 int

	// X1, Y1 is the bottom-right pixel, exclusive.
	X1, Y1 int
}

// Pixels returns the number of pixels covered by the tile.
func (t Tile) Pixels() int {
	return (t.X1 - t.X0) * (t.Y1 - t.Y0)
}

// Tiles divides a width x height frame into tiles in row-major order.
// Returns nil if either dimension is not positive.
func Tiles(width, height int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}

	tilesX := (width + TileWidth - 1) / TileWidth
	tilesY := (height + TileHeight - 1) / TileHeight

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := range tilesY {
		y0 := ty * TileHeight
		y1 := min(y0+TileHeight, height)
		for tx := range tilesX {
			x0 := tx * TileWidth
			x1 := min(x0+TileWidth, width)
			tiles = append(tiles, Tile{X0: x0, Y0: y0, X1: x1, Y1: y1})
		}
	}
	return tiles
}
