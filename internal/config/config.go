// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config holds the settings of the anarirender command: a JSON
// file, overridden by command-line flags, completed with defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gogpu/anari"
)

// Config holds all render and output settings.
type Config struct {
	// Render settings
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Supersample int    `json:"supersample"`
	Frames      int    `json:"frames"`
	Backend     string `json:"backend"`
	ColorType   string `json:"color_type"`

	// Demo scene
	Spheres int  `json:"spheres"`
	Volume  bool `json:"volume"`

	// Outputs. Empty paths skip the channel.
	OutputDir   string `json:"output_dir"`
	ColorOut    string `json:"color_out"`
	DepthOut    string `json:"depth_out"`
	ObjectOut   string `json:"object_out"`
	PrimOut     string `json:"primitive_out"`
	InstanceOut string `json:"instance_out"`

	// Device
	Workers         int `json:"workers"`
	DispatchWorkers int `json:"dispatch_workers"`

	// Language tag used to format the summary, e.g. "en" or "de".
	Lang string `json:"lang"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width     int
	Height    int
	Frames    int
	Backend   string
	ColorType string
	OutputDir string
	ColorOut  string
	Workers   int
	Lang      string
}

// Resolve applies flags and fills every empty field with its default.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.ColorType != "" {
		c.ColorType = flags.ColorType
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.ColorOut != "" {
		c.ColorOut = flags.ColorOut
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Lang != "" {
		c.Lang = flags.Lang
	}

	if c.Width <= 0 {
		c.Width = 512
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Backend == "" {
		c.Backend = "raycast"
	}
	if c.ColorType == "" {
		c.ColorType = "srgb"
	}
	if c.Spheres <= 0 {
		c.Spheres = 3
	}
	if c.ColorOut == "" && c.DepthOut == "" && c.ObjectOut == "" && c.PrimOut == "" && c.InstanceOut == "" {
		c.ColorOut = "color.png"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DispatchWorkers <= 0 {
		c.DispatchWorkers = 1
	}
	if c.Lang == "" {
		c.Lang = "en"
	}

	// Resolve relative outputs against the output dir
	if c.OutputDir != "" {
		for _, p := range []*string{&c.ColorOut, &c.DepthOut, &c.ObjectOut, &c.PrimOut, &c.InstanceOut} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(c.OutputDir, *p)
			}
		}
	}
}

// ColorDataType returns the color channel type named by ColorType.
func (c *Config) ColorDataType() (anari.DataType, error) {
	switch strings.ToLower(c.ColorType) {
	case "srgb", "ufixed8_rgba_srgb":
		return anari.DataTypeUfixed8RGBASRGB, nil
	case "unorm", "ufixed8_vec4":
		return anari.DataTypeUfixed8Vec4, nil
	case "float", "float32_vec4":
		return anari.DataTypeFloat32Vec4, nil
	}
	return anari.DataTypeUnknown, fmt.Errorf("config: unknown color type %q (want srgb, unorm or float)", c.ColorType)
}

// FramePath returns path with the frame index inserted before the
// extension when more than one frame is rendered.
func (c *Config) FramePath(path string, frame int) string {
	if c.Frames <= 1 || path == "" {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), frame, ext)
}
