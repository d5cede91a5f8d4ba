// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command anarirender renders a demo scene through a frame and writes the
// requested channels to image files.
//
// Usage:
//
//	anarirender [-config config.json] [-width 512] [-height 512]
//	            [-frames 1] [-backend raycast] [-color srgb]
//	            [-output dir] [-out color.png] [-workers N] [-lang en] [-v]
//
// With more than one frame the camera orbits the scene and every output
// file name gets the frame index.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/anari"
	"github.com/gogpu/anari/backend"
	_ "github.com/gogpu/anari/backend/raycast"
	"github.com/gogpu/anari/export"
	"github.com/gogpu/anari/frame"
	"github.com/gogpu/anari/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	width := flag.Int("width", 0, "Image width (default: 512)")
	height := flag.Int("height", 0, "Image height (default: width)")
	frames := flag.Int("frames", 0, "Number of frames to render around the scene (default: 1)")
	backendName := flag.String("backend", "", "Render backend (default: raycast)")
	colorType := flag.String("color", "", "Color channel type: srgb, unorm or float (default: srgb)")
	outputDir := flag.String("output", "", "Directory for relative output paths")
	colorOut := flag.String("out", "", "Color output file; the extension picks the format")
	workers := flag.Int("workers", 0, "Number of sampling goroutines (default: NumCPU)")
	lang := flag.String("lang", "", "Language for the summary (default: en)")
	verbose := flag.Bool("v", false, "Log device messages")

	flag.Parse()

	if *verbose {
		anari.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		Width:     *width,
		Height:    *height,
		Frames:    *frames,
		Backend:   *backendName,
		ColorType: *colorType,
		OutputDir: *outputDir,
		ColorOut:  *colorOut,
		Workers:   *workers,
		Lang:      *lang,
	})

	if err := run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// output is one channel written to a file.
type output struct {
	channel frame.ChannelName
	path    string
	nearest bool
}

func run(cfg *config.Config) error {
	colorType, err := cfg.ColorDataType()
	if err != nil {
		return err
	}

	tag, err := language.Parse(cfg.Lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: language %q: %v, using English\n", cfg.Lang, err)
		tag = language.English
	}
	p := message.NewPrinter(tag)

	dev := anari.NewDevice(
		anari.WithWorkers(cfg.Workers),
		anari.WithDispatchWorkers(cfg.DispatchWorkers),
		anari.WithStatusCallback(func(sev anari.Severity, msg string) {
			if sev >= anari.SeverityWarning {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", sev, msg)
			}
		}),
	)
	defer dev.Close()

	b, err := backend.New(cfg.Backend, dev)
	if err != nil {
		return err
	}

	demo := newDemoScene(dev, cfg)
	defer demo.Release()

	f := frame.New(dev, b)
	defer f.Release()

	params := frame.Params{
		Size:     image.Pt(cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample),
		Camera:   demo.camera,
		Renderer: demo.renderer,
		World:    demo.world,
	}
	var outputs []output
	request := func(t *anari.DataType, want anari.DataType, ch frame.ChannelName, path string, nearest bool) {
		if path == "" {
			return
		}
		*t = want
		outputs = append(outputs, output{channel: ch, path: path, nearest: nearest})
	}
	request(&params.Color, colorType, frame.ChannelColor, cfg.ColorOut, false)
	request(&params.Depth, anari.DataTypeFloat32, frame.ChannelDepth, cfg.DepthOut, true)
	request(&params.ObjectID, anari.DataTypeUint32, frame.ChannelObjectID, cfg.ObjectOut, true)
	request(&params.PrimitiveID, anari.DataTypeUint32, frame.ChannelPrimitiveID, cfg.PrimOut, true)
	request(&params.InstanceID, anari.DataTypeUint32, frame.ChannelInstanceID, cfg.InstanceOut, true)

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}
	}

	p.Printf("Rendering %d frame(s) at %d×%d with %s, %d workers\n",
		cfg.Frames, params.Size.X, params.Size.Y, cfg.Backend, dev.Workers())
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	var renderTime float64
	for i := range cfg.Frames {
		demo.Orbit(i, cfg.Frames)
		f.Commit(params)

		f.RenderFrame()
		if err := f.Wait(); err != nil {
			return err
		}

		var duration float32
		var frameID uint32
		f.GetProperty(frame.PropertyDuration, anari.DataTypeFloat32, &duration, anari.NoWait)
		f.GetProperty(frame.PropertyFrameID, anari.DataTypeUint32, &frameID, anari.NoWait)
		renderTime += float64(duration)

		for _, o := range outputs {
			if err := write(f, cfg, o, i); err != nil {
				return err
			}
		}

		p.Printf("  frame %d: %d pixels in %.1f ms\n", frameID, params.Size.X*params.Size.Y, duration*1000)
	}

	pixels := cfg.Frames * params.Size.X * params.Size.Y
	fmt.Println("------------------------------------------------------------")
	p.Printf("Done: %d pixels, %.1f ms rendering, %.0f pixels/s, %v total\n",
		pixels, renderTime*1000, float64(pixels)/max(renderTime, 1e-9), time.Since(start).Round(time.Millisecond))
	return nil
}

func write(f *frame.Frame, cfg *config.Config, o output, frameIndex int) error {
	m, ok := f.Map(o.channel)
	if !ok {
		return fmt.Errorf("channel %s not available", o.channel)
	}
	defer f.Unmap(o.channel)

	var opts *export.Options
	if cfg.Supersample > 1 {
		opts = &export.Options{Width: cfg.Width, Height: cfg.Height, Nearest: o.nearest}
	}
	return export.WriteFile(cfg.FramePath(o.path, frameIndex), m, opts)
}
