// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package anari is a rendering device that turns a committed scene (camera,
// renderer settings, world of surfaces and volumes) into typed pixel
// buffers, using a pluggable data-parallel backend for the per-pixel work.
//
// # Overview
//
// The root package holds the state shared by everything created for one
// device: the logical [Clock] objects stamp their commits with, the worker
// pools frames render on, the status message channel and an optional host
// GPU device. Sub-packages build on it:
//
//   - object: shared-ownership handles and commit bookkeeping
//   - scene: camera, renderer, world, surfaces and volumes
//   - frame: the frame lifecycle controller (commit, render, map, wait)
//   - backend: the per-pixel sampling interface and a CPU ray caster
//   - export: encoding mapped channels as image files
//
// # Quick Start
//
//	dev := anari.NewDevice()
//	defer dev.Close()
//
//	f := frame.New(dev, raycast.New(dev))
//	defer f.Release()
//
//	f.Commit(frame.Params{
//	    Size:     image.Pt(640, 480),
//	    Color:    anari.DataTypeUfixed8RGBASRGB,
//	    Camera:   cam,
//	    Renderer: ren,
//	    World:    world,
//	})
//	f.RenderFrame()
//	f.FrameReady(anari.Wait)
//	color, _ := f.Map(frame.ChannelColor)
//	defer f.Unmap(frame.ChannelColor)
//
// # Logging
//
// anari is silent by default. Call [SetLogger] to route device messages
// and frame lifecycle diagnostics to a [log/slog] logger.
package anari
