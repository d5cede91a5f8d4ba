// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame implements the frame lifecycle: committing output
// parameters, deciding whether the committed scene needs to be rendered
// again, rendering asynchronously on the device, and exposing the typed
// output channels.
//
// # Lifecycle
//
//	f := frame.New(dev, b)
//	defer f.Release()
//
//	f.Commit(frame.Params{
//		Size:     image.Pt(640, 480),
//		Color:    anari.DataTypeUfixed8RGBASRGB,
//		Depth:    anari.DataTypeFloat32,
//		Camera:   cam,
//		Renderer: ren,
//		World:    world,
//	})
//
//	f.RenderFrame()          // returns immediately
//	if err := f.Wait(); err != nil {
//		// backend failure
//	}
//	px, ok := f.Map(frame.ChannelColor)
//	// ... read px.Pix
//	f.Unmap(frame.ChannelColor)
//
// # Staleness
//
// Commit never renders. RenderFrame compares the commit timestamps of the
// camera, renderer and world against the values observed when the last
// render started and dispatches a render only if one of them is newer, the
// size changed, or nothing has been rendered into the current buffers yet.
// Calling RenderFrame in a loop is therefore cheap when nothing changes.
//
// # Concurrency
//
// At most one render per frame is in flight. It runs on the device's
// dispatch workers and samples pixels in 64x64 tiles on the device's tile
// workers; tiles write disjoint pixels, so the channel buffers need no
// locking. Only Wait, FrameReady(anari.Wait) and GetProperty with
// anari.Wait block.
//
// Discard abandons the in-flight render: it stops at the next tile
// boundary and the frame forgets it immediately, moving to fresh buffers so
// the abandoned tiles write storage nobody maps. The next RenderFrame
// starts once the abandoned render has finished, without holding a
// dispatcher while it waits.
//
// Building with the anari_debug tag turns Map or Unmap during a render
// into a panic instead of an error message.
package frame
