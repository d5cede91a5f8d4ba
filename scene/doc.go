// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene implements the committed objects a frame renders: cameras,
// renderers, worlds and the surfaces and volumes worlds contain.
//
// Every object follows the same pattern. Parameters are passed to Commit
// as a value; Commit validates them, publishes an immutable snapshot and
// stamps the object with a new device timestamp. Readers (render backends)
// take a snapshot with Params and never observe a half-applied commit, so
// an object may be recommitted while a frame that references it renders.
//
// Container objects (World, Surface, Volume) report the newest timestamp of
// themselves and everything they reference from LastChanged, so recommitting
// a surface makes every world containing it stale.
package scene
