// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build anari_debug

package frame

import (
	"image"
	"testing"
)

func TestMapWhileRunningPanics(t *testing.T) {
	dev := newTestDevice(t)
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	f.RenderFrame()
	defer func() {
		close(b.gate)
		if r := recover(); r == nil {
			t.Error("Map() during render did not panic")
		}
	}()
	f.Map(ChannelColor)
}
