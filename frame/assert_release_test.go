// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !anari_debug

package frame

import (
	"image"
	"sync"
	"testing"

	"github.com/gogpu/anari"
)

func TestMapWhileRunningReportsError(t *testing.T) {
	var (
		mu     sync.Mutex
		errors int
	)
	dev := newTestDevice(t, anari.WithStatusCallback(func(s anari.Severity, _ string) {
		mu.Lock()
		defer mu.Unlock()
		if s == anari.SeverityError {
			errors++
		}
	}))
	sc := newTestScene(dev)
	b := &testBackend{gate: make(chan struct{})}
	f := newTestFrame(t, dev, b)
	f.Commit(sc.params(image.Pt(2, 2)))

	f.RenderFrame()
	if _, ok := f.Map(ChannelColor); !ok {
		t.Error("Map() during render failed, want it to proceed")
	}
	f.Unmap(ChannelColor)
	close(b.gate)
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if errors != 2 {
		t.Errorf("got %d error messages, want 2", errors)
	}
}
