// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build anari_debug

package frame

import (
	"fmt"

	"github.com/gogpu/anari"
)

// assertNotRunning fails fast on Map or Unmap during a render.
func assertNotRunning(dev *anari.Device, op string) {
	dev.ReportMessage(anari.SeverityFatalError, "frame: %s called while a render is running", op)
	panic(fmt.Sprintf("frame: %s called while a render is running", op))
}
