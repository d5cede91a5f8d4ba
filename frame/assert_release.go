// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !anari_debug

package frame

import "github.com/gogpu/anari"

// assertNotRunning reports Map or Unmap during a render. The call proceeds;
// the view may show a partially written image.
func assertNotRunning(dev *anari.Device, op string) {
	dev.ReportMessage(anari.SeverityError, "frame: %s called while a render is running", op)
}
