// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import "errors"

var (
	// ErrDeviceClosed is returned when work is submitted to a released device.
	ErrDeviceClosed = errors.New("anari: device closed")

	// ErrRenderFailed wraps unrecoverable backend failures surfaced by Wait.
	ErrRenderFailed = errors.New("anari: render failed")
)
