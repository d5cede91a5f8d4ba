// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/anari/internal/parallel"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// StatusCallback receives device status messages.
type StatusCallback func(severity Severity, message string)

// Device is the state shared by every object created for one rendering
// device: the logical clock, the worker pools frames render on, the status
// message channel and the optional host GPU device.
//
// A Device is passed explicitly to the constructors of frames and scene
// objects; there is no package-level device.
//
// Device is safe for concurrent use.
type Device struct {
	clock Clock

	// dispatch runs one render task per frame; tiles runs the per-tile
	// sampling work of those tasks. Keeping them apart means a task waiting
	// for its tiles never occupies a tile worker.
	dispatch *parallel.WorkerPool
	tiles    *parallel.WorkerPool

	statusCallback StatusCallback
	provider       gpucontext.DeviceProvider

	closeOnce sync.Once
}

// NewDevice creates a device and starts its worker pools.
func NewDevice(opts ...DeviceOption) *Device {
	o := defaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Device{
		dispatch:       parallel.NewWorkerPool(o.dispatchWorkers),
		tiles:          parallel.NewWorkerPool(o.workers),
		statusCallback: o.statusCallback,
		provider:       o.provider,
	}

	Logger().Info("anari: device created",
		"workers", d.tiles.Workers(),
		"dispatchers", d.dispatch.Workers())
	if d.provider != nil {
		info := d.provider.AdapterInfo()
		Logger().Info("anari: host GPU device attached",
			"adapter", info.Name,
			"adapterType", info.Type.String(),
			"surfaceFormat", d.provider.SurfaceFormat().String())
	}

	return d
}

// NewTimeStamp issues a timestamp newer than every timestamp issued before
// by this device.
func (d *Device) NewTimeStamp() TimeStamp {
	return d.clock.Next()
}

// Now returns the newest timestamp this device has issued.
func (d *Device) Now() TimeStamp {
	return d.clock.Now()
}

// DeviceProvider returns the host GPU device, or nil if none was attached.
func (d *Device) DeviceProvider() gpucontext.DeviceProvider {
	return d.provider
}

// SurfaceFormat returns the texture format the host GPU surface prefers,
// or gputypes.TextureFormatUndefined when there is no host device or it
// runs headless.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	if d.provider == nil {
		return gputypes.TextureFormatUndefined
	}
	return d.provider.SurfaceFormat()
}

// Workers returns the number of goroutines sampling pixels.
func (d *Device) Workers() int {
	return d.tiles.Workers()
}

// Dispatch queues fn on a dispatcher goroutine without blocking. It returns
// ErrDeviceClosed if the device no longer accepts work, in which case fn
// never runs.
func (d *Device) Dispatch(fn func()) error {
	if !d.dispatch.Submit(fn) {
		return ErrDeviceClosed
	}
	return nil
}

// ExecuteAll runs every work item on the tile workers and returns when all
// of them have finished.
func (d *Device) ExecuteAll(work []func()) {
	d.tiles.ExecuteAll(work)
}

// ReportMessage sends a status message to the package logger and the
// device status callback. Scene and parameter problems are reported here
// instead of being returned, so that a malformed scene degrades to an empty
// image rather than failing the host application.
func (d *Device) ReportMessage(severity Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	Logger().Log(context.Background(), severityLevel(severity), msg, "severity", severity.String())
	if d.statusCallback != nil {
		d.statusCallback(severity, msg)
	}
}

// Close stops the worker pools after running all queued work.
// Frames must be released before the device is closed.
func (d *Device) Close() {
	d.closeOnce.Do(func() {
		d.dispatch.Close()
		d.tiles.Close()
		Logger().Info("anari: device closed")
	})
}

func severityLevel(s Severity) slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityPerformanceWarning, SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
