// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import "github.com/gogpu/gpucontext"

// DeviceOption configures a Device during creation.
//
// Example:
//
//	// Defaults: GOMAXPROCS tile workers, two frame dispatchers
//	dev := anari.NewDevice()
//
//	// Share the host application's GPU device
//	dev := anari.NewDevice(anari.WithDeviceProvider(app.DeviceProvider()))
type DeviceOption func(*deviceOptions)

// deviceOptions holds optional configuration for Device creation.
type deviceOptions struct {
	workers         int
	dispatchWorkers int
	statusCallback  StatusCallback
	provider        gpucontext.DeviceProvider
}

func defaultDeviceOptions() deviceOptions {
	return deviceOptions{
		workers:         0, // GOMAXPROCS
		dispatchWorkers: 2,
	}
}

// WithWorkers sets the number of goroutines sampling pixels in parallel.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) DeviceOption {
	return func(o *deviceOptions) {
		o.workers = n
	}
}

// WithDispatchWorkers sets how many frames may render at the same time.
// Frames dispatched beyond this limit queue until a dispatcher is free.
func WithDispatchWorkers(n int) DeviceOption {
	return func(o *deviceOptions) {
		if n > 0 {
			o.dispatchWorkers = n
		}
	}
}

// WithStatusCallback installs a callback receiving every status message
// the device reports, in addition to the package logger.
func WithStatusCallback(cb StatusCallback) DeviceOption {
	return func(o *deviceOptions) {
		o.statusCallback = cb
	}
}

// WithDeviceProvider attaches a GPU device owned by the host application.
// The device does not create GPU resources of its own; backends that can
// use the host device retrieve it with Device.DeviceProvider.
func WithDeviceProvider(p gpucontext.DeviceProvider) DeviceOption {
	return func(o *deviceOptions) {
		o.provider = p
	}
}
