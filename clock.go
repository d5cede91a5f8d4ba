// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package anari

import "sync/atomic"

// TimeStamp is a logical clock value issued by a Clock.
// Zero means "never happened" and is never issued.
type TimeStamp uint64

// Clock issues strictly increasing TimeStamps. Every committed object and
// every frame stamps its changes from the clock of the device it belongs to,
// so timestamps from one device are totally ordered.
//
// Clock is safe for concurrent use. The zero value is ready to use.
type Clock struct {
	now atomic.Uint64
}

// Next returns a new TimeStamp greater than every stamp issued before.
func (c *Clock) Next() TimeStamp {
	return TimeStamp(c.now.Add(1))
}

// Now returns the most recently issued TimeStamp, or zero if none was.
func (c *Clock) Now() TimeStamp {
	return TimeStamp(c.now.Load())
}
