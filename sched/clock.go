// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sched

import "time"

// Clock is a deterministic virtual clock. Time only moves forward when
// Advance is called, and callbacks run on the caller's stack.
//
// The zero value is ready to use, at time 0.
//
type Clock struct {
	now time.Duration
	t   table
}

var _ Scheduler = (*Clock)(nil)

// Now returns the virtual time elapsed since the creation of the clock.
//
func (c *Clock) Now() time.Duration { return c.now }

// ScheduleRepeating implements Scheduler.
//
func (c *Clock) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	return c.t.add(c.now, interval, fn)
}

// Cancel implements Scheduler.
//
func (c *Clock) Cancel(h Handle) { c.t.remove(h) }

// Advance moves the clock forward by d, firing every callback due in the
// meantime in due-time order. A callback due several times within d fires as
// many times. The clock reads the due time of each callback while it runs.
//
func (c *Clock) Advance(d time.Duration) {
	end := c.now + d
	for {
		it := c.t.due(end)
		if it == nil {
			break
		}
		c.now = it.due - it.every
		it.fn()
	}
	c.now = end
}

// Pending returns the number of live timers.
//
func (c *Clock) Pending() int { return len(c.t.items) }
