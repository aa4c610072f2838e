// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sched provides the timers driving the periodic behavior of device
// models.
//
// Two Scheduler implementations are provided: Clock, a virtual clock advanced
// explicitly by its owner, and Loop, a real-time event loop. Callbacks of
// both always run on a single goroutine, so device models need no locking.
//
package sched

import (
	"container/heap"
	"time"
)

// A Handle identifies a scheduled callback. The zero Handle is never returned
// for a live timer and cancelling it is a no-op.
//
type Handle uint64

// Scheduler schedules repeating callbacks.
//
type Scheduler interface {
	// ScheduleRepeating arranges for fn to be called every interval, the
	// first call happening one interval from now. A non-positive interval
	// schedules nothing and returns the zero Handle.
	ScheduleRepeating(interval time.Duration, fn func()) Handle
	// Cancel stops the timer identified by h. Once Cancel returns, the
	// callback is never called again. Cancelling an unknown or already
	// cancelled handle is a no-op.
	Cancel(h Handle)
}

type timer struct {
	h     Handle
	due   time.Duration
	every time.Duration
	fn    func()
	index int
}

// timers is a min-heap of timers ordered by due time. Timers due at the same
// time are ordered by creation.
type timers []*timer

func (t timers) Len() int { return len(t) }
func (t timers) Less(i, j int) bool {
	if t[i].due == t[j].due {
		return t[i].h < t[j].h
	}
	return t[i].due < t[j].due
}
func (t timers) Swap(i, j int) { t[i], t[j] = t[j], t[i]; t[i].index = i; t[j].index = j }
func (t *timers) Push(x any)   { it := x.(*timer); it.index = len(*t); *t = append(*t, it) }
func (t *timers) Pop() any {
	old := *t
	n := len(old)
	it := old[n-1]
	it.index = -1
	*t = old[:n-1]
	return it
}

func (t timers) top() *timer {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// table is the bookkeeping shared by Clock and Loop.
type table struct {
	q     timers
	items map[Handle]*timer
	last  Handle
}

func (t *table) add(now, every time.Duration, fn func()) Handle {
	if every <= 0 || fn == nil {
		return 0
	}
	if t.items == nil {
		t.items = make(map[Handle]*timer)
	}
	t.last++
	it := &timer{h: t.last, due: now + every, every: every, fn: fn, index: -1}
	t.items[it.h] = it
	heap.Push(&t.q, it)
	return it.h
}

func (t *table) remove(h Handle) {
	if it := t.items[h]; it != nil {
		heap.Remove(&t.q, it.index)
		delete(t.items, h)
	}
}

// due returns the first timer due at or before now and re-arms it, or nil if
// no timer is due.
func (t *table) due(now time.Duration) *timer {
	it := t.q.top()
	if it == nil || it.due > now {
		return nil
	}
	it.due += it.every
	t.fix(it)
	return it
}

func (t *table) fix(it *timer) { heap.Fix(&t.q, it.index) }
