// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sched

import (
	"context"
	"sync"
	"time"
)

// Loop is a real-time event loop. Timer callbacks and functions given to Post
// all run on the goroutine calling Run, one at a time.
//
// ScheduleRepeating and Post may be called from any goroutine. Cancel only
// guarantees that the callback will not fire again when called from the loop
// goroutine (or before Run); other goroutines should Post the call.
//
type Loop struct {
	mu    sync.Mutex
	t     table
	start time.Time
	wake  chan struct{}
	posts chan func()
}

var _ Scheduler = (*Loop)(nil)

// NewLoop returns a new Loop. Up to backlog posted functions can be queued
// before Post blocks.
//
func NewLoop(backlog int) *Loop {
	return &Loop{
		start: time.Now(),
		wake:  make(chan struct{}, 1),
		posts: make(chan func(), backlog),
	}
}

func (l *Loop) elapsed() time.Duration { return time.Since(l.start) }

func (l *Loop) wakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// ScheduleRepeating implements Scheduler.
//
func (l *Loop) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	l.mu.Lock()
	h := l.t.add(l.elapsed(), interval, fn)
	l.mu.Unlock()
	l.wakeup()
	return h
}

// Cancel implements Scheduler.
//
func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	l.t.remove(h)
	l.mu.Unlock()
	l.wakeup()
}

// Post queues fn for execution on the loop goroutine. It blocks if the
// backlog is full, or returns false if ctx is done first.
//
func (l *Loop) Post(ctx context.Context, fn func()) bool {
	select {
	case l.posts <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run runs the loop until ctx is done and returns ctx.Err().
//
func (l *Loop) Run(ctx context.Context) error {
	tm := time.NewTimer(time.Hour)
	defer tm.Stop()

	for {
		l.mu.Lock()
		now := l.elapsed()
		fire := l.t.due(now)
		if fire != nil && fire.due <= now {
			// running late: skip missed ticks instead of bursting
			fire.due = now + fire.every
			l.t.fix(fire)
		}
		wait := time.Duration(-1)
		if top := l.t.q.top(); fire == nil && top != nil {
			wait = top.due - now
		}
		l.mu.Unlock()

		if fire != nil {
			fire.fn()
			continue
		}

		var tc <-chan time.Time
		if wait >= 0 {
			tm.Reset(wait)
			tc = tm.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posts:
			fn()
		case <-l.wake:
		case <-tc:
			continue
		}
		if tc != nil {
			tm.Stop()
		}
	}
}
