// This file is part of lxdream.
//
// lxdream is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// lxdream is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with lxdream.  If not, see <https://www.gnu.org/licenses/>.

package eventq

import (
	"container/heap"
	"math"
	"sync/atomic"

	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/logger"
)

// Never is the deadline returned when there is nothing scheduled.
const Never = uint64(math.MaxUint64)

// Action is the function called when an event is executed. The argument is
// the deadline the event was scheduled for, which may be earlier than the time
// at which it is executed. Periodic events reschedule relative to it so that
// they do not drift.
type Action func(now uint64)

type event struct {
	name     string
	deadline uint64
	action   Action

	// the order in which events were scheduled. events with the same
	// deadline are executed in this order
	seq uint64
}

// pending implements heap.Interface.
type pending []*event

func (p pending) Len() int {
	return len(p)
}

func (p pending) Less(i, j int) bool {
	if p[i].deadline == p[j].deadline {
		return p[i].seq < p[j].seq
	}
	return p[i].deadline < p[j].deadline
}

func (p pending) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p *pending) Push(x any) {
	*p = append(*p, x.(*event))
}

func (p *pending) Pop() any {
	old := *p
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*p = old[:n-1]
	return e
}

// the number of functions that can be posted before Post() blocks.
const inboxLength = 256

// Queue is the event queue of the machine.
type Queue struct {
	env *environment.Environment

	events pending
	seq    uint64

	irqs irqs

	// functions posted from other goroutines. posted is set when a
	// function has been sent to the inbox and cleared when the inbox is
	// drained
	inbox  chan func()
	posted atomic.Bool
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue(env *environment.Environment) *Queue {
	return &Queue{
		env:   env,
		inbox: make(chan func(), inboxLength),
	}
}

// Reset removes all scheduled events and pending interrupts. Posted functions
// are not affected.
func (q *Queue) Reset() {
	q.events = q.events[:0]
	q.irqs = q.irqs[:0]
}

// Schedule the named event for the deadline. An event with the same name that
// is already scheduled is replaced.
func (q *Queue) Schedule(name string, deadline uint64, action Action) {
	q.Cancel(name)
	q.seq++
	heap.Push(&q.events, &event{
		name:     name,
		deadline: deadline,
		action:   action,
		seq:      q.seq,
	})
}

// Cancel the named event. Returns true if the event was scheduled.
func (q *Queue) Cancel(name string) bool {
	for i, e := range q.events {
		if e.name == name {
			heap.Remove(&q.events, i)
			return true
		}
	}
	return false
}

// Scheduled returns true if the named event is scheduled.
func (q *Queue) Scheduled(name string) bool {
	for _, e := range q.events {
		if e.name == name {
			return true
		}
	}
	return false
}

// Deadline returns the time of the next event. Returns zero if a function has
// been posted to the queue, meaning that Execute() should be called as soon
// as possible. Returns Never if there is nothing to do.
func (q *Queue) Deadline() uint64 {
	if q.posted.Load() {
		return 0
	}
	if len(q.events) == 0 {
		return Never
	}
	return q.events[0].deadline
}

// Execute all posted functions and all events with a deadline at or before
// now. Events scheduled by an executing event are executed in the same call
// if they are due.
func (q *Queue) Execute(now uint64) {
	q.drain()

	for len(q.events) > 0 && q.events[0].deadline <= now {
		e := heap.Pop(&q.events).(*event)
		logger.Logf(q.env, "EVENTQ", "%s at %d (due %d)", e.name, now, e.deadline)
		e.action(e.deadline)
	}
}

// drain the inbox of posted functions.
func (q *Queue) drain() {
	if !q.posted.Swap(false) {
		return
	}
	for {
		select {
		case f := <-q.inbox:
			f()
		default:
			return
		}
	}
}

// Post a function to be run by the machine's goroutine the next time events
// are executed. Safe to call from any goroutine.
func (q *Queue) Post(f func()) {
	q.inbox <- f
	q.posted.Store(true)
}
