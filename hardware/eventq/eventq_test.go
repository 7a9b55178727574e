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

package eventq_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/test"
)

func newQueue(t *testing.T) *eventq.Queue {
	t.Helper()
	prefs, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	env, err := environment.NewEnvironment(environment.MainEmulation, prefs)
	test.DemandSuccess(t, err)
	return eventq.NewQueue(env)
}

func TestOrdering(t *testing.T) {
	q := newQueue(t)
	test.ExpectEquality(t, q.Deadline(), eventq.Never)

	var order []string
	record := func(name string) eventq.Action {
		return func(_ uint64) {
			order = append(order, name)
		}
	}

	q.Schedule("c", 300, record("c"))
	q.Schedule("a", 100, record("a"))
	q.Schedule("b", 100, record("b"))
	q.Schedule("d", 400, record("d"))
	test.ExpectEquality(t, q.Deadline(), uint64(100))

	q.Execute(99)
	test.ExpectEquality(t, len(order), 0)

	q.Execute(300)
	test.ExpectEquality(t, len(order), 3)
	test.ExpectEquality(t, order[0], "a")
	test.ExpectEquality(t, order[1], "b")
	test.ExpectEquality(t, order[2], "c")
	test.ExpectEquality(t, q.Deadline(), uint64(400))

	// rescheduling replaces the existing event
	q.Schedule("d", 200, record("d"))
	test.ExpectEquality(t, q.Deadline(), uint64(200))
	test.ExpectSuccess(t, q.Cancel("d"))
	test.ExpectFailure(t, q.Cancel("d"))
	test.ExpectEquality(t, q.Deadline(), eventq.Never)
}

func TestRescheduleFromAction(t *testing.T) {
	q := newQueue(t)

	count := 0
	var due []uint64
	var tick eventq.Action
	tick = func(deadline uint64) {
		count++
		due = append(due, deadline)
		q.Schedule("tick", deadline+10, tick)
	}
	q.Schedule("tick", 10, tick)

	// events that become due while executing are executed in the same call.
	// each is given the deadline it was scheduled for, not the time of the
	// call to Execute()
	q.Execute(35)
	test.ExpectEquality(t, count, 3)
	test.ExpectEquality(t, len(due), 3)
	test.ExpectEquality(t, due[0], uint64(10))
	test.ExpectEquality(t, due[1], uint64(20))
	test.ExpectEquality(t, due[2], uint64(30))
	test.ExpectSuccess(t, q.Scheduled("tick"))
	test.ExpectEquality(t, q.Deadline(), uint64(40))
}

func TestIRQ(t *testing.T) {
	q := newQueue(t)

	test.ExpectFailure(t, q.PendingIRQ(0))
	_, ok := q.AcceptIRQ()
	test.ExpectFailure(t, ok)

	q.RaiseIRQ(eventq.IRQ{Code: 0x400, Level: 5})
	q.RaiseIRQ(eventq.IRQ{Code: 0x420, Level: 9})
	q.RaiseIRQ(eventq.IRQ{Code: 0x400, Level: 5})

	test.ExpectSuccess(t, q.PendingIRQ(8))
	test.ExpectFailure(t, q.PendingIRQ(9))

	irq, ok := q.AcceptIRQ()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, irq.Code, uint32(0x420))

	test.ExpectFailure(t, q.PendingIRQ(5))
	test.ExpectSuccess(t, q.PendingIRQ(4))

	q.ClearIRQ(0x400)
	test.ExpectFailure(t, q.PendingIRQ(0))
}

func TestPost(t *testing.T) {
	q := newQueue(t)

	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	test.ExpectEquality(t, q.Deadline(), uint64(0))
	q.Execute(0)
	test.ExpectEquality(t, count, 10)
	test.ExpectEquality(t, q.Deadline(), eventq.Never)
}
