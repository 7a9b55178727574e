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

// IRQ is an interrupt request.
type IRQ struct {
	// the value written to the INTEVT register when the interrupt is accepted
	Code uint32

	// the interrupt priority level. a request is only accepted by the CPU if
	// the level is higher than the interrupt mask in the status register
	Level int
}

// pending interrupts in the order they were raised.
type irqs []IRQ

// RaiseIRQ adds the interrupt request to the pending requests. Raising a
// request that is already pending has no effect.
func (q *Queue) RaiseIRQ(irq IRQ) {
	for _, r := range q.irqs {
		if r.Code == irq.Code {
			return
		}
	}
	q.irqs = append(q.irqs, irq)
}

// ClearIRQ removes the pending interrupt request with the code.
func (q *Queue) ClearIRQ(code uint32) {
	for i, r := range q.irqs {
		if r.Code == code {
			q.irqs = append(q.irqs[:i], q.irqs[i+1:]...)
			return
		}
	}
}

// highest returns the index of the pending request with the highest level.
// The earliest raised request wins if more than one has the same level.
func (q *Queue) highest() int {
	idx := -1
	for i, r := range q.irqs {
		if idx == -1 || r.Level > q.irqs[idx].Level {
			idx = i
		}
	}
	return idx
}

// PendingIRQ returns true if there is a pending interrupt request with a
// level higher than the mask.
func (q *Queue) PendingIRQ(mask int) bool {
	i := q.highest()
	return i >= 0 && q.irqs[i].Level > mask
}

// AcceptIRQ removes and returns the highest priority pending interrupt
// request. Returns false if there are no pending requests.
func (q *Queue) AcceptIRQ() (IRQ, bool) {
	i := q.highest()
	if i < 0 {
		return IRQ{}, false
	}
	irq := q.irqs[i]
	q.irqs = append(q.irqs[:i], q.irqs[i+1:]...)
	return irq, true
}
