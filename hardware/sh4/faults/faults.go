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

// Package faults records the exceptions raised by the CPU. It is a diagnostic
// record only and has no effect on the emulation.
package faults

import (
	"fmt"
	"io"
)

// Category classifies the reason for an exception.
type Category string

// List of valid Category values.
const (
	AddressError       Category = "address error"
	TLBMiss            Category = "tlb miss"
	TLBProtection      Category = "tlb protection"
	InitialWrite       Category = "initial page write"
	MultiHit           Category = "tlb multi-hit"
	IllegalInstruction Category = "illegal instruction"
	Trap               Category = "trap"
	DoubleFault        Category = "double fault"
)

// Entry is a single entry in the fault log.
type Entry struct {
	Category Category

	// description of the event that triggered the fault
	Event string

	// addresses related to the fault
	PC      uint32
	Address uint32

	// number of times this specific fault has been seen
	Count int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %08x (PC: %08x)", e.Category, e.Event, e.Address, e.PC)
}

type key struct {
	category Category
	pc       uint32
	address  uint32
}

// Faults records exceptions raised by the CPU.
type Faults struct {
	entries map[key]*Entry

	// all the faults in order of the first time they appear. the Count field
	// of the entry can be used to see if that entry was seen more than once
	// *after* the first appearance
	Log []*Entry

	// is true once a double fault has been recorded. the CPU halts after a
	// double fault so it will be the last entry in the log
	HasDoubleFault bool
}

// NewFaults is the preferred method of initialisation for the Faults type.
func NewFaults() Faults {
	return Faults{
		entries: make(map[key]*Entry),
	}
}

// Clear all entries from faults log. Does not clear the HasDoubleFault flag.
func (flt *Faults) Clear() {
	clear(flt.entries)
	flt.Log = flt.Log[:0]
}

// WriteLog writes the list of faults in the order they were added.
func (flt Faults) WriteLog(w io.Writer) {
	for _, e := range flt.Log {
		io.WriteString(w, e.String())
		io.WriteString(w, "\n")
	}
}

// NewEntry adds a new entry to the list of faults.
func (flt *Faults) NewEntry(event string, category Category, pc uint32, address uint32) {
	k := key{category: category, pc: pc, address: address}

	e, found := flt.entries[k]
	if !found {
		e = &Entry{
			Category: category,
			Event:    event,
			PC:       pc,
			Address:  address,
		}

		// record entry
		flt.entries[k] = e

		// update log
		flt.Log = append(flt.Log, e)
	}

	// increase the count for this entry
	e.Count++

	if category == DoubleFault {
		flt.HasDoubleFault = true
	}
}
