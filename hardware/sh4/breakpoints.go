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

package sh4

import (
	"sort"

	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/logger"
)

// Breakpoint stops execution before the instruction at the address is
// executed.
type Breakpoint struct {
	Address uint32

	// the breakpoint is removed the first time it is hit
	OneShot bool
}

type breakpoints map[uint32]Breakpoint

func newBreakpoints() breakpoints {
	return make(breakpoints)
}

func (bp breakpoints) has(addr uint32) bool {
	_, ok := bp[addr]
	return ok
}

// SetBreakpoint adds a breakpoint at the virtual address. Any translation of
// the address is discarded so that the breakpoint takes effect.
func (sh *CPU) SetBreakpoint(addr uint32, oneShot bool) {
	sh.breakpoints[addr] = Breakpoint{Address: addr, OneShot: oneShot}
	sh.retranslate(addr)
}

// ClearBreakpoint removes the breakpoint at the virtual address. Returns false
// if there was no breakpoint at the address.
func (sh *CPU) ClearBreakpoint(addr uint32) bool {
	if !sh.breakpoints.has(addr) {
		return false
	}
	delete(sh.breakpoints, addr)
	sh.retranslate(addr)
	return true
}

// Breakpoints returns the breakpoints in address order.
func (sh *CPU) Breakpoints() []Breakpoint {
	l := make([]Breakpoint, 0, len(sh.breakpoints))
	for _, b := range sh.breakpoints {
		l = append(l, b)
	}
	sort.Slice(l, func(i, j int) bool {
		return l[i].Address < l[j].Address
	})
	return l
}

// retranslate discards translations of the virtual address. All translations
// are discarded if the address cannot be translated.
func (sh *CPU) retranslate(addr uint32) {
	pa, ok := sh.MMU.TranslateDisasm(addr)
	if !ok {
		logger.Logf(sh.env, "SH4", "breakpoint at untranslatable address %08x: flushing translations", addr)
		sh.FlushTranslations()
		return
	}
	sh.Cache.InvalidateWord(memorymap.Canonical(pa))
}

// breakpointHit returns true if execution should stop at the address. A
// breakpoint at the address execution was resumed from is ignored.
func (sh *CPU) breakpointHit(addr uint32) bool {
	b, ok := sh.breakpoints[addr]
	if !ok {
		return false
	}
	if sh.starting && sh.sliceCycle == 0 && addr == sh.PC {
		return false
	}
	if b.OneShot {
		delete(sh.breakpoints, addr)
	}
	return true
}
