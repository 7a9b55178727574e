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
	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/hardware/sh4/faults"
	"github.com/hean01/lxdream/hardware/xlat"
	"github.com/hean01/lxdream/logger"
)

// Exit is the reason a slice ended.
type Exit int

// List of valid Exit values.
const (
	// the slice ran to completion
	ExitNone Exit = iota

	// execution stopped at a breakpoint. the PC is the address of the
	// breakpoint
	ExitBreakpoint

	// the CPU has halted. execution cannot continue without a reset
	ExitHalt
)

func (e Exit) String() string {
	switch e {
	case ExitNone:
		return "none"
	case ExitBreakpoint:
		return "breakpoint"
	case ExitHalt:
		return "halt"
	}
	return "unknown exit"
}

// Normal returns true if the slice ran to completion.
func (e Exit) Normal() bool {
	return e == ExitNone
}

// RunSlice executes translated code for the number of nanoseconds. Returns
// early if a breakpoint is hit or the CPU halts. A non-nil error is a failure
// of the emulation, after which the CPU is halted.
//
// Must only be called from the goroutine that owns the CPU.
func (sh *CPU) RunSlice(nanosecs uint64) (Exit, error) {
	sh.owner.Check("sh4")

	if sh.state == Halted {
		return ExitHalt, nil
	}

	sh.sliceCycle = 0
	sh.exit = ExitNone
	defer func() {
		sh.clock += sh.sliceCycle
		sh.sliceCycle = 0
	}()

	next := xlat.NoBlock

	for sh.sliceCycle < nanosecs {
		now := sh.clock + sh.sliceCycle
		if sh.events.Deadline() <= now {
			sh.events.Execute(now)
		}
		if sh.acceptInterrupt() {
			next = xlat.NoBlock
			sh.site = nil
		}

		if sh.state == Sleeping {
			sh.sleep(nanosecs)
			continue
		}

		if sh.flushed {
			next = xlat.NoBlock
			sh.flushed = false
		}

		id := next
		if id == xlat.NoBlock {
			if sh.PC > SyscallBase {
				sh.syscall()
			}

			var err error
			id, err = sh.codeByVMA(sh.PC)
			if err != nil {
				sh.state = Halted
				return ExitHalt, err
			}
			if id == xlat.NoBlock {
				id, err = sh.translateBasicBlock(sh.PC)
				if err != nil {
					sh.state = Halted
					return ExitHalt, err
				}
			}
			sh.link(id)
		}

		var err error
		next, err = sh.execute(id)
		sh.starting = false
		if err != nil {
			sh.state = Halted
			return ExitHalt, err
		}
		if sh.exit != ExitNone {
			return sh.exit, nil
		}
	}

	return ExitNone, nil
}

// sleep until the next event or the end of the slice.
func (sh *CPU) sleep(nanosecs uint64) {
	d := sh.events.Deadline()
	if d == eventq.Never || d >= sh.clock+nanosecs {
		sh.sliceCycle = nanosecs
		return
	}
	if d > sh.clock+sh.sliceCycle {
		sh.sliceCycle = d - sh.clock
	}
}

// syscall invokes the syscall handler for the PC and returns to PR.
func (sh *CPU) syscall() {
	if sh.syscalls != nil {
		sh.syscalls.Syscall(sh, sh.PC)
	} else {
		logger.Logf(sh.env, "SH4", "no syscall handler for %08x", sh.PC)
	}
	sh.PC = sh.PR
	sh.site = nil
}

// codeByVMA returns the translated block for the virtual address, updating
// the instruction fetch region if required. Returns NoBlock if there is no
// translation. A fault while updating the fetch region is taken as an
// exception and the PC changed to the exception handler.
func (sh *CPU) codeByVMA(vma uint32) (xlat.BlockID, error) {
	ic := sh.MMU.ICache()

	if !ic.Contains(vma) {
		if err := sh.MMU.UpdateICache(vma); err != nil {
			if !isException(err) {
				return xlat.NoBlock, err
			}
			sh.takeException(err, vma)
			sh.site = nil

			if err := sh.MMU.UpdateICache(sh.PC); err != nil {
				logger.Logf(sh.env, "SH4", "double fault at %08x: halting", sh.PC)
				sh.Faults.NewEntry(err.Error(), faults.DoubleFault, vma, sh.PC)
				return xlat.NoBlock, curated.Errorf(DoubleFault, sh.PC)
			}
		}

		if !ic.Contains(sh.PC) {
			return xlat.NoBlock, curated.Errorf(NoCode, sh.PC)
		}
	}

	return sh.Cache.LookupMode(memorymap.Canonical(ic.Phys(sh.PC)), sh.mode()), nil
}
