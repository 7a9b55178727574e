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
	"github.com/hean01/lxdream/assert"
	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/memory"
	"github.com/hean01/lxdream/hardware/sh4/faults"
	"github.com/hean01/lxdream/hardware/sh4/mmu"
	"github.com/hean01/lxdream/hardware/xlat"
	"github.com/hean01/lxdream/logger"
)

// Sentinal errors returned by the CPU.
const (
	DoubleFault = "sh4: double fault at %08x"
	NoCode      = "sh4: no executable memory at %08x"
	NoExit      = "sh4: block at %08x has no exit"
	BadOp       = "sh4: invalid host op %d in block at %08x"
)

// State of the CPU.
type State int

// List of valid State values.
const (
	Running State = iota
	Sleeping
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Sleeping:
		return "sleeping"
	case Halted:
		return "halted"
	}
	return "unknown state"
}

// the PC after a reset.
const resetPC = 0xa0000000

// exitSite is the exit op of a block that might be linked to the block that
// is executed next.
type exitSite struct {
	block  xlat.BlockID
	handle uint32
	off    uint32

	// the address the exit op jumped to
	target uint32
}

// CPU is an SH4 processor executing translated code.
type CPU struct {
	env *environment.Environment

	Registers

	MMU   *mmu.MMU
	Cache *xlat.Cache

	mem    *memory.Memory
	events *eventq.Queue

	// record of exceptions raised
	Faults faults.Faults

	// nanoseconds per instruction
	period uint64

	// nanoseconds elapsed in the current slice and before the current slice
	sliceCycle uint64
	clock      uint64

	state State

	// the translation cache has been flushed since the current block
	// started. the block must exit at the next opportunity
	flushed bool

	// execution has just been resumed. a breakpoint at the resume address is
	// ignored for the first instruction
	starting bool

	// the reason the current slice ended early
	exit Exit

	breakpoints breakpoints
	syscalls    Syscalls

	storeQueue [2][8]uint32

	// exit ops linked to a block, keyed by the use list handle of the block
	links map[uint32][]exitSite
	site  *exitSite

	// handle for the next block committed to the cache
	serial uint32

	owner assert.Owner
}

// NewCPU is the preferred method of initialisation for the CPU type. The
// memory is plumbed to the MMU and translation cache of the CPU.
func NewCPU(env *environment.Environment, mem *memory.Memory, events *eventq.Queue) (*CPU, error) {
	generations := xlat.SingleGeneration
	if env.Prefs.Generational.Get().(bool) {
		generations = xlat.MultiGeneration
	}

	cache, err := xlat.NewCache(env, env.Prefs.ArenaSize.Get().(int), generations)
	if err != nil {
		return nil, curated.Errorf("sh4: %v", err)
	}

	sh := &CPU{
		env:    env,
		Cache:  cache,
		mem:    mem,
		events: events,
		Faults: faults.NewFaults(),
		period: uint64(env.Prefs.CPUPeriod.Get().(int)),
		links:  make(map[uint32][]exitSite),
		owner:  assert.NewOwner(),
	}
	sh.breakpoints = newBreakpoints()
	sh.MMU = mmu.NewMMU(env, sh, mem)
	mem.Plumb(sh.MMU, cache)
	cache.SetTarget(sh)

	sh.Reset()

	logger.Logf(env, "SH4", "cpu period %dns, %s translation cache", sh.period, generations)

	return sh, nil
}

// Close releases the translation cache.
func (sh *CPU) Close() error {
	return sh.Cache.Close()
}

// Claim transfers ownership of the CPU to the calling goroutine. Only the
// owner may run the CPU.
func (sh *CPU) Claim() {
	sh.owner.Claim()
}

// Reset the CPU to its power-on state. All translated code is discarded.
func (sh *CPU) Reset() {
	sh.Registers = Registers{
		SR: srReset,
		PC: resetPC,
	}
	sh.MMU.Reset()
	sh.storeQueue = [2][8]uint32{}
	sh.state = Running
	sh.FlushTranslations()
	sh.flushed = false
}

// State returns the state of the CPU.
func (sh *CPU) State() State {
	return sh.state
}

// Clock returns the number of nanoseconds the CPU has run for.
func (sh *CPU) Clock() uint64 {
	return sh.clock + sh.sliceCycle
}

// Start must be called when execution is resumed by the user, so that a
// breakpoint at the current PC does not stop execution immediately.
func (sh *CPU) Start() {
	sh.starting = true
}

// SetSyscalls sets the handler for calls to the syscall hook addresses.
func (sh *CPU) SetSyscalls(s Syscalls) {
	sh.syscalls = s
}

// FlushTranslations implements the mmu.CPU interface.
func (sh *CPU) FlushTranslations() {
	sh.Cache.Flush()
	clear(sh.links)
	sh.site = nil
	sh.flushed = true
}

// mode returns the mode tag for blocks translated in the current state.
func (sh *CPU) mode() uint32 {
	return sh.SR & SRMD
}

// addCycles advances the slice by the number of instructions.
func (sh *CPU) addCycles(icount uint32) {
	sh.sliceCycle += uint64(icount) * sh.period
}
