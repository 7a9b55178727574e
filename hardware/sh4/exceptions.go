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
	"errors"
	"fmt"

	"github.com/hean01/lxdream/hardware/sh4/faults"
	"github.com/hean01/lxdream/hardware/sh4/mmu"
	"github.com/hean01/lxdream/logger"
)

// Exception event codes that are not raised by the MMU.
const (
	codeTrap        = 0x160
	codeIllegal     = 0x180
	codeIllegalSlot = 0x1a0
)

// Exception vectors, as offsets from VBR.
const (
	vectorGeneral   = 0x100
	vectorTLBMiss   = 0x400
	vectorInterrupt = 0x600
)

// illegalInstruction is returned by the executor for an instruction that
// cannot be executed in the current state.
type illegalInstruction struct {
	code uint32
}

func (e illegalInstruction) Error() string {
	if e.code == codeIllegalSlot {
		return "illegal slot instruction"
	}
	return "illegal instruction"
}

// isException returns true if the error is raised in the guest rather than
// being a failure of the emulation.
func isException(err error) bool {
	var f mmu.Fault
	var i illegalInstruction
	return errors.As(err, &f) || errors.As(err, &i)
}

// takeException raises the guest exception described by the error. The spc
// argument is the address of the instruction that caused the exception.
func (sh *CPU) takeException(err error, spc uint32) {
	var f mmu.Fault
	if errors.As(err, &f) {
		sh.Faults.NewEntry(f.Kind.String(), faultCategory(f.Kind), spc, f.VMA)
		switch {
		case f.Kind.Reset():
			logger.Logf(sh.env, "SH4", "%s at %08x: reset", f.Kind, f.VMA)
			sh.reset(f.Kind.Code())
		case f.Kind.TLBMiss():
			sh.raiseException(f.Kind.Code(), vectorTLBMiss, spc)
		default:
			sh.raiseException(f.Kind.Code(), vectorGeneral, spc)
		}
		return
	}

	var i illegalInstruction
	if errors.As(err, &i) {
		sh.Faults.NewEntry(i.Error(), faults.IllegalInstruction, spc, spc)
		sh.raiseException(i.code, vectorGeneral, spc)
	}
}

func faultCategory(kind mmu.FaultKind) faults.Category {
	switch kind {
	case mmu.AddressErrorRead, mmu.AddressErrorWrite:
		return faults.AddressError
	case mmu.TLBMissRead, mmu.TLBMissWrite:
		return faults.TLBMiss
	case mmu.TLBProtectionRead, mmu.TLBProtectionWrite:
		return faults.TLBProtection
	case mmu.InitialWrite:
		return faults.InitialWrite
	case mmu.MultiHit:
		return faults.MultiHit
	}
	panic(fmt.Sprintf("unhandled fault kind: %v", kind))
}

// raiseException saves the state of the CPU and jumps to the exception
// handler.
func (sh *CPU) raiseException(code uint32, vector uint32, spc uint32) {
	sh.SSR = sh.SR
	sh.SPC = spc
	sh.SGR = sh.R[15]
	sh.MMU.WriteRegister(mmu.EXPEVT, code)
	sh.SetSR(sh.SR | SRMD | SRRB | SRBL)
	sh.PC = sh.VBR + vector
}

// trap raises the exception for a TRAPA instruction. The spc argument is the
// address of the instruction after the trap.
func (sh *CPU) trap(imm uint32, spc uint32) {
	sh.Faults.NewEntry(fmt.Sprintf("trapa #%d", imm), faults.Trap, spc-2, imm)
	sh.MMU.WriteRegister(mmu.TRA, imm<<2)
	sh.raiseException(codeTrap, vectorGeneral, spc)
}

// reset the processor as the result of an exception. Memory and the TLBs are
// unaffected.
func (sh *CPU) reset(code uint32) {
	sh.MMU.WriteRegister(mmu.EXPEVT, code)
	sh.VBR = 0
	sh.SetSR(srReset)
	sh.PC = resetPC
	sh.MMU.WriteRegister(mmu.MMUCR, 0)
}

// acceptInterrupt raises an exception for the highest priority interrupt
// request if it is not masked. Returns true if an interrupt was accepted.
func (sh *CPU) acceptInterrupt() bool {
	if sh.SR&SRBL == SRBL || !sh.events.PendingIRQ(sh.imask()) {
		return false
	}
	irq, ok := sh.events.AcceptIRQ()
	if !ok {
		return false
	}

	sh.SSR = sh.SR
	sh.SPC = sh.PC
	sh.SGR = sh.R[15]
	sh.MMU.WriteRegister(mmu.INTEVT, irq.Code)
	sh.SetSR(sh.SR | SRMD | SRRB | SRBL)
	sh.PC = sh.VBR + vectorInterrupt
	sh.state = Running

	return true
}
