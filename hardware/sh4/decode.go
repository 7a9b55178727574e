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
	"github.com/hean01/lxdream/hardware/memory/bus"
)

// instruction translates a single guest instruction, and the instruction in
// its delay slot if it has one. Returns true if the instruction ends the
// block.
func (tr *translator) instruction(pc uint32, ir uint16, inSlot bool) bool {
	tr.next = pc + 2

	n := uint8(ir>>8) & 0x0f
	m := uint8(ir>>4) & 0x0f
	imm8 := uint32(ir & 0xff)
	simm8 := uint32(int32(int8(ir)))
	disp4 := uint32(ir & 0x0f)

	switch ir >> 12 {
	case 0x0:
		return tr.group0(pc, ir, n, inSlot)

	case 0x1:
		// MOV.L Rm,@(disp,Rn)
		tr.store(n, m, bus.Long, disp4*4, 0, inSlot)

	case 0x2:
		switch ir & 0x0f {
		case 0x0:
			tr.store(n, m, bus.Byte, 0, 0, inSlot)
		case 0x1:
			tr.store(n, m, bus.Word, 0, 0, inSlot)
		case 0x2:
			tr.store(n, m, bus.Long, 0, 0, inSlot)
		case 0x4:
			tr.store(n, m, bus.Byte, 0, opPreDec, inSlot)
		case 0x5:
			tr.store(n, m, bus.Word, 0, opPreDec, inSlot)
		case 0x6:
			tr.store(n, m, bus.Long, 0, opPreDec, inSlot)
		case 0x8:
			tr.emit(hostOp{code: opTst, rn: n, rm: m})
		case 0x9:
			tr.emit(hostOp{code: opAnd, rn: n, rm: m})
		case 0xa:
			tr.emit(hostOp{code: opXor, rn: n, rm: m})
		case 0xb:
			tr.emit(hostOp{code: opOr, rn: n, rm: m})
		default:
			return tr.illegal(inSlot)
		}

	case 0x3:
		switch ir & 0x0f {
		case 0x0:
			tr.emit(hostOp{code: opCmp, rn: n, rm: m, aux: cmpEQ})
		case 0x2:
			tr.emit(hostOp{code: opCmp, rn: n, rm: m, aux: cmpHS})
		case 0x3:
			tr.emit(hostOp{code: opCmp, rn: n, rm: m, aux: cmpGE})
		case 0x6:
			tr.emit(hostOp{code: opCmp, rn: n, rm: m, aux: cmpHI})
		case 0x7:
			tr.emit(hostOp{code: opCmp, rn: n, rm: m, aux: cmpGT})
		case 0x8:
			tr.emit(hostOp{code: opSub, rn: n, rm: m})
		case 0xc:
			tr.emit(hostOp{code: opAdd, rn: n, rm: m})
		default:
			return tr.illegal(inSlot)
		}

	case 0x4:
		return tr.group4(pc, ir, n, inSlot)

	case 0x5:
		// MOV.L @(disp,Rm),Rn
		tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Long), imm: disp4 * 4})

	case 0x6:
		switch ir & 0x0f {
		case 0x0:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Byte)})
		case 0x1:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Word)})
		case 0x2:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Long)})
		case 0x3:
			tr.emit(hostOp{code: opMov, rn: n, rm: m})
		case 0x4:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Byte) | opPostInc})
		case 0x5:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Word) | opPostInc})
		case 0x6:
			tr.emit(hostOp{code: opLoad, rn: n, rm: m, aux: uint16(bus.Long) | opPostInc})
		case 0x7:
			tr.emit(hostOp{code: opNot, rn: n, rm: m})
		default:
			return tr.illegal(inSlot)
		}

	case 0x7:
		// ADD #imm,Rn
		tr.emit(hostOp{code: opAddImm, rn: n, imm: simm8})

	case 0x8:
		target := pc + 4 + simm8*2
		switch n {
		case 0x8:
			// CMP/EQ #imm,R0
			tr.emit(hostOp{code: opCmpImm, imm: simm8})
		case 0x9:
			return tr.conditional(pc, target, true, false, inSlot)
		case 0xb:
			return tr.conditional(pc, target, false, false, inSlot)
		case 0xd:
			return tr.conditional(pc, target, true, true, inSlot)
		case 0xf:
			return tr.conditional(pc, target, false, true, inSlot)
		default:
			return tr.illegal(inSlot)
		}

	case 0x9:
		// MOV.W @(disp,PC),Rn
		tr.emit(hostOp{code: opLoadPC, rn: n, aux: uint16(bus.Word), imm: tr.rel(pc + 4 + imm8*2)})

	case 0xa, 0xb:
		// BRA and BSR
		if inSlot {
			return tr.illegal(inSlot)
		}
		disp := uint32(int32(int16(ir<<4)) >> 4)
		target := pc + 4 + disp*2
		if ir>>12 == 0xb {
			tr.emit(hostOp{code: opSetPR, imm: tr.rel(pc + 4)})
		}
		tr.delaySlot(pc)
		tr.emit(hostOp{code: opExit, imm: tr.rel(target), aux: tr.icount(pc + 4)})
		return true

	case 0xc:
		switch n {
		case 0x3:
			// TRAPA #imm
			if inSlot {
				return tr.illegal(inSlot)
			}
			tr.emit(hostOp{code: opTrapa, imm: imm8, aux: tr.icount(pc)})
			return true
		case 0x7:
			// MOVA @(disp,PC),R0
			tr.emit(hostOp{code: opMovPC, imm: tr.rel((pc &^ 3) + 4 + imm8*4)})
		default:
			return tr.illegal(inSlot)
		}

	case 0xd:
		// MOV.L @(disp,PC),Rn
		tr.emit(hostOp{code: opLoadPC, rn: n, aux: uint16(bus.Long), imm: tr.rel((pc &^ 3) + 4 + imm8*4)})

	case 0xe:
		// MOV #imm,Rn
		tr.emit(hostOp{code: opMovImm, rn: n, imm: simm8})

	default:
		return tr.illegal(inSlot)
	}

	return false
}

func (tr *translator) group0(pc uint32, ir uint16, n uint8, inSlot bool) bool {
	switch ir {
	case 0x0009:
		tr.emit(hostOp{code: opNop})
		return false
	case 0x0008:
		tr.emit(hostOp{code: opSetT, imm: 0})
		return false
	case 0x0018:
		tr.emit(hostOp{code: opSetT, imm: 1})
		return false
	case 0x000b:
		// RTS
		if inSlot {
			return tr.illegal(inSlot)
		}
		tr.emit(hostOp{code: opTarget, aux: targetPR})
		tr.delaySlot(pc)
		tr.emit(hostOp{code: opExitTarget, aux: tr.icount(pc + 4)})
		return true
	case 0x002b:
		// RTE
		if inSlot || !tr.privileged {
			return tr.illegal(inSlot)
		}
		tr.emit(hostOp{code: opRTE})

		// the slot executes with the restored SR
		tr.rteSlot = true
		tr.delaySlot(pc)
		tr.rteSlot = false
		tr.emit(hostOp{code: opExitTarget, aux: tr.icount(pc + 4)})
		return true
	case 0x001b:
		// SLEEP
		if inSlot || !tr.privileged {
			return tr.illegal(inSlot)
		}
		tr.emit(hostOp{code: opSleep, imm: tr.rel(pc + 2), aux: tr.icount(pc + 2)})
		return true
	case 0x0038:
		// LDTLB
		if !tr.privilegedInstruction(inSlot) {
			return true
		}
		tr.emit(hostOp{code: opLdtlb})
		return false
	}

	switch ir & 0xf0ff {
	case 0x0029:
		tr.emit(hostOp{code: opMovt, rn: n})
	case 0x0083:
		var aux uint16
		if inSlot {
			aux = opInSlot
		}
		tr.emit(hostOp{code: opPref, rn: n, aux: aux})
	case 0x0012:
		tr.emit(hostOp{code: opStc, rn: n, aux: ctlGBR})
	case 0x002a:
		tr.emit(hostOp{code: opStc, rn: n, aux: ctlPR})
	case 0x0002, 0x0022, 0x0032, 0x0042, 0x003a:
		if !tr.privilegedInstruction(inSlot) {
			return true
		}
		tr.emit(hostOp{code: opStc, rn: n, aux: controlRegister(ir)})
	default:
		return tr.illegal(inSlot)
	}

	return false
}

func (tr *translator) group4(pc uint32, ir uint16, n uint8, inSlot bool) bool {
	switch ir & 0xf0ff {
	case 0x4000:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLL, imm: 1})
	case 0x4001:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLR, imm: 1})
	case 0x4021:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftAR, imm: 1})
	case 0x4008:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLLn, imm: 2})
	case 0x4018:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLLn, imm: 8})
	case 0x4028:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLLn, imm: 16})
	case 0x4009:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLRn, imm: 2})
	case 0x4019:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLRn, imm: 8})
	case 0x4029:
		tr.emit(hostOp{code: opShift, rn: n, aux: shiftLRn, imm: 16})
	case 0x4010:
		tr.emit(hostOp{code: opDt, rn: n})

	case 0x401e:
		tr.emit(hostOp{code: opLdc, rm: n, aux: ctlGBR})
	case 0x402a:
		tr.emit(hostOp{code: opLdc, rm: n, aux: ctlPR})
	case 0x400e:
		// LDC Rm,SR
		if inSlot || !tr.privileged {
			return tr.illegal(inSlot)
		}
		tr.emit(hostOp{code: opLdc, rm: n, aux: ctlSR})

		// the mode of the rest of the block may have changed
		tr.emit(hostOp{code: opExit, imm: tr.rel(pc + 2), aux: tr.icount(pc + 2)})
		return true
	case 0x402e, 0x403e, 0x404e:
		if !tr.privilegedInstruction(inSlot) {
			return true
		}
		tr.emit(hostOp{code: opLdc, rm: n, aux: controlRegister(ir)})

	case 0x402b, 0x400b:
		// JMP and JSR
		if inSlot {
			return tr.illegal(inSlot)
		}
		tr.emit(hostOp{code: opTarget, rm: n, aux: targetReg})
		if ir&0xf0ff == 0x400b {
			tr.emit(hostOp{code: opSetPR, imm: tr.rel(pc + 4)})
		}
		tr.delaySlot(pc)
		tr.emit(hostOp{code: opExitTarget, aux: tr.icount(pc + 4)})
		return true

	default:
		return tr.illegal(inSlot)
	}

	return false
}

// controlRegister returns the control register selected by bits 4 to 7 of a
// privileged STC or LDC instruction.
func controlRegister(ir uint16) uint16 {
	switch (ir >> 4) & 0x0f {
	case 0x0:
		return ctlSR
	case 0x2:
		return ctlVBR
	case 0x3:
		if ir&0x0f == 0x0a {
			return ctlSGR
		}
		return ctlSSR
	case 0x4:
		return ctlSPC
	}
	return ctlGBR
}

// conditional translates BT, BF, BT/S and BF/S.
func (tr *translator) conditional(pc uint32, target uint32, t bool, delayed bool, inSlot bool) bool {
	if inSlot {
		return tr.illegal(inSlot)
	}

	var cond uint8
	if t {
		cond = 1
	}

	if !delayed {
		tr.emit(hostOp{code: opExitT, rm: cond, imm: tr.rel(target), aux: tr.icount(pc + 2)})
		tr.emit(hostOp{code: opExit, imm: tr.rel(pc + 2), aux: tr.icount(pc + 2)})
		return true
	}

	tr.emit(hostOp{code: opLatchT, rm: cond})
	tr.delaySlot(pc)
	tr.emit(hostOp{code: opExitLatch, imm: tr.rel(target), aux: tr.icount(pc + 4)})
	tr.emit(hostOp{code: opExit, imm: tr.rel(pc + 4), aux: tr.icount(pc + 4)})
	return true
}

// delaySlot translates the instruction after the branch at pc. Exceptions
// raised by the instruction in the slot are reported at the branch.
func (tr *translator) delaySlot(pc uint32) {
	slot := pc + 2
	tr.recovery(pc)

	ir, ok := tr.fetch(slot)
	if ok {
		tr.instruction(slot, ir, true)
	} else {
		tr.emit(hostOp{code: opFetchFault, imm: tr.rel(slot), aux: tr.icount(pc)})
	}

	tr.next = pc + 4
}

func (tr *translator) store(n uint8, m uint8, width bus.Width, disp uint32, flags uint16, inSlot bool) {
	aux := uint16(width) | flags
	if inSlot {
		aux |= opInSlot
	}
	tr.emit(hostOp{code: opStore, rn: n, rm: m, aux: aux, imm: disp})
}

// privilegedInstruction returns false if a privileged instruction cannot be
// translated, after emitting the illegal instruction exception. In the delay
// slot of RTE the privilege is checked when the slot executes.
func (tr *translator) privilegedInstruction(inSlot bool) bool {
	if tr.rteSlot {
		tr.emit(hostOp{code: opCheckPrivileged, imm: codeIllegalSlot})
		return true
	}
	if !tr.privileged {
		tr.illegal(inSlot)
		return false
	}
	return true
}

// illegal emits an illegal instruction exception. Always returns true.
func (tr *translator) illegal(inSlot bool) bool {
	code := uint32(codeIllegal)
	if inSlot {
		code = codeIllegalSlot
	}
	tr.emit(hostOp{code: opIllegal, imm: code})
	return true
}
