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
	"encoding/binary"

	"github.com/hean01/lxdream/hardware/xlat"
)

// opcode identifies a host op.
type opcode uint8

// List of host ops. In the descriptions, rn and rm are general register
// numbers, imm is the 32 bit operand and aux is the 16 bit operand. Addresses
// written as "start+imm" are relative to the guest address of the start of the
// block.
const (
	opNop opcode = iota

	// rn = imm
	opMovImm

	// rn = rm
	opMov

	// rn = start+imm
	opMovPC

	// rn = mem[rm+imm]. aux is the access width, with opPostInc if rm is
	// incremented by the width after the load
	opLoad

	// rn = mem[start+imm]. aux is the access width
	opLoadPC

	// mem[rn+imm] = rm. aux is the access width, with opPreDec if rn is
	// decremented by the width before the store and opInSlot if the store is
	// in a delay slot
	opStore

	// arithmetic and logic. rn = rn op rm
	opAdd
	opSub
	opAnd
	opOr
	opXor

	// rn = rn + imm
	opAddImm

	// rn = ^rm
	opNot

	// T = rn cmp rm. aux is the comparison
	opCmp

	// T = r0 == imm
	opCmpImm

	// T = (rn & rm) == 0
	opTst

	// rn = rn shift imm. aux is the kind of shift. single bit shifts also
	// set T
	opShift

	// rn--, T = rn == 0
	opDt

	// rn = T
	opMovt

	// T = imm
	opSetT

	// control register (aux) = rm
	opLdc

	// rn = control register (aux)
	opStc

	// the block exits to start+imm after aux instructions
	opExit

	// the block exits to start+imm after aux instructions if T equals rm
	opExitT

	// latch = T equals rm. used by delayed conditional branches so that the
	// delay slot can change T
	opLatchT

	// the block exits to start+imm after aux instructions if latch is set
	opExitLatch

	// target = rm, or PR or SPC depending on aux
	opTarget

	// PR = start+imm
	opSetPR

	// the block exits to target after aux instructions
	opExitTarget

	// return from exception. target = SPC, SR = SSR
	opRTE

	// trap. TRA = imm<<2, aux is the number of instructions before the trap
	opTrapa

	// raise the exception code imm
	opIllegal

	// load the UTLB entry selected by MMUCR.URC from PTEH, PTEL and PTEA
	opLdtlb

	// prefetch rn. flushes the store queue if rn is a store queue address.
	// aux is opInSlot if the prefetch is in a delay slot
	opPref

	// enter the sleep state. the block exits to the instruction after
	// the sleep after aux instructions
	opSleep

	// stop if there is a breakpoint at start+aux*2
	opBreakpoint

	// the instruction at start+imm could not be fetched during translation.
	// aux is the number of instructions before the branch that the
	// instruction is the delay slot of
	opFetchFault

	// raise the exception code imm if the CPU is not in privileged mode
	opCheckPrivileged
)

// bits of the aux field of load and store ops.
const (
	opWidthMask = 0x00ff
	opPostInc   = 0x0100
	opPreDec    = 0x0200
	opInSlot    = 0x0400
)

// comparisons for the opCmp op.
const (
	cmpEQ = iota
	cmpHS
	cmpGE
	cmpHI
	cmpGT
)

// shifts for the opShift op.
const (
	shiftLL = iota
	shiftLR
	shiftAR
	shiftLLn
	shiftLRn
)

// control registers for the opLdc and opStc ops.
const (
	ctlSR = iota
	ctlGBR
	ctlVBR
	ctlSSR
	ctlSPC
	ctlSGR
	ctlPR
)

// sources for the opTarget op.
const (
	targetReg = iota
	targetPR
)

// opSize is the encoded size of a host op.
//
//	byte 0      opcode
//	byte 1      rn<<4 | rm
//	bytes 2-3   aux
//	bytes 4-7   imm
//	bytes 8-11  linked block (exit ops only)
//	bytes 12-15 use list of the linked block (exit ops only)
const opSize = 16

// the offset of the link fields in an encoded op.
const opLinkOffset = 8

// maxInstructionOps is the largest number of host ops emitted for a single
// guest instruction, including the instruction in its delay slot and a
// breakpoint.
const maxInstructionOps = 8

// MaxInstructionSize is the largest number of bytes of host code for a single
// guest instruction.
const MaxInstructionSize = maxInstructionOps * opSize

type hostOp struct {
	code opcode
	rn   uint8
	rm   uint8
	aux  uint16
	imm  uint32

	link   xlat.BlockID
	handle uint32
}

func (op hostOp) encode(b []byte) {
	b[0] = uint8(op.code)
	b[1] = op.rn<<4 | op.rm&0x0f
	binary.LittleEndian.PutUint16(b[2:], op.aux)
	binary.LittleEndian.PutUint32(b[4:], op.imm)
	binary.LittleEndian.PutUint32(b[8:], uint32(op.link))
	binary.LittleEndian.PutUint32(b[12:], op.handle)
}

func decodeOp(b []byte) hostOp {
	return hostOp{
		code:   opcode(b[0]),
		rn:     b[1] >> 4,
		rm:     b[1] & 0x0f,
		aux:    binary.LittleEndian.Uint16(b[2:]),
		imm:    binary.LittleEndian.Uint32(b[4:]),
		link:   xlat.BlockID(binary.LittleEndian.Uint32(b[8:])),
		handle: binary.LittleEndian.Uint32(b[12:]),
	}
}

// setLink writes the link fields of the encoded op.
func setLink(b []byte, link xlat.BlockID, handle uint32) {
	binary.LittleEndian.PutUint32(b[opLinkOffset:], uint32(link))
	binary.LittleEndian.PutUint32(b[opLinkOffset+4:], handle)
}

// emitter writes host ops to the payload of the block under construction.
type emitter struct {
	code []byte
	off  uint32
}

func (em *emitter) emit(op hostOp) {
	op.encode(em.code[em.off:])
	em.off += opSize
}

// remaining returns the number of bytes left in the payload.
func (em *emitter) remaining() uint32 {
	return uint32(len(em.code)) - em.off
}
