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
	"github.com/hean01/lxdream/hardware/memory/bus"
	"github.com/hean01/lxdream/hardware/sh4/mmu"
	"github.com/hean01/lxdream/hardware/xlat"
)

// execute the block. The PC must be the guest address of the start of the
// block. Returns the block to execute next if the exit op taken was linked to
// a block that is still valid.
//
// Guest exceptions are taken before returning. A non-nil error is a failure
// of the emulation.
func (sh *CPU) execute(id xlat.BlockID) (xlat.BlockID, error) {
	code := sh.Cache.Code(id)
	size := sh.Cache.CodeSize(id)
	rec := sh.Cache.Recovery(id)
	start := sh.PC

	sh.Cache.MarkUsed(id)
	sh.flushed = false
	sh.site = nil

	var latch bool
	var target uint32

	for off := uint32(0); off+opSize <= size; off += opSize {
		op := decodeOp(code[off:])

		switch op.code {
		case opNop:

		case opMovImm:
			sh.R[op.rn] = op.imm

		case opMov:
			sh.R[op.rn] = sh.R[op.rm]

		case opMovPC:
			sh.R[op.rn] = start + op.imm

		case opLoad, opLoadPC:
			width := bus.Width(op.aux & opWidthMask)
			addr := start + op.imm
			if op.code == opLoad {
				addr = sh.R[op.rm] + op.imm
			}
			v, err := sh.read(addr, width)
			if err != nil {
				return xlat.NoBlock, sh.exception(rec, off, start, err)
			}
			if op.aux&opPostInc == opPostInc && op.rn != op.rm {
				sh.R[op.rm] += uint32(width)
			}
			sh.R[op.rn] = signExtend(v, width)

		case opStore:
			width := bus.Width(op.aux & opWidthMask)
			addr := sh.R[op.rn] + op.imm
			if op.aux&opPreDec == opPreDec {
				addr = sh.R[op.rn] - uint32(width)
			}
			if err := sh.write(addr, sh.R[op.rm], width); err != nil {
				return xlat.NoBlock, sh.exception(rec, off, start, err)
			}
			if op.aux&opPreDec == opPreDec {
				sh.R[op.rn] = addr
			}

			// the store may have overwritten the block. the block is
			// abandoned after the store and the rest of the block is
			// retranslated
			if op.aux&opInSlot == 0 && sh.abandoned(id) {
				return xlat.NoBlock, sh.exitRecover(rec, off+opSize, start)
			}

		case opAdd:
			sh.R[op.rn] += sh.R[op.rm]
		case opSub:
			sh.R[op.rn] -= sh.R[op.rm]
		case opAnd:
			sh.R[op.rn] &= sh.R[op.rm]
		case opOr:
			sh.R[op.rn] |= sh.R[op.rm]
		case opXor:
			sh.R[op.rn] ^= sh.R[op.rm]
		case opAddImm:
			sh.R[op.rn] += op.imm
		case opNot:
			sh.R[op.rn] = ^sh.R[op.rm]

		case opCmp:
			sh.setT(compare(op.aux, sh.R[op.rn], sh.R[op.rm]))
		case opCmpImm:
			sh.setT(sh.R[0] == op.imm)
		case opTst:
			sh.setT(sh.R[op.rn]&sh.R[op.rm] == 0)

		case opShift:
			sh.shift(op.rn, op.aux, op.imm)

		case opDt:
			sh.R[op.rn]--
			sh.setT(sh.R[op.rn] == 0)

		case opMovt:
			if sh.T() {
				sh.R[op.rn] = 1
			} else {
				sh.R[op.rn] = 0
			}

		case opSetT:
			sh.setT(op.imm != 0)

		case opLdc:
			sh.setControl(op.aux, sh.R[op.rm])

		case opStc:
			sh.R[op.rn] = sh.control(op.aux)

		case opExit:
			return sh.exitBlock(id, off, op, start+op.imm), nil

		case opExitT:
			if sh.T() == (op.rm != 0) {
				return sh.exitBlock(id, off, op, start+op.imm), nil
			}

		case opLatchT:
			latch = sh.T() == (op.rm != 0)

		case opExitLatch:
			if latch {
				return sh.exitBlock(id, off, op, start+op.imm), nil
			}

		case opTarget:
			if op.aux == targetPR {
				target = sh.PR
			} else {
				target = sh.R[op.rm]
			}

		case opSetPR:
			sh.PR = start + op.imm

		case opExitTarget:
			sh.PC = target
			sh.addCycles(uint32(op.aux))
			return xlat.NoBlock, nil

		case opRTE:
			target = sh.SPC
			sh.SetSR(sh.SSR)

		case opTrapa:
			icount := uint32(op.aux) + 1
			sh.addCycles(icount)
			sh.trap(op.imm, start+icount<<1)
			return xlat.NoBlock, nil

		case opIllegal:
			return xlat.NoBlock, sh.exception(rec, off, start, illegalInstruction{code: op.imm})

		case opCheckPrivileged:
			if !sh.Privileged() {
				return xlat.NoBlock, sh.exception(rec, off, start, illegalInstruction{code: op.imm})
			}

		case opLdtlb:
			sh.MMU.LoadTLB()

		case opPref:
			if mmu.IsStoreQueue(sh.R[op.rn]) {
				if err := sh.flushStoreQueue(sh.R[op.rn]); err != nil {
					return xlat.NoBlock, sh.exception(rec, off, start, err)
				}

				// the burst is written to memory like any other store
				if op.aux&opInSlot == 0 && sh.abandoned(id) {
					return xlat.NoBlock, sh.exitRecover(rec, off+opSize, start)
				}
			}

		case opSleep:
			sh.PC = start + op.imm
			sh.addCycles(uint32(op.aux))
			sh.state = Sleeping
			return xlat.NoBlock, nil

		case opBreakpoint:
			pc := start + uint32(op.aux)<<1
			if sh.breakpointHit(pc) {
				sh.PC = pc
				sh.addCycles(uint32(op.aux))
				sh.exit = ExitBreakpoint
				return xlat.NoBlock, nil
			}

		case opFetchFault:
			slot := start + op.imm
			if err := sh.MMU.UpdateICache(slot); err != nil {
				return xlat.NoBlock, sh.exception(rec, off, start, err)
			}
			if !sh.MMU.ICache().Contains(slot) {
				return xlat.NoBlock, curated.Errorf(NoCode, slot)
			}

			// the slot can now be fetched. the branch is retranslated
			sh.PC = slot - 2
			sh.addCycles(uint32(op.aux))
			return xlat.NoBlock, nil

		default:
			return xlat.NoBlock, curated.Errorf(BadOp, op.code, start)
		}
	}

	return xlat.NoBlock, curated.Errorf(NoExit, start)
}

// abandoned returns true if the block being executed must not continue.
func (sh *CPU) abandoned(id xlat.BlockID) bool {
	return sh.flushed || sh.Cache.State(id) == xlat.Inactive
}

// exception takes the guest exception if the error is one. The SPC is found
// from the recovery record for the position of the op that raised it.
// Errors that are not guest exceptions are returned unchanged.
func (sh *CPU) exception(rec xlat.Recovery, off uint32, start uint32, err error) error {
	if !isException(err) {
		return err
	}
	spc := start
	if r, ok := rec.Pre(off); ok {
		spc += r.ICount << 1
		sh.addCycles(r.ICount)
	}
	sh.takeException(err, spc)
	return nil
}

// exitRecover sets the PC to the instruction after the last completed
// instruction at the position in the block.
func (sh *CPU) exitRecover(rec xlat.Recovery, off uint32, start uint32) error {
	sh.PC = start
	if r, ok := rec.Pre(off); ok {
		sh.PC += r.ICount << 1
		sh.addCycles(r.ICount)
	}
	return nil
}

// exitBlock completes an exit op with a fixed target. Returns the linked
// block if it can be executed next.
func (sh *CPU) exitBlock(id xlat.BlockID, off uint32, op hostOp, target uint32) xlat.BlockID {
	sh.PC = target
	sh.addCycles(uint32(op.aux))

	if sh.flushed {
		return xlat.NoBlock
	}
	if op.link != xlat.NoBlock && sh.linkValid(op.link, op.handle) {
		return op.link
	}

	sh.site = &exitSite{
		block:  id,
		handle: sh.Cache.UseList(id),
		off:    off,
		target: target,
	}
	return xlat.NoBlock
}

func compare(cmp uint16, rn uint32, rm uint32) bool {
	switch cmp {
	case cmpEQ:
		return rn == rm
	case cmpHS:
		return rn >= rm
	case cmpGE:
		return int32(rn) >= int32(rm)
	case cmpHI:
		return rn > rm
	case cmpGT:
		return int32(rn) > int32(rm)
	}
	return false
}

func (sh *CPU) shift(rn uint8, kind uint16, n uint32) {
	switch kind {
	case shiftLL:
		sh.setT(sh.R[rn]&0x80000000 != 0)
		sh.R[rn] <<= 1
	case shiftLR:
		sh.setT(sh.R[rn]&1 != 0)
		sh.R[rn] >>= 1
	case shiftAR:
		sh.setT(sh.R[rn]&1 != 0)
		sh.R[rn] = uint32(int32(sh.R[rn]) >> 1)
	case shiftLLn:
		sh.R[rn] <<= n
	case shiftLRn:
		sh.R[rn] >>= n
	}
}

func (sh *CPU) setControl(ctl uint16, v uint32) {
	switch ctl {
	case ctlSR:
		sh.SetSR(v)
	case ctlGBR:
		sh.GBR = v
	case ctlVBR:
		sh.VBR = v
	case ctlSSR:
		sh.SSR = v
	case ctlSPC:
		sh.SPC = v
	case ctlSGR:
		sh.SGR = v
	case ctlPR:
		sh.PR = v
	}
}

func (sh *CPU) control(ctl uint16) uint32 {
	switch ctl {
	case ctlSR:
		return sh.SR
	case ctlGBR:
		return sh.GBR
	case ctlVBR:
		return sh.VBR
	case ctlSSR:
		return sh.SSR
	case ctlSPC:
		return sh.SPC
	case ctlSGR:
		return sh.SGR
	case ctlPR:
		return sh.PR
	}
	return 0
}
