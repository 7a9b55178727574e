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

	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/hardware/xlat"
)

// translator holds the state of a single block translation.
type translator struct {
	sh *CPU

	id    xlat.BlockID
	em    emitter
	start uint32

	// privileged instructions are only translated if the block is translated
	// in privileged mode
	privileged bool

	// the delay slot of RTE is being translated. SR has been restored from
	// SSR by the time the slot executes
	rteSlot bool

	records []xlat.RecoveryRecord

	// the address of the instruction after the most recently translated
	// instruction, including any delay slot
	next uint32
}

func (tr *translator) rel(addr uint32) uint32 {
	return addr - tr.start
}

// icount returns the number of instructions between the start of the block
// and the address.
func (tr *translator) icount(addr uint32) uint16 {
	return uint16((addr - tr.start) >> 1)
}

func (tr *translator) emit(op hostOp) {
	tr.em.emit(op)
}

// recovery adds a record stating that the instructions before the address
// have completed when execution reaches the current output position.
func (tr *translator) recovery(addr uint32) {
	tr.records = append(tr.records, xlat.RecoveryRecord{
		Offset: tr.em.off,
		ICount: uint32(tr.icount(addr)),
	})
}

// ensure the block has room for at least size more bytes of host code.
func (tr *translator) ensure(size uint32) error {
	if tr.em.remaining() >= size {
		return nil
	}
	id, err := tr.sh.Cache.Extend(tr.em.off + size)
	if err != nil {
		return err
	}
	tr.id = id
	tr.em.code = tr.sh.Cache.Code(id)
	return nil
}

// fetch the instruction at the virtual address. Instructions outside of the
// current instruction fetch region are read without raising faults.
func (tr *translator) fetch(addr uint32) (uint16, bool) {
	if ir, ok := tr.sh.MMU.ICache().Fetch(addr); ok {
		return ir, true
	}
	pa, ok := tr.sh.MMU.TranslateDisasm(addr)
	if !ok {
		return 0, false
	}
	r := tr.sh.mem.Region(pa)
	if len(r) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r), true
}

// translateBasicBlock translates the instructions from the start address
// until the first branch or the end of the page. The start address must be in
// the instruction fetch region.
func (sh *CPU) translateBasicBlock(start uint32) (xlat.BlockID, error) {
	ic := sh.MMU.ICache()
	phys := memorymap.Canonical(ic.Phys(start))

	lastpc := (start & 0xfffff000) + 0x1000
	if end := ic.End(); end != 0 && end < lastpc {
		lastpc = end
	}

	tr := translator{
		sh:         sh,
		start:      start,
		privileged: sh.Privileged(),
	}
	tr.id = sh.Cache.Start(phys)
	tr.em.code = sh.Cache.Code(tr.id)

	pc := start
	done := false
	for !done {
		if err := tr.ensure(MaxInstructionSize); err != nil {
			return xlat.NoBlock, err
		}

		ir, ok := ic.Fetch(pc)
		if !ok {
			// the start of the block is in the fetch region and lastpc is
			// never beyond the end of the region
			return xlat.NoBlock, curated.Errorf(NoCode, pc)
		}

		tr.recovery(pc)
		if sh.breakpoints.has(pc) {
			tr.emit(hostOp{code: opBreakpoint, aux: tr.icount(pc)})
		}
		done = tr.instruction(pc, ir, false)
		pc = tr.next

		if !done && pc >= lastpc {
			break
		}
	}

	// end of block recovery for the checks made after the last instruction
	tr.recovery(pc)

	epilogue := uint32(0)
	if !done {
		epilogue = opSize
	}
	finalSize := tr.em.off + epilogue + xlat.RecoveryTableSize(len(tr.records))
	if err := tr.ensure(finalSize - tr.em.off); err != nil {
		return xlat.NoBlock, err
	}
	if !done {
		tr.emit(hostOp{code: opExit, imm: tr.rel(pc), aux: tr.icount(pc)})
	}

	if err := sh.Cache.SetRecovery(tr.id, tr.em.off, tr.records); err != nil {
		return xlat.NoBlock, err
	}
	sh.Cache.SetMode(tr.id, sh.mode())

	sh.serial++
	if sh.serial == 0 {
		sh.serial++
	}
	sh.Cache.SetUseList(tr.id, sh.serial)

	if err := sh.Cache.Commit(finalSize, phys, phys+(pc-start)); err != nil {
		return xlat.NoBlock, err
	}

	return tr.id, nil
}
