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
	"path/filepath"
	"testing"

	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/memory"
	"github.com/hean01/lxdream/hardware/memory/bus"
	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/hardware/xlat"
	"github.com/hean01/lxdream/test"
)

func newWhiteboxCPU(t *testing.T, words ...uint16) *CPU {
	t.Helper()

	prefs, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, prefs.ArenaSize.Set(256*1024))
	test.DemandSuccess(t, prefs.Log.Set(false))
	env, err := environment.NewEnvironment(environment.MainEmulation, prefs)
	test.DemandSuccess(t, err)

	mem := memory.NewMemory(env)
	sh, err := NewCPU(env, mem, eventq.NewQueue(env))
	test.DemandSuccess(t, err)
	t.Cleanup(func() {
		sh.Close()
	})

	b := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(b[i*2:], w)
	}
	test.DemandSuccess(t, mem.Load(0x0c010000, b))

	sh.SetSR(SRMD)
	sh.PC = 0x8c010000
	test.DemandSuccess(t, sh.MMU.UpdateICache(sh.PC))

	return sh
}

func ops(sh *CPU, id xlat.BlockID) []hostOp {
	code := sh.Cache.Code(id)
	var l []hostOp
	for off := uint32(0); off < sh.Cache.CodeSize(id); off += opSize {
		l = append(l, decodeOp(code[off:]))
	}
	return l
}

func TestTranslateConditionalBranch(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0xe005, // MOV #5,R0
		0x4010, // DT R0
		0x8bfd, // BF -3
	)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	l := ops(sh, id)
	test.DemandEquality(t, len(l), 4)
	test.ExpectEquality(t, l[0].code, opMovImm)
	test.ExpectEquality(t, l[1].code, opDt)
	test.ExpectEquality(t, l[2].code, opExitT)
	test.ExpectEquality(t, l[2].rm, uint8(0))

	// the taken branch is relative to the start of the block
	test.ExpectEquality(t, l[2].imm, uint32(2))
	test.ExpectEquality(t, l[2].aux, uint16(3))
	test.ExpectEquality(t, l[3].code, opExit)
	test.ExpectEquality(t, l[3].imm, uint32(6))

	// one record per instruction and one for the end of the block
	rec := sh.Cache.RecoveryTable(id)
	test.DemandEquality(t, len(rec), 4)
	for i, r := range rec[:3] {
		test.ExpectEquality(t, r.Offset, uint32(i)*opSize, i)
		test.ExpectEquality(t, r.ICount, uint32(i), i)
	}
	test.ExpectEquality(t, rec[3].ICount, uint32(3))

	test.ExpectEquality(t, sh.Cache.GuestSize(id), uint32(6))
	test.ExpectEquality(t, sh.Cache.Mode(id), uint32(SRMD))
	test.ExpectInequality(t, sh.Cache.UseList(id), uint32(0))
}

func TestTranslateDelaySlot(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0x0009, // NOP
		0xaffe, // BRA -2
		0x2122, // MOV.L R2,@R1
	)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	l := ops(sh, id)
	test.DemandEquality(t, len(l), 3)
	test.ExpectEquality(t, l[1].code, opStore)
	test.ExpectEquality(t, l[1].aux, uint16(bus.Long)|opInSlot)
	test.ExpectEquality(t, l[2].code, opExit)
	test.ExpectEquality(t, l[2].imm, uint32(2))
	test.ExpectEquality(t, l[2].aux, uint16(3))

	// the delay slot is recovered to the branch
	rec := sh.Cache.RecoveryTable(id)
	test.DemandEquality(t, len(rec), 4)
	test.ExpectEquality(t, rec[1].Offset, uint32(opSize))
	test.ExpectEquality(t, rec[1].ICount, uint32(1))
	test.ExpectEquality(t, rec[2].Offset, uint32(opSize))
	test.ExpectEquality(t, rec[2].ICount, uint32(1))
}

func TestTranslateUserMode(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0x0038, // LDTLB
	)

	privileged, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ops(sh, privileged)[0].code, opLdtlb)

	// the same address translated in user mode is a different block
	sh.SetSR(0)
	user, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ops(sh, user)[0].code, opIllegal)
	test.ExpectEquality(t, ops(sh, user)[0].imm, uint32(codeIllegal))

	phys := uint32(0x0c010000)
	test.ExpectEquality(t, sh.Cache.LookupMode(phys, 0), user)
	test.ExpectEquality(t, sh.Cache.LookupMode(phys, SRMD), privileged)
}

func TestTranslateSRWriteInSlot(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0xaffe, // BRA -2
		0x400e, // LDC R0,SR
	)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	l := ops(sh, id)
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0].code, opIllegal)
	test.ExpectEquality(t, l[0].imm, uint32(codeIllegalSlot))
	test.ExpectEquality(t, l[1].code, opExit)
}

func TestTranslateSRWrite(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0x400e, // LDC R0,SR
		0x0038, // LDTLB
	)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	// the block ends after the write
	l := ops(sh, id)
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0].code, opLdc)
	test.ExpectEquality(t, l[0].aux, uint16(ctlSR))
	test.ExpectEquality(t, l[1].code, opExit)
	test.ExpectEquality(t, l[1].imm, uint32(2))
	test.ExpectEquality(t, sh.Cache.GuestSize(id), uint32(2))
}

func TestTranslateRTESlot(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0x002b, // RTE
		0x0002, // STC SR,R0
	)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	// privilege in the slot depends on the restored SR
	l := ops(sh, id)
	test.DemandEquality(t, len(l), 4)
	test.ExpectEquality(t, l[0].code, opRTE)
	test.ExpectEquality(t, l[1].code, opCheckPrivileged)
	test.ExpectEquality(t, l[1].imm, uint32(codeIllegalSlot))
	test.ExpectEquality(t, l[2].code, opStc)
	test.ExpectEquality(t, l[3].code, opExitTarget)
}

func TestTranslateBreakpoint(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0xe001, // MOV #1,R0
		0xe002, // MOV #2,R0
		0x001b, // SLEEP
	)
	sh.SetBreakpoint(0x8c010002, false)

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	l := ops(sh, id)
	test.DemandEquality(t, len(l), 4)
	test.ExpectEquality(t, l[1].code, opBreakpoint)
	test.ExpectEquality(t, l[1].aux, uint16(1))

	// the recovery record for the instruction precedes the breakpoint
	rec := sh.Cache.RecoveryTable(id)
	test.ExpectEquality(t, rec[1].Offset, uint32(opSize))
}

func TestTranslatePageEnd(t *testing.T) {
	sh := newWhiteboxCPU(t)
	sh.PC = 0x8c010ffc
	code := []byte{0x09, 0x00, 0x09, 0x00, 0x09, 0x00}
	test.DemandSuccess(t, sh.mem.Load(0x0c010ffc, code))

	id, err := sh.translateBasicBlock(sh.PC)
	test.DemandSuccess(t, err)

	// the block stops at the end of the page with an exit to the next page
	l := ops(sh, id)
	test.DemandEquality(t, len(l), 3)
	test.ExpectEquality(t, l[2].code, opExit)
	test.ExpectEquality(t, l[2].imm, uint32(4))
	test.ExpectEquality(t, sh.Cache.GuestSize(id), uint32(4))
}

func TestLinking(t *testing.T) {
	sh := newWhiteboxCPU(t,
		0xe00a, // MOV #10,R0
		0x4010, // DT R0
		0x8bfd, // BF -3
		0x001b, // SLEEP
	)

	_, err := sh.RunSlice(1000000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sh.state, Sleeping)
	test.ExpectEquality(t, sh.R[0], uint32(0))

	// the loop branch is linked to its own block
	id := sh.Cache.Lookup(0x0c010002)
	test.DemandInequality(t, id, xlat.NoBlock)
	exit := ops(sh, id)[1]
	test.ExpectEquality(t, exit.code, opExitT)
	test.ExpectEquality(t, exit.link, id)
	test.ExpectEquality(t, exit.handle, sh.Cache.UseList(id))
	// linked from the first block and from itself
	test.ExpectEquality(t, len(sh.links[exit.handle]), 2)

	// discarding the block resets the link
	sh.Cache.InvalidateWord(0x0c010002)
	test.ExpectEquality(t, len(sh.links), 0)
}
