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

package mmu_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/hardware/sh4/mmu"
	"github.com/hean01/lxdream/test"
)

type cpu struct {
	privileged bool
	flushes    int
}

func (c *cpu) Privileged() bool {
	return c.privileged
}

func (c *cpu) FlushTranslations() {
	c.flushes++
}

type memory struct {
	bios []byte
	ram  []byte
}

func (mem *memory) Region(ppa uint32) []byte {
	ppa &= 0x1fffffff
	switch {
	case ppa < uint32(len(mem.bios)):
		return mem.bios[ppa:]
	case ppa >= 0x0c000000 && ppa < 0x0c000000+uint32(len(mem.ram)):
		return mem.ram[ppa-0x0c000000:]
	}
	return nil
}

func newMMU(t *testing.T) (*mmu.MMU, *cpu, *memory) {
	t.Helper()

	prefs, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	env, err := environment.NewEnvironment(environment.MainEmulation, prefs)
	test.DemandSuccess(t, err)

	c := &cpu{privileged: true}
	mem := &memory{
		bios: make([]byte, 0x200000),
		ram:  make([]byte, 0x1000000),
	}
	return mmu.NewMMU(env, c, mem), c, mem
}

// load a UTLB entry with the LDTLB mechanism.
func load(m *mmu.MMU, entry uint32, vpn uint32, asid uint32, ppn uint32, flags uint32) {
	mmucr := m.ReadRegister(mmu.MMUCR)
	m.WriteRegister(mmu.MMUCR, (mmucr&0x301)|(mmucr&0xfc0000)|entry<<10)
	m.WriteRegister(mmu.PTEH, vpn|asid)
	m.WriteRegister(mmu.PTEL, ppn|flags)
	m.LoadTLB()
}

// expectFault checks that err is a fault of the expected kind and that the
// fault registers have been updated.
func expectFault(t *testing.T, m *mmu.MMU, err error, kind mmu.FaultKind, vma uint32) {
	t.Helper()

	var f mmu.Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected mmu.Fault for %08x (%v)", vma, err)
	}
	test.ExpectEquality(t, f.Kind, kind)
	test.ExpectEquality(t, f.VMA, vma)
	test.ExpectEquality(t, m.ReadRegister(mmu.TEA), vma)
	test.ExpectEquality(t, m.ReadRegister(mmu.PTEH)&0xfffffc00, vma&0xfffffc00)
}

func TestRegisterMasks(t *testing.T) {
	m, c, _ := newMMU(t)

	masks := []struct {
		offset uint32
		mask   uint32
	}{
		{mmu.PTEH, 0xfffffcff},
		{mmu.PTEL, 0x1ffffdff},
		{mmu.TTB, 0xffffffff},
		{mmu.TEA, 0xffffffff},
		{mmu.CCR, 0x000081a7},
		{mmu.TRA, 0x000003fc},
		{mmu.EXPEVT, 0x00000fff},
		{mmu.INTEVT, 0x00000fff},
		{mmu.PTEA, 0x0000000f},
		{mmu.QACR0, 0x0000001c},
		{mmu.QACR1, 0x0000001c},
		{mmu.PMCR1, 0x0000c13f},
		{mmu.PMCR2, 0x0000c13f},
		{mmu.MMUUNK1, 0x00010007},
	}

	for _, r := range masks {
		m.WriteRegister(r.offset, 0xffffffff)
		test.ExpectEquality(t, m.ReadRegister(r.offset), r.mask, r.offset)
	}

	// PVR is read only
	m.WriteRegister(mmu.PVR, 0)
	test.ExpectEquality(t, m.ReadRegister(mmu.PVR), uint32(0x040205c1))

	// the PTEH write sets the current ASID
	test.ExpectEquality(t, m.ASID(), uint32(0xff))

	// MMUCR read back includes the counter fields. SQMD survives the mask
	test.ExpectEquality(t, c.flushes, 0)
	m.WriteRegister(mmu.MMUCR, 0xffffffff)
	test.ExpectEquality(t, m.ReadRegister(mmu.MMUCR), uint32(0xfcfcff01))
	test.ExpectEquality(t, m.Enabled(), true)
	test.ExpectEquality(t, c.flushes, 1)

	// no change to AT or SV means no flush
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT|mmu.ControlSV)
	test.ExpectEquality(t, c.flushes, 1)
	test.ExpectEquality(t, m.ReadRegister(mmu.MMUCR), uint32(0x101))
	m.WriteRegister(mmu.MMUCR, 0)
	test.ExpectEquality(t, c.flushes, 2)
}

func TestPassthrough(t *testing.T) {
	m, c, _ := newMMU(t)

	pa, err := m.TranslateRead(0x8c001234)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c001234)

	pa, err = m.TranslateWrite(0xa0000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0)

	pa, err = m.TranslateRead(0xff000010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0xff000010)

	pa, err = m.TranslateRead(0x2c001234)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c001234)

	c.privileged = false

	_, err = m.TranslateRead(0x8c000000)
	expectFault(t, m, err, mmu.AddressErrorRead, 0x8c000000)
	_, err = m.TranslateWrite(0xff000010)
	expectFault(t, m, err, mmu.AddressErrorWrite, 0xff000010)

	// the store queue is accessible from user mode unless SQMD is set
	pa, err = m.TranslateWrite(0xe0000020)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0xe0000020)

	m.WriteRegister(mmu.MMUCR, mmu.ControlSQMD)
	_, err = m.TranslateWrite(0xe0000020)
	expectFault(t, m, err, mmu.AddressErrorWrite, 0xe0000020)
}

func TestTranslateUser(t *testing.T) {
	m, c, _ := newMMU(t)
	c.privileged = false

	load(m, 0, 0x00400000, 5, 0x0c002000, mmu.TLBValid|mmu.TLBUser|mmu.TLBWritable|mmu.TLBSize4K)
	load(m, 1, 0x00600000, 5, 0x0c003000, mmu.TLBValid|mmu.TLBSize4K)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	pa, err := m.TranslateRead(0x00400010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c002010)

	// the entry is not dirty
	_, err = m.TranslateWrite(0x00400010)
	expectFault(t, m, err, mmu.InitialWrite, 0x00400010)
	test.ExpectEquality(t, m.ASID(), uint32(5))
	test.ExpectEquality(t, m.ReadRegister(mmu.PTEH)&0xff, uint32(5))

	load(m, 0, 0x00400000, 5, 0x0c002000, mmu.TLBValid|mmu.TLBUser|mmu.TLBWritable|mmu.TLBDirty|mmu.TLBSize4K)
	pa, err = m.TranslateWrite(0x00400ffc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c002ffc)

	// entry one is for privileged mode only
	_, err = m.TranslateRead(0x00600000)
	expectFault(t, m, err, mmu.TLBProtectionRead, 0x00600000)
	_, err = m.TranslateWrite(0x00600000)
	expectFault(t, m, err, mmu.TLBProtectionWrite, 0x00600000)

	c.privileged = true
	pa, err = m.TranslateRead(0x00600004)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c003004)
	_, err = m.TranslateWrite(0x00600004)
	expectFault(t, m, err, mmu.TLBProtectionWrite, 0x00600004)

	// nothing mapped
	_, err = m.TranslateRead(0x00500000)
	expectFault(t, m, err, mmu.TLBMissRead, 0x00500000)
	f := err.(mmu.Fault)
	test.ExpectEquality(t, f.Kind.TLBMiss(), true)
	test.ExpectEquality(t, f.Kind.Code(), uint32(0x040))

	_, err = m.TranslateWrite(0x00500000)
	expectFault(t, m, err, mmu.TLBMissWrite, 0x00500000)

	// P3 is translated for privileged accesses
	load(m, 2, 0xc0000000, 5, 0x0c004000, mmu.TLBValid|mmu.TLBSize4K)
	pa, err = m.TranslateRead(0xc0000010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c004010)
}

func TestSingleVirtualMode(t *testing.T) {
	m, _, _ := newMMU(t)

	load(m, 0, 0x00400000, 7, 0x0c002000, mmu.TLBValid|mmu.TLBSize4K)
	m.WriteRegister(mmu.PTEH, 3)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	_, err := m.TranslateRead(0x00400000)
	expectFault(t, m, err, mmu.TLBMissRead, 0x00400000)

	// with SV set privileged accesses ignore the ASID
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT|mmu.ControlSV)
	pa, err := m.TranslateRead(0x00400000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c002000)
}

func TestPageSizes(t *testing.T) {
	m, _, _ := newMMU(t)

	load(m, 0, 0x00000000, 0, 0x0c000000, mmu.TLBValid|mmu.TLBSize1K)
	load(m, 1, 0x00010000, 0, 0x0c010000, mmu.TLBValid|mmu.TLBSize4K)
	load(m, 2, 0x00100000, 0, 0x0c100000, mmu.TLBValid|mmu.TLBSize64K)
	load(m, 3, 0x10000000, 0, 0x0c300000, mmu.TLBValid|mmu.TLBSize1M)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	pages := []struct {
		vma  uint32
		size uint32
		ppa  uint32
	}{
		{0x00000000, 0x400, 0x0c000000},
		{0x00010000, 0x1000, 0x0c010000},
		{0x00100000, 0x10000, 0x0c100000},
		{0x10000000, 0x100000, 0x0c300000},
	}

	for _, p := range pages {
		pa, err := m.TranslateRead(p.vma + p.size - 4)
		test.ExpectSuccess(t, err, p.vma)
		test.ExpectEquality(t, pa, p.ppa+p.size-4, p.vma)

		_, err = m.TranslateRead(p.vma + p.size)
		expectFault(t, m, err, mmu.TLBMissRead, p.vma+p.size)
	}
}

func TestITLBReplacement(t *testing.T) {
	m, _, mem := newMMU(t)

	for i := uint32(0); i < 5; i++ {
		load(m, i, 0x00400000+i*0x1000, 0, 0x0c000000+i*0x1000, mmu.TLBValid|mmu.TLBSize4K)
	}
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	lrui := func() uint32 {
		return m.ReadRegister(mmu.MMUCR) >> 26
	}
	itlbVPN := func(slot uint32) uint32 {
		return m.ReadITLBAddress(mmu.ITLBAddressArray|slot<<8) & 0xfffffc00
	}

	// slots are replaced in the order three, two, one, zero when starting
	// with an LRUI value of zero
	order := []uint32{3, 2, 1, 0}
	lruiAfter := []uint32{0x0b, 0x1e, 0x38, 0x00}
	for i, slot := range order {
		vma := 0x00400000 + uint32(i)*0x1000
		test.DemandSuccess(t, m.UpdateICache(vma))
		test.ExpectEquality(t, itlbVPN(slot), vma)
		test.ExpectEquality(t, lrui(), lruiAfter[i])
	}

	// a hit in slot two
	test.DemandSuccess(t, m.UpdateICache(0x00401000))
	test.ExpectEquality(t, lrui(), uint32(0x14))

	// replacement candidate is now slot three
	test.DemandSuccess(t, m.UpdateICache(0x00404000))
	test.ExpectEquality(t, itlbVPN(3), uint32(0x00404000))
	test.ExpectEquality(t, lrui(), uint32(0x1f))

	// the icache describes the page
	mem.ram[0x4010] = 0x09
	mem.ram[0x4011] = 0x00
	ic := m.ICache()
	test.ExpectEquality(t, ic.Contains(0x00404010), true)
	test.ExpectEquality(t, ic.Contains(0x00405010), false)
	test.ExpectEquality(t, ic.Phys(0x00404010), 0x0c004010)
	test.ExpectEquality(t, ic.End(), 0x00405000)
	op, ok := ic.Fetch(0x00404010)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, op, 0x0009)
}

func TestICacheRegions(t *testing.T) {
	m, c, mem := newMMU(t)

	test.DemandSuccess(t, m.UpdateICache(0x8c010000))
	ic := m.ICache()
	test.ExpectEquality(t, ic.Contains(0x8c010000), true)
	test.ExpectEquality(t, ic.Phys(0x8c010000), 0x0c010000)
	test.ExpectEquality(t, ic.End(), 0x8d000000)

	mem.bios[0x10] = 0x0b
	test.DemandSuccess(t, m.UpdateICache(0xa0000000))
	test.ExpectEquality(t, ic.Contains(0xa0000010), true)
	test.ExpectEquality(t, ic.Contains(0x8c010000), false)
	test.ExpectEquality(t, ic.End(), 0xa0200000)
	op, ok := ic.Fetch(0xa0000010)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, op, 0x000b)

	// not RAM or ROM
	test.ExpectSuccess(t, m.UpdateICache(0xa4000000))
	test.ExpectEquality(t, ic.Contains(0xa4000000), false)

	// P4 is not executable
	expectFault(t, m, m.UpdateICache(0xe0000000), mmu.AddressErrorRead, 0xe0000000)

	// user mode
	c.privileged = false
	expectFault(t, m, m.UpdateICache(0x8c010000), mmu.AddressErrorRead, 0x8c010000)
	test.ExpectSuccess(t, m.UpdateICache(0x0c010000))
	test.ExpectEquality(t, ic.Contains(0x0c010000), true)

	load(m, 0, 0x00400000, 0, 0x0c000000, mmu.TLBValid|mmu.TLBSize4K)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)
	test.ExpectEquality(t, ic.Contains(0x0c010000), false)
	expectFault(t, m, m.UpdateICache(0x00400000), mmu.TLBProtectionRead, 0x00400000)
	expectFault(t, m, m.UpdateICache(0x00800000), mmu.TLBMissRead, 0x00800000)
}

func TestAssociativeWrite(t *testing.T) {
	m, _, _ := newMMU(t)

	test.ExpectSuccess(t, m.WriteUTLBAddress(mmu.UTLBAddressArray|3<<8, 0x00400000|mmu.TLBValid))
	m.WriteUTLBData(mmu.UTLBDataArray|3<<8, 0x0c000000|mmu.TLBValid|mmu.TLBSize4K)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	_, err := m.TranslateRead(0x00400000)
	test.ExpectSuccess(t, err)

	// clear the valid bit by content
	err = m.WriteUTLBAddress(mmu.UTLBAddressArray|0x80, 0x00400000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m.ReadUTLBAddress(mmu.UTLBAddressArray|3<<8), uint32(0x00400000))
	_, err = m.TranslateRead(0x00400000)
	expectFault(t, m, err, mmu.TLBMissRead, 0x00400000)

	// and set it again along with the dirty bit
	err = m.WriteUTLBAddress(mmu.UTLBAddressArray|0x80, 0x00400000|mmu.TLBValid|0x200)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m.ReadUTLBAddress(mmu.UTLBAddressArray|3<<8), uint32(0x00400300))
	test.ExpectEquality(t, m.ReadUTLBData(mmu.UTLBDataArray|3<<8)&mmu.TLBDirty, uint32(mmu.TLBDirty))
	_, err = m.TranslateRead(0x00400000)
	test.ExpectSuccess(t, err)

	// a second entry for the same page
	test.ExpectSuccess(t, m.WriteUTLBAddress(mmu.UTLBAddressArray|9<<8, 0x00400000|mmu.TLBValid))
	m.WriteUTLBData(mmu.UTLBDataArray|9<<8, 0x0c001000|mmu.TLBValid|mmu.TLBSize4K)
	err = m.WriteUTLBAddress(mmu.UTLBAddressArray|0x80, 0x00400000|mmu.TLBValid)
	expectFault(t, m, err, mmu.MultiHit, mmu.UTLBAddressArray|0x80)
	test.ExpectEquality(t, err.(mmu.Fault).Kind.Reset(), true)
	test.ExpectEquality(t, err.(mmu.Fault).Kind.Code(), uint32(0x140))

	_, err = m.TranslateRead(0x00400000)
	expectFault(t, m, err, mmu.MultiHit, 0x00400000)
}

func TestITLBArrays(t *testing.T) {
	m, _, _ := newMMU(t)

	m.WriteITLBAddress(mmu.ITLBAddressArray|2<<8, 0x00400000|0x12|mmu.TLBValid)
	m.WriteITLBData(mmu.ITLBDataArray|2<<8, 0x1c000000|mmu.TLBValid|mmu.TLBUser|mmu.TLBSize64K|mmu.TLBDirty)
	test.ExpectEquality(t, m.ReadITLBAddress(mmu.ITLBAddressArray|2<<8), uint32(0x00400112))

	// dirty bit is not stored and the on-chip PPN is canonicalised
	test.ExpectEquality(t, m.ReadITLBData(mmu.ITLBDataArray|2<<8), uint32(0x1c000000|mmu.TLBValid|mmu.TLBUser|mmu.TLBSize64K))
	snap := m.Snapshot()
	test.ExpectEquality(t, snap.ITLB[2].PPN, uint32(0xfc000000))
	test.ExpectEquality(t, snap.ITLB[2].Mask, uint32(mmu.Mask64K))

	// the associative write reaches the ITLB
	m.WriteRegister(mmu.PTEH, 0x12)
	test.ExpectSuccess(t, m.WriteUTLBAddress(mmu.UTLBAddressArray|0x80, 0x00400000))
	test.ExpectEquality(t, m.ReadITLBAddress(mmu.ITLBAddressArray|2<<8)&mmu.TLBValid, uint32(0))
}

func TestUTLBDataArray2(t *testing.T) {
	m, _, _ := newMMU(t)
	m.WriteUTLBData(mmu.UTLBDataArray|0x00800000|5<<8, 0xffffffff)
	test.ExpectEquality(t, m.ReadUTLBData(mmu.UTLBDataArray|0x00800000|5<<8), uint32(0x0f))

	m.WriteRegister(mmu.MMUCR, 6<<10)
	m.WriteRegister(mmu.PTEA, 0x07)
	m.LoadTLB()
	test.ExpectEquality(t, m.ReadUTLBData(mmu.UTLBDataArray|0x00800000|6<<8), uint32(0x07))
}

func TestStoreQueueTarget(t *testing.T) {
	m, c, _ := newMMU(t)

	m.WriteRegister(mmu.QACR0, 0x0c)
	m.WriteRegister(mmu.QACR1, 0x10)

	sq, err := m.StoreQueueTarget(0xe0001214)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sq, 0x0c001200)

	sq, err = m.StoreQueueTarget(0xe0001234)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sq, 0x10001220)

	load(m, 0, 0xe0000000, 0, 0x0c100000, mmu.TLBValid|mmu.TLBWritable|mmu.TLBSize1M)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT)

	_, err = m.StoreQueueTarget(0xe0001234)
	expectFault(t, m, err, mmu.InitialWrite, 0xe0001234)

	load(m, 0, 0xe0000000, 0, 0x0c100000, mmu.TLBValid|mmu.TLBWritable|mmu.TLBDirty|mmu.TLBSize1M)
	sq, err = m.StoreQueueTarget(0xe0001234)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sq, 0x0c101220)

	c.privileged = false
	_, err = m.StoreQueueTarget(0xe0001234)
	expectFault(t, m, err, mmu.TLBProtectionWrite, 0xe0001234)

	_, err = m.StoreQueueTarget(0xe1001234)
	expectFault(t, m, err, mmu.TLBMissWrite, 0xe1001234)
}

func TestDisasmHasNoSideEffects(t *testing.T) {
	m, _, _ := newMMU(t)

	pa, ok := m.TranslateDisasm(0x8c001000)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, pa, 0x0c001000)

	_, ok = m.TranslateDisasm(0xe0000000)
	test.ExpectFailure(t, ok)

	load(m, 0, 0x00400000, 0, 0x0c002000, mmu.TLBValid|mmu.TLBSize4K)
	m.WriteRegister(mmu.MMUCR, mmu.ControlAT|10<<10)
	tea := m.ReadRegister(mmu.TEA)

	pa, ok = m.TranslateDisasm(0x00400abc)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, pa, 0x0c002abc)

	_, ok = m.TranslateDisasm(0x00800000)
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, m.ReadRegister(mmu.MMUCR), uint32(mmu.ControlAT|10<<10))
	test.ExpectEquality(t, m.ReadRegister(mmu.TEA), tea)
}

func TestSaveLoad(t *testing.T) {
	m, _, _ := newMMU(t)

	for i := uint32(0); i < 8; i++ {
		load(m, i*3, 0x00400000+i*0x1000, i, 0x0c000000+i*0x1000, mmu.TLBValid|mmu.TLBUser|mmu.TLBSize4K)
	}
	m.WriteITLBAddress(mmu.ITLBAddressArray|1<<8, 0x00900000|mmu.TLBValid)
	m.WriteRegister(mmu.MMUCR, 17<<10|33<<18|0x15<<26)
	m.WriteRegister(mmu.PTEH, 4)

	var buf bytes.Buffer
	test.DemandSuccess(t, m.Save(&buf))
	data := buf.Bytes()

	// four ITLB entries of five words, sixty-four UTLB entries of six words
	// and four words of state
	test.ExpectEquality(t, len(data), (4*5+64*6+4)*4)

	n, _, _ := newMMU(t)
	test.DemandSuccess(t, n.Load(bytes.NewReader(data)))
	test.ExpectEquality(t, *n.Snapshot(), *m.Snapshot())

	// lookups work after loading because the sorted index has been rebuilt
	n.WriteRegister(mmu.MMUCR, mmu.ControlAT)
	n.WriteRegister(mmu.PTEH, 4)
	pa, err := n.TranslateRead(0x00404008)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pa, 0x0c004008)

	// truncated data changes nothing
	o, _, _ := newMMU(t)
	before := *o.Snapshot()
	err = o.Load(bytes.NewReader(data[:len(data)-1]))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, mmu.TruncatedState))
	test.ExpectEquality(t, *o.Snapshot(), before)
}
