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

package mmu

import (
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/logger"
)

// CPU is the interface to the processor the MMU is attached to.
type CPU interface {
	// Privileged returns true if the processor is in privileged mode (SR.MD).
	Privileged() bool

	// FlushTranslations discards all translated code and makes sure the
	// currently executing block is exited at the next opportunity. Called
	// when a change to MMUCR invalidates the assumptions of generated code.
	FlushTranslations()
}

// Memory resolves physical addresses to the storage backing them.
type Memory interface {
	// Region returns the memory backing the physical address, starting at
	// that address and running to the end of the memory region. Returns nil
	// if the address is not backed by RAM or ROM.
	Region(ppa uint32) []byte
}

// Number of entries in each TLB.
const (
	ITLBEntries = 4
	UTLBEntries = 64
)

// Register offsets from the MMU register base address.
const (
	PTEH    = 0x00
	PTEL    = 0x04
	TTB     = 0x08
	TEA     = 0x0c
	MMUCR   = 0x10
	BASRA   = 0x14
	BASRB   = 0x18
	CCR     = 0x1c
	TRA     = 0x20
	EXPEVT  = 0x24
	INTEVT  = 0x28
	PVR     = 0x30
	PTEA    = 0x34
	QACR0   = 0x38
	QACR1   = 0x3c
	PMCR1   = 0x84
	PMCR2   = 0x88
	MMUUNK1 = 0x90

	// registers are 32bit values at word aligned offsets
	regCount = MMUUNK1>>2 + 1
)

// RegisterBase is the address of the MMU registers in the P4 region.
const RegisterBase = 0xff000000

// MMUCR bits.
const (
	ControlAT   = 0x00000001
	ControlTI   = 0x00000004
	ControlSV   = 0x00000100
	ControlSQMD = 0x00000200
)

// the processor version register is read-only.
const pvrValue = 0x040205c1

// MMU is the memory management unit of an SH4 processor.
type MMU struct {
	env *environment.Environment
	cpu CPU
	mem Memory

	itlb   [ITLBEntries]ITLBEntry
	utlb   [UTLBEntries]UTLBEntry
	sorted sortedIndex

	// UTLB replacement counter and boundary
	urc uint32
	urb uint32

	// ITLB least recently used bits
	lrui uint32

	// the current address space identifier. a copy of the low eight bits
	// of PTEH
	asid uint32

	regs [regCount]uint32

	icache ICache
}

// NewMMU is the preferred method of initialisation for the MMU type.
func NewMMU(env *environment.Environment, cpu CPU, mem Memory) *MMU {
	m := &MMU{
		env: env,
		cpu: cpu,
		mem: mem,
	}
	m.regs[PVR>>2] = pvrValue

	// the page mask is always consistent with the size bits in the flags
	for i := range m.itlb {
		m.itlb[i].Mask = maskForFlags(m.itlb[i].Flags)
	}
	for i := range m.utlb {
		m.utlb[i].Mask = maskForFlags(m.utlb[i].Flags)
	}

	return m
}

// Reset the MMU to its power-on state. The contents of the TLBs are not
// changed.
func (m *MMU) Reset() {
	m.WriteRegister(CCR, 0)
	m.WriteRegister(MMUCR, 0)
	m.sortedReload()
	m.icache.invalidate()
}

// Enabled returns true if address translation is enabled (MMUCR.AT).
func (m *MMU) Enabled() bool {
	return m.regs[MMUCR>>2]&ControlAT == ControlAT
}

// ASID returns the current address space identifier.
func (m *MMU) ASID() uint32 {
	return m.asid
}

// advanceURC is called on every UTLB search.
func (m *MMU) advanceURC() {
	m.urc++
	if m.urc == m.urb || m.urc == 0x40 {
		m.urc = 0
	}
}

// invalidateTLB clears the valid bit of every TLB entry.
func (m *MMU) invalidateTLB() {
	for i := range m.itlb {
		m.itlb[i].Flags &^= TLBValid
	}
	for i := range m.utlb {
		m.utlb[i].Flags &^= TLBValid
	}
	m.sorted.reset()
	logger.Log(m.env, "MMU", "tlb invalidated")
}
