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
	"github.com/hean01/lxdream/logger"
)

// ReadRegister returns the value of the MMU register at the offset. Only the
// low twelve bits of the offset are significant.
func (m *MMU) ReadRegister(offset uint32) uint32 {
	offset &= 0xfff
	if offset>>2 >= regCount {
		return 0
	}

	switch offset {
	case MMUCR:
		return m.regs[MMUCR>>2] | (m.urc << 10) | (m.urb << 18) | (m.lrui << 26)
	}

	return m.regs[offset>>2]
}

// WriteRegister writes the value to the MMU register at the offset, applying
// the register's write mask and any side effects of the write.
func (m *MMU) WriteRegister(offset uint32, val uint32) {
	offset &= 0xfff
	if offset>>2 >= regCount {
		return
	}

	switch offset {
	case PVR:
		return
	case PTEH:
		val &= 0xfffffcff
		if val&0xff != m.asid {
			m.asid = val & 0xff
			m.icache.invalidate()
		}
	case PTEL:
		val &= 0x1ffffdff
	case PTEA:
		val &= 0x0000000f
	case TRA:
		val &= 0x000003fc
	case EXPEVT, INTEVT:
		val &= 0x00000fff
	case MMUCR:
		if val&ControlTI == ControlTI {
			m.invalidateTLB()
		}
		m.urc = (val >> 10) & 0x3f
		m.urb = (val >> 18) & 0x3f
		m.lrui = (val >> 26) & 0x3f
		val &= 0x00000301

		changed := (val ^ m.regs[MMUCR>>2]) & (ControlAT | ControlSV)
		m.regs[MMUCR>>2] = val
		if changed != 0 {
			// translated code depends on the state of the AT and SV bits. all
			// translations must be discarded and the current block exited
			logger.Logf(m.env, "MMU", "MMUCR changed: AT=%v SV=%v", val&ControlAT != 0, val&ControlSV != 0)
			m.icache.invalidate()
			if m.cpu != nil {
				m.cpu.FlushTranslations()
			}
		}
		return
	case CCR:
		val &= 0x000081a7
	case MMUUNK1:
		// if the high bit is set this appears to reset the machine on real
		// hardware. the behaviour is not emulated
		val &= 0x00010007
	case QACR0, QACR1:
		val &= 0x0000001c
	case PMCR1, PMCR2:
		val &= 0x0000c13f
	}

	m.regs[offset>>2] = val
}

// LoadTLB implements the LDTLB instruction. It copies PTEH, PTEL and PTEA
// into the UTLB entry identified by MMUCR.URC. Neither MMUCR nor the ITLB
// are changed.
func (m *MMU) LoadTLB() {
	e := &m.utlb[m.urc]
	if e.Flags&TLBValid == TLBValid {
		m.utlbRemove(int(m.urc))
	}

	pteh := m.regs[PTEH>>2]
	ptel := m.regs[PTEL>>2]
	e.VPN = pteh & 0xfffffc00
	e.ASID = pteh & 0x000000ff
	e.PPN = canonicalPPN(ptel & 0x1ffffc00)
	e.Flags = ptel & 0x000001ff
	e.PCMCIA = m.regs[PTEA>>2]
	e.Mask = maskForFlags(e.Flags)

	if e.Flags&TLBValid == TLBValid {
		m.utlbInsert(int(m.urc))
	}
}
