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

import "encoding/binary"

// ICache describes the region of memory that the processor is currently
// fetching instructions from. The region is a single TLB page when address
// translation is enabled or an entire RAM or ROM area when it is not.
type ICache struct {
	valid bool

	// the virtual and physical base addresses of the region
	pageVMA uint32
	pagePPA uint32

	// mask selecting the base address bits of a virtual address
	mask uint32

	// the memory backing the region, starting at pagePPA
	page []byte
}

func (c *ICache) invalidate() {
	c.valid = false
	c.page = nil
}

// Contains returns true if the virtual address is in the region.
func (c *ICache) Contains(vma uint32) bool {
	return c.valid && vma&c.mask == c.pageVMA
}

// Phys returns the physical address of the virtual address. Only meaningful
// if Contains() is true for the address.
func (c *ICache) Phys(vma uint32) uint32 {
	return (vma &^ c.mask) + c.pagePPA
}

// End returns the first virtual address after the end of the region.
func (c *ICache) End() uint32 {
	return c.pageVMA + ^c.mask + 1
}

// Fetch returns the instruction word at the virtual address. The second
// return value is false if the address is not in the region.
func (c *ICache) Fetch(vma uint32) (uint16, bool) {
	if !c.Contains(vma) {
		return 0, false
	}
	o := vma &^ c.mask
	if int(o)+2 > len(c.page) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(c.page[o:]), true
}

// ICache returns the current instruction fetch region. The returned pointer
// remains valid for the lifetime of the MMU but the contents change with
// each call to UpdateICache().
func (m *MMU) ICache() *ICache {
	return &m.icache
}

// InvalidateICache forces the next instruction fetch to refresh the
// instruction fetch region.
func (m *MMU) InvalidateICache() {
	m.icache.invalidate()
}

// updatePhys sets the region for an untranslated address.
func (m *MMU) updatePhys(addr uint32) {
	switch {
	case addr&0x1c000000 == 0x0c000000:
		// main RAM
		m.setRegion(addr&0xff000000, 0x0c000000, 0xff000000)
	case addr&0x1fe00000 == 0:
		// BIOS ROM
		m.setRegion(addr&0xffe00000, 0, 0xffe00000)
	default:
		m.icache.invalidate()
	}
}

func (m *MMU) setRegion(vma uint32, ppa uint32, mask uint32) {
	page := m.mem.Region(ppa)
	if page == nil {
		m.icache.invalidate()
		return
	}
	m.icache = ICache{
		valid:   true,
		pageVMA: vma,
		pagePPA: ppa,
		mask:    mask,
		page:    page,
	}
}

// UpdateICache sets the instruction fetch region to the region containing
// the virtual address. Translation faults are recorded and returned as for
// data reads. If the address resolves to something other than RAM or ROM the
// region is invalidated but no error is returned; Contains() will return
// false for the address.
//
// Must only be called immediately before the execution of code at the
// address.
func (m *MMU) UpdateICache(vma uint32) error {
	var entry int

	if m.cpu.Privileged() {
		if vma&0x80000000 == 0x80000000 {
			if vma < 0xc0000000 {
				m.updatePhys(vma)
				return nil
			}
			if vma >= 0xe0000000 && vma < 0xffffff00 {
				return m.raise(AddressErrorRead, vma)
			}
		}

		if !m.Enabled() {
			m.updatePhys(vma)
			return nil
		}

		if m.regs[MMUCR>>2]&ControlSV == 0 {
			entry = m.itlbLookupVPNASID(vma)
		} else {
			entry = m.itlbLookupVPN(vma)
		}
	} else {
		if vma&0x80000000 == 0x80000000 {
			return m.raise(AddressErrorRead, vma)
		}

		if !m.Enabled() {
			m.updatePhys(vma)
			return nil
		}

		entry = m.itlbLookupVPNASID(vma)
		if entry >= 0 && m.itlb[entry].Flags&TLBUser != TLBUser {
			return m.raise(TLBProtectionRead, vma)
		}
	}

	switch entry {
	case lookupMiss:
		return m.raise(TLBMissRead, vma)
	case lookupMultiHit:
		return m.raise(MultiHit, vma)
	}

	e := &m.itlb[entry]
	m.setRegion(e.VPN&e.Mask, e.PPN&e.Mask, e.Mask)

	return nil
}
