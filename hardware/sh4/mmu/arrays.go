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

// Base addresses of the memory-mapped TLB arrays in the P4 region. Each
// array occupies 16MB of the address space.
const (
	ITLBAddressArray = 0xf2000000
	ITLBDataArray    = 0xf3000000
	UTLBAddressArray = 0xf6000000
	UTLBDataArray    = 0xf7000000
)

func itlbEntry(addr uint32) int {
	return int((addr >> 8) & 0x03)
}

func utlbEntry(addr uint32) int {
	return int((addr >> 8) & 0x3f)
}

// the associative bit in UTLB address array writes.
func utlbAssociative(addr uint32) bool {
	return addr&0x80 == 0x80
}

// the data array 2 bit selects the PTEA half of a UTLB data array entry.
func utlbData2(addr uint32) bool {
	return addr&0x00800000 == 0x00800000
}

// the dirty bit is at bit nine in the address arrays.
const arrayDirty = 0x200

// ReadITLBAddress implements reads from the ITLB address array.
func (m *MMU) ReadITLBAddress(addr uint32) uint32 {
	e := &m.itlb[itlbEntry(addr)]
	return e.VPN | e.ASID | (e.Flags & TLBValid)
}

// ReadITLBData implements reads from the ITLB data array.
func (m *MMU) ReadITLBData(addr uint32) uint32 {
	e := &m.itlb[itlbEntry(addr)]
	return (e.PPN & 0x1ffffc00) | e.Flags
}

// WriteITLBAddress implements writes to the ITLB address array.
func (m *MMU) WriteITLBAddress(addr uint32, val uint32) {
	e := &m.itlb[itlbEntry(addr)]
	e.VPN = val & 0xfffffc00
	e.ASID = val & 0x000000ff
	e.Flags = (e.Flags &^ TLBValid) | (val & TLBValid)
}

// WriteITLBData implements writes to the ITLB data array.
func (m *MMU) WriteITLBData(addr uint32, val uint32) {
	e := &m.itlb[itlbEntry(addr)]
	e.PPN = canonicalPPN(val & 0x1ffffc00)
	e.Flags = val & itlbFlagMask
	e.Mask = maskForFlags(val)
}

// ReadUTLBAddress implements reads from the UTLB address array.
func (m *MMU) ReadUTLBAddress(addr uint32) uint32 {
	e := &m.utlb[utlbEntry(addr)]
	return e.VPN | e.ASID | (e.Flags & TLBValid) | ((e.Flags & TLBDirty) << 7)
}

// ReadUTLBData implements reads from the UTLB data arrays.
func (m *MMU) ReadUTLBData(addr uint32) uint32 {
	e := &m.utlb[utlbEntry(addr)]
	if utlbData2(addr) {
		return e.PCMCIA
	}
	return (e.PPN & 0x1ffffc00) | e.Flags
}

// WriteUTLBAddress implements writes to the UTLB address array. Writes with
// the associative bit set in the address update the valid and dirty bits of
// any entry in either TLB matching the VPN in the value; the entry selected
// by the address is not used.
//
// An associative write that matches more than one entry in either TLB
// returns a MultiHit fault.
func (m *MMU) WriteUTLBAddress(addr uint32, val uint32) error {
	if !utlbAssociative(addr) {
		n := utlbEntry(addr)
		e := &m.utlb[n]
		if e.Flags&TLBValid == TLBValid {
			m.utlbRemove(n)
		}
		e.VPN = val & 0xfffffc00
		e.ASID = val & 0xff
		e.Flags &^= TLBDirty | TLBValid
		e.Flags |= val & TLBValid
		e.Flags |= (val & arrayDirty) >> 7
		if e.Flags&TLBValid == TLBValid {
			m.utlbInsert(n)
		}
		return nil
	}

	// the valid bit is not considered when matching entries
	utlb := m.utlbSearchShared(val, m.asid, false)
	if utlb >= 0 {
		e := &m.utlb[utlb]
		wasValid := e.Flags&TLBValid == TLBValid
		e.Flags &^= TLBDirty | TLBValid
		e.Flags |= val & TLBValid
		e.Flags |= (val & arrayDirty) >> 7
		isValid := e.Flags&TLBValid == TLBValid
		if wasValid && !isValid {
			// the index key does not depend on the flags so removing after
			// the flags have changed is fine
			m.utlbRemove(utlb)
		} else if !wasValid && isValid {
			m.utlbInsert(utlb)
		}
	}

	itlb := lookupMiss
	for i := range m.itlb {
		e := &m.itlb[i]
		if (e.Flags&TLBShare == TLBShare || e.ASID == m.asid) && e.matches(val) {
			if itlb != lookupMiss {
				itlb = lookupMultiHit
				break
			}
			itlb = i
		}
	}
	if itlb >= 0 {
		e := &m.itlb[itlb]
		e.Flags = (e.Flags &^ TLBValid) | (val & TLBValid)
	}

	if itlb == lookupMultiHit || utlb == lookupMultiHit {
		return m.raise(MultiHit, addr)
	}

	return nil
}

// WriteUTLBData implements writes to the UTLB data arrays.
func (m *MMU) WriteUTLBData(addr uint32, val uint32) {
	n := utlbEntry(addr)
	e := &m.utlb[n]
	if utlbData2(addr) {
		e.PCMCIA = val & 0x0000000f
		return
	}

	if e.Flags&TLBValid == TLBValid {
		m.utlbRemove(n)
	}
	e.PPN = canonicalPPN(val & 0x1ffffc00)
	e.Flags = val & 0x000001ff
	e.Mask = maskForFlags(val)
	if e.Flags&TLBValid == TLBValid {
		m.utlbInsert(n)
	}
}
