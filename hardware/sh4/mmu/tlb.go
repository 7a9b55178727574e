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

// Flag bits of a TLB entry. These are the low nine bits of the PTEL register.
const (
	TLBWriteThrough = 0x001
	TLBShare        = 0x002
	TLBDirty        = 0x004
	TLBCacheable    = 0x008
	TLBWritable     = 0x020
	TLBUser         = 0x040
	TLBValid        = 0x100

	// protection bits required for an unprivileged write
	TLBUserWritable = TLBWritable | TLBUser

	// the two size bits are not adjacent
	TLBSizeMask = 0x090
	TLBSize1K   = 0x000
	TLBSize4K   = 0x010
	TLBSize64K  = 0x080
	TLBSize1M   = 0x090
)

// Page masks for each of the page sizes.
const (
	Mask1K  = 0xfffffc00
	Mask4K  = 0xfffff000
	Mask64K = 0xffff0000
	Mask1M  = 0xfff00000
)

// the flag bits kept when a UTLB entry is copied into the ITLB. the ITLB has
// no dirty or write-through bits and no writable protection bit.
const itlbFlagMask = 0x01da

// results of TLB searches that do not identify a single entry.
const (
	lookupMiss     = -1
	lookupMultiHit = -2
)

// ITLBEntry is a single entry in the instruction TLB.
type ITLBEntry struct {
	VPN   uint32
	Mask  uint32
	PPN   uint32
	ASID  uint32
	Flags uint32
}

// UTLBEntry is a single entry in the unified TLB.
type UTLBEntry struct {
	VPN   uint32
	Mask  uint32
	PPN   uint32
	ASID  uint32
	Flags uint32

	// the PCMCIA space attribute bits, from the PTEA register
	PCMCIA uint32
}

// maskForFlags returns the page mask for the size bits in flags.
func maskForFlags(flags uint32) uint32 {
	switch flags & TLBSizeMask {
	case TLBSize1K:
		return Mask1K
	case TLBSize4K:
		return Mask4K
	case TLBSize64K:
		return Mask64K
	default:
		return Mask1M
	}
}

// canonicalPPN moves page numbers in the on-chip area into the P4 window.
func canonicalPPN(ppn uint32) uint32 {
	if ppn >= 0x1c000000 {
		ppn |= 0xe0000000
	}
	return ppn
}

// key returns the sort key of the entry.
func (e *UTLBEntry) key() uint32 {
	return (e.VPN & e.Mask) + e.ASID
}

func (e *UTLBEntry) matches(vpn uint32) bool {
	return (e.VPN^vpn)&e.Mask == 0
}

func (e *ITLBEntry) matches(vpn uint32) bool {
	return (e.VPN^vpn)&e.Mask == 0
}

// utlbLookupVPN searches the UTLB for a valid entry matching the VPN,
// ignoring the ASID.
func (m *MMU) utlbLookupVPN(vpn uint32) int {
	m.advanceURC()

	result := lookupMiss
	for i := range m.utlb {
		e := &m.utlb[i]
		if e.Flags&TLBValid == TLBValid && e.matches(vpn) {
			if result != lookupMiss {
				return lookupMultiHit
			}
			result = i
		}
	}
	return result
}

// utlbLookupVPNASID searches the UTLB for a valid entry matching the VPN and
// either the current ASID or with the share bit set.
func (m *MMU) utlbLookupVPNASID(vpn uint32) int {
	m.advanceURC()
	return m.utlbSearchShared(vpn, m.asid, true)
}

// utlbSearchShared is the common search for ASID checked lookups. If
// checkValid is false then the valid bit is ignored, as required for
// associative writes.
func (m *MMU) utlbSearchShared(vpn uint32, asid uint32, checkValid bool) int {
	result := lookupMiss
	for i := range m.utlb {
		e := &m.utlb[i]
		if checkValid && e.Flags&TLBValid != TLBValid {
			continue
		}
		if (e.Flags&TLBShare == TLBShare || e.ASID == asid) && e.matches(vpn) {
			if result != lookupMiss {
				return lookupMultiHit
			}
			result = i
		}
	}
	return result
}

// utlbFind is the ASID checked lookup used for data accesses. The sorted index
// is consulted first. Entries with the share bit set are stored in the index
// under their own ASID so the shared entries are always searched as well. A
// shared match in addition to an index hit is a multiple hit.
func (m *MMU) utlbFind(vma uint32) int {
	m.advanceURC()

	result := m.sorted.find((vma & Mask1K) + m.asid)
	if result == lookupMultiHit {
		return result
	}

	for i := range m.utlb {
		if i == result {
			continue
		}
		e := &m.utlb[i]
		if e.Flags&(TLBValid|TLBShare) == TLBValid|TLBShare && e.matches(vma) {
			if result != lookupMiss {
				return lookupMultiHit
			}
			result = i
		}
	}
	return result
}

// the fixed bit pattern updates of the LRUI register when an ITLB entry is
// used. each ITLB entry is compared against the other three by a pair of
// bits and the update marks the used entry as more recent than each of them.
func (m *MMU) itlbTouch(entry int) {
	switch entry {
	case 0:
		m.lrui &= 0x07
	case 1:
		m.lrui = (m.lrui & 0x19) | 0x20
	case 2:
		m.lrui = (m.lrui & 0x3e) | 0x14
	case 3:
		m.lrui |= 0x0b
	}
}

// itlbReplacement returns the ITLB entry to be replaced according to the
// current value of LRUI.
func (m *MMU) itlbReplacement() int {
	switch {
	case m.lrui&0x38 == 0x38:
		return 0
	case m.lrui&0x26 == 0x06:
		return 1
	case m.lrui&0x15 == 0x01:
		return 2
	}

	// the fallthrough case also catches LRUI values that hardware never
	// produces
	return 3
}

// itlbUpdateFromUTLB replaces the least recently used ITLB entry with a copy
// of the UTLB entry. Returns the ITLB entry number.
func (m *MMU) itlbUpdateFromUTLB(utlb int) int {
	replace := m.itlbReplacement()
	m.itlbTouch(replace)

	u := &m.utlb[utlb]
	m.itlb[replace] = ITLBEntry{
		VPN:   u.VPN,
		Mask:  u.Mask,
		PPN:   u.PPN,
		ASID:  u.ASID,
		Flags: u.Flags & itlbFlagMask,
	}

	return replace
}

// itlbSearch looks for a single valid ITLB entry matching the VPN. If
// checkASID is true then the entry must also match the current ASID or have
// the share bit set.
func (m *MMU) itlbSearch(vpn uint32, checkASID bool) int {
	result := lookupMiss
	for i := range m.itlb {
		e := &m.itlb[i]
		if e.Flags&TLBValid != TLBValid || !e.matches(vpn) {
			continue
		}
		if checkASID && e.Flags&TLBShare != TLBShare && e.ASID != m.asid {
			continue
		}
		if result != lookupMiss {
			return lookupMultiHit
		}
		result = i
	}
	return result
}

// itlbLookupVPNASID resolves the VPN against the ITLB, falling back to the
// UTLB and replacing an ITLB entry on a miss.
func (m *MMU) itlbLookupVPNASID(vpn uint32) int {
	result := m.itlbSearch(vpn, true)
	if result == lookupMiss {
		u := m.utlbFind(vpn)
		if u < 0 {
			return u
		}
		return m.itlbUpdateFromUTLB(u)
	}
	if result >= 0 {
		m.itlbTouch(result)
	}
	return result
}

// itlbLookupVPN is the same as itlbLookupVPNASID but without ASID checking.
func (m *MMU) itlbLookupVPN(vpn uint32) int {
	result := m.itlbSearch(vpn, false)
	if result == lookupMiss {
		u := m.utlbLookupVPN(vpn)
		if u < 0 {
			return u
		}
		return m.itlbUpdateFromUTLB(u)
	}
	if result >= 0 {
		m.itlbTouch(result)
	}
	return result
}
