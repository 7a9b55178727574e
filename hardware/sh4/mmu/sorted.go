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

// sortEntry is a single entry in the sorted UTLB index.
type sortEntry struct {
	key  uint32
	mask uint32

	// the UTLB entry number or lookupMultiHit
	entry int
}

// sortedIndex is the list of valid UTLB entries, sorted by masked VPN and
// then ASID. Multi-hit entries are resolved when the entry is inserted.
//
// Pages of different sizes that overlap without sharing a base address are
// not detected as multi-hits.
type sortedIndex struct {
	entries [UTLBEntries]sortEntry
	count   int
}

func (s *sortedIndex) reset() {
	s.count = 0
}

// find returns the UTLB entry number for the lookup value, which is the VPN
// of the address plus the ASID.
func (s *sortedIndex) find(lookup uint32) int {
	low := 0
	high := s.count
	for low != high {
		posn := (high + low) >> 1
		masked := lookup & s.entries[posn].mask
		if s.entries[posn].key < masked {
			low = posn + 1
		} else if s.entries[posn].key > masked {
			high = posn
		} else {
			return s.entries[posn].entry
		}
	}
	return lookupMiss
}

// insert adds an entry to the index. A key that is already present is
// converted into a multi-hit entry.
func (s *sortedIndex) insert(key uint32, mask uint32, entry int) {
	low := 0
	high := s.count
	for low != high {
		posn := (high + low) >> 1
		if s.entries[posn].key < key {
			low = posn + 1
		} else if s.entries[posn].key > key {
			high = posn
		} else {
			s.entries[posn].entry = lookupMultiHit
			return
		}
	}

	copy(s.entries[low+1:s.count+1], s.entries[low:s.count])
	s.entries[low] = sortEntry{
		key:   key,
		mask:  mask | 0x000000ff,
		entry: entry,
	}
	s.count++
}

// remove the entry with the key from the index. Returns false if the entry is
// a multi-hit entry, in which case the index has not been changed and must be
// rebuilt by the caller. Also returns false if the key could not be found.
func (s *sortedIndex) remove(key uint32) bool {
	low := 0
	high := s.count
	for low != high {
		posn := (high + low) >> 1
		if s.entries[posn].key < key {
			low = posn + 1
		} else if s.entries[posn].key > key {
			high = posn
		} else {
			if s.entries[posn].entry == lookupMultiHit {
				return false
			}
			s.count--
			copy(s.entries[posn:s.count], s.entries[posn+1:s.count+1])
			return true
		}
	}
	return false
}

// utlbInsert adds the UTLB entry to the sorted index. Must be called whenever
// an entry becomes valid.
func (m *MMU) utlbInsert(entry int) {
	e := &m.utlb[entry]
	m.sorted.insert(e.key(), e.Mask, entry)
}

// utlbRemove removes the UTLB entry from the sorted index. Must be called
// whenever an entry stops being valid, before the VPN, ASID or mask of the
// entry are changed.
func (m *MMU) utlbRemove(entry int) {
	if m.sorted.remove(m.utlb[entry].key()) {
		return
	}

	// rebuild the whole table minus the entry. this is the normal outcome
	// for a multi-hit key; for a missing key it repairs the index
	if m.sorted.find(m.utlb[entry].key()) != lookupMultiHit {
		logger.Logf(m.env, "MMU", "utlb entry %d not in sorted index", entry)
	}
	m.sorted.reset()
	for i := range m.utlb {
		if i != entry && m.utlb[i].Flags&TLBValid == TLBValid {
			m.utlbInsert(i)
		}
	}
}

// sortedReload rebuilds the sorted index from the UTLB.
func (m *MMU) sortedReload() {
	m.sorted.reset()
	for i := range m.utlb {
		if m.utlb[i].Flags&TLBValid == TLBValid {
			m.utlbInsert(i)
		}
	}
}
