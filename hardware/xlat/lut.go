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

package xlat

// BlockID identifies a block in the translation cache. The zero value is
// NoBlock.
type BlockID uint32

// NoBlock is the BlockID used where there is no block.
const NoBlock BlockID = 0

// the generation of the block is in the top nibble of the BlockID. the
// remaining bits are the offset of the block's payload in the arena.
const (
	idGenShift = 28
	idOffMask  = (1 << idGenShift) - 1
)

func (id BlockID) gen() generation {
	return generation(id >> idGenShift)
}

// offset of the block header in the arena.
func (id BlockID) offset() uint32 {
	return uint32(id&idOffMask) - headerSize
}

// number of pages and the number of slots in each page of the LUT. a slot
// covers a single 16bit instruction.
const (
	lutPages     = 1 << 16
	lutPageSlots = 1 << 12
)

func lutPage(addr uint32) uint32 {
	return (addr >> 13) & 0xffff
}

func lutSlot(addr uint32) uint32 {
	return (addr & 0x1ffe) >> 1
}

// lutAddress is the inverse of lutPage() and lutSlot().
func lutAddress(page uint32, slot uint32) uint32 {
	return (page&0xffff)<<13 | (slot<<1)&0x1ffe
}

// SlotKind describes the content of a LUT slot.
type SlotKind uint8

// List of valid SlotKind values.
const (
	// nothing has been translated at the address
	Empty SlotKind = iota

	// the address is part of a block that begins at an earlier address
	Reserved

	// a block begins at the address
	Entry

	// a block begins at the address and the address is also part of a block
	// that begins at an earlier address
	Continuation
)

func (k SlotKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Reserved:
		return "reserved"
	case Entry:
		return "entry"
	case Continuation:
		return "continuation"
	}
	return "unknown"
}

// Slot is a single entry in the LUT. Block is the most recently translated
// block for the address and is only meaningful for the Entry and
// Continuation kinds.
type Slot struct {
	Kind  SlotKind
	Block BlockID
}

// isEntry returns true if a block begins at the slot.
func (s Slot) isEntry() bool {
	return s.Kind == Entry || s.Kind == Continuation
}

// isContinuation returns true if the slot is covered by a block that begins
// at an earlier address.
func (s Slot) isContinuation() bool {
	return s.Kind == Reserved || s.Kind == Continuation
}

// isUsed returns true if the slot is not empty.
func (s Slot) isUsed() bool {
	return s.Kind != Empty
}

// withBlock returns the slot with the entry block changed, preserving the
// continuation property.
func (s Slot) withBlock(id BlockID) Slot {
	cont := s.isContinuation()
	switch {
	case id == NoBlock && cont:
		return Slot{Kind: Reserved}
	case id == NoBlock:
		return Slot{Kind: Empty}
	case cont:
		return Slot{Kind: Continuation, Block: id}
	}
	return Slot{Kind: Entry, Block: id}
}

// asContinuation returns the slot with the continuation property set.
func (s Slot) asContinuation() Slot {
	switch s.Kind {
	case Empty:
		return Slot{Kind: Reserved}
	case Entry:
		return Slot{Kind: Continuation, Block: s.Block}
	}
	return s
}

type page [lutPageSlots]Slot

// lut is the two level lookup table from guest address to block. Pages are
// allocated on first use.
type lut struct {
	pages [lutPages]*page
}

// page returns the LUT page for the address or nil if it has not been
// allocated.
func (l *lut) page(addr uint32) *page {
	return l.pages[lutPage(addr)]
}

// slot returns the slot for the address, allocating the page if required.
func (l *lut) slot(addr uint32) *Slot {
	p := l.pages[lutPage(addr)]
	if p == nil {
		p = &page{}
		l.pages[lutPage(addr)] = p
	}
	return &p[lutSlot(addr)]
}

// peek returns the slot for the address without allocating.
func (l *lut) peek(addr uint32) Slot {
	p := l.pages[lutPage(addr)]
	if p == nil {
		return Slot{}
	}
	return p[lutSlot(addr)]
}

// clear empties every allocated page.
func (l *lut) clear() {
	for i := range l.pages {
		if l.pages[i] != nil {
			*l.pages[i] = page{}
		}
	}
}
