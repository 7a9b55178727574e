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

// BlockSize returns the size of the block's payload.
func (c *Cache) BlockSize(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	return c.arena(id).size(id.offset())
}

// CodeSize returns the size of the translated code in the block. The
// recovery table is not included.
func (c *Cache) CodeSize(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	a := c.arena(id)
	if o := a.field(id.offset(), fieldRecoverOffset); o != 0 {
		return o
	}
	return a.size(id.offset())
}

// State returns the allocation state of the block.
func (c *Cache) State(id BlockID) BlockState {
	if !c.valid(id) {
		return Inactive
	}
	return c.arena(id).state(id.offset())
}

// Mode returns the mode tag of the block.
func (c *Cache) Mode(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	return c.arena(id).field(id.offset(), fieldMode)
}

// SetMode sets the mode tag of the block. The mode tag is the processor mode
// the block was translated for.
func (c *Cache) SetMode(id BlockID, mode uint32) {
	if c.valid(id) {
		c.arena(id).setField(id.offset(), fieldMode, mode)
	}
}

// GuestAddress returns the guest address the block was translated from.
func (c *Cache) GuestAddress(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	return c.arena(id).field(id.offset(), fieldLUTAddr)
}

// GuestSize returns the number of bytes of guest code covered by the block.
func (c *Cache) GuestSize(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	return c.arena(id).field(id.offset(), fieldGuestSize)
}

// UseList returns the value set by SetUseList().
func (c *Cache) UseList(id BlockID) uint32 {
	if !c.valid(id) {
		return 0
	}
	return c.arena(id).field(id.offset(), fieldUseList)
}

// SetUseList associates a value with the block that is given to the Target
// when the block is discarded or moved. A value of zero means that there is
// nothing to notify.
func (c *Cache) SetUseList(id BlockID, useList uint32) {
	if c.valid(id) {
		c.arena(id).setField(id.offset(), fieldUseList, useList)
	}
}

// MarkUsed records that the block has been executed. Blocks that have been
// executed survive promotion from the temp arena to the old arena.
func (c *Cache) MarkUsed(id BlockID) {
	if !c.valid(id) {
		return
	}
	a := c.arena(id)
	off := id.offset()
	if a.state(off) == Active {
		a.setState(off, Used)
	}
	a.setField(off, fieldExecCount, a.field(off, fieldExecCount)+1)
}

// IsCodePointer returns true if the pointer is inside the payload of a block
// in one of the arenas. A pointer is a BlockID plus an offset into the block.
func (c *Cache) IsCodePointer(ptr uint32) bool {
	_, ok := c.blockContaining(ptr)
	return ok
}

// blockContaining returns the block that contains the pointer. Inactive
// blocks are included.
func (c *Cache) blockContaining(ptr uint32) (BlockID, bool) {
	g := generation(ptr >> idGenShift)
	if g >= numGenerations || c.arenas[g] == nil {
		return NoBlock, false
	}
	a := c.arenas[g]
	p := ptr & idOffMask

	for o := uint32(0); o < a.sentinel(); o = a.next(o) {
		start := o + headerSize
		if p >= start && p < start+a.size(o) {
			return a.id(o), true
		}
		if p < start {
			break
		}
	}
	return NoBlock, false
}
