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

import (
	"github.com/hean01/lxdream/logger"
)

// evict the block at off in the arena so that the space can be reused. What
// happens to the block depends on the generation mode and on the arena.
func (c *Cache) evict(a *arena, off uint32) {
	id := a.id(off)

	if c.generations == SingleGeneration {
		c.delete(id)
		return
	}

	switch a.gen {
	case genNew:
		c.promote(id, c.arenas[genTemp])
	case genTemp:
		if a.state(off) == Used {
			c.promote(id, c.arenas[genOld])
		} else {
			c.delete(id)
		}
	default:
		c.delete(id)
	}
}

// delete the block, removing it from the LUT.
func (c *Cache) delete(id BlockID) {
	c.unlink(id)
	c.discard(id)
}

// discard marks the block as inactive and notifies the target. The LUT is
// not changed.
func (c *Cache) discard(id BlockID) {
	a := c.arena(id)
	off := id.offset()
	a.setState(off, Inactive)
	c.notify(a.field(off, fieldUseList))
	a.setField(off, fieldUseList, 0)
}

func (c *Cache) notify(useList uint32) {
	if useList != 0 && c.target != nil {
		c.target.UnlinkBlock(useList)
	}
}

// unlink removes the block from the chain of blocks for its LUT slot.
func (c *Cache) unlink(id BlockID) {
	a := c.arena(id)
	off := id.offset()
	chain := BlockID(a.field(off, fieldChain))
	c.replace(a.field(off, fieldLUTAddr), id, chain)
}

// replace the reference to a block in the chain of blocks for the LUT slot
// with another block. The reference is either the slot itself or the chain
// field of another block.
func (c *Cache) replace(addr uint32, id BlockID, with BlockID) {
	slot := c.lut.slot(addr)
	if slot.isEntry() && slot.Block == id {
		*slot = slot.withBlock(with)
		return
	}

	if slot.isEntry() {
		prev := slot.Block
		for prev != NoBlock {
			pa := c.arena(prev)
			next := BlockID(pa.field(prev.offset(), fieldChain))
			if next == id {
				pa.setField(prev.offset(), fieldChain, uint32(with))
				return
			}
			prev = next
		}
	}

	logger.Logf(c.env, "XLAT", "block %08x is not in the chain for %08x", uint32(id), addr)
}

// promote copies the block into the destination arena, evicting blocks from
// the destination as necessary. The LUT and chain are updated to refer to the
// new copy. Blocks too large for the destination arena are deleted.
func (c *Cache) promote(id BlockID, dst *arena) {
	src := c.arena(id)
	srcOff := id.offset()
	size := src.size(srcOff)

	if size > dst.capacity() {
		c.delete(id)
		return
	}

	allocation := -int64(headerSize)
	cur := dst.ptr
	if dst.size(cur) == 0 {
		cur = 0
	}
	start := cur
	for {
		if dst.state(cur) != Inactive {
			c.evict(dst, cur)
		}
		allocation += int64(dst.size(cur)) + headerSize
		cur = dst.next(cur)
		if allocation >= int64(size) {
			break
		}
		if dst.size(cur) == 0 {
			// leave what has been released as free space and start again at
			// the beginning of the arena
			dst.setHeader(start, header{state: Inactive, size: uint32(allocation)})
			allocation = -int64(headerSize)
			start = 0
			cur = 0
		}
	}

	// evictions from the destination may have changed the chain so the
	// header is read after the space has been made
	h := src.header(srcOff)

	// links to the old copy of the block can not be carried over
	c.notify(h.useList)

	dst.setHeader(start, header{
		state:         Active,
		size:          uint32(allocation),
		chain:         h.chain,
		lutAddr:       h.lutAddr,
		recoverOffset: h.recoverOffset,
		recoverCount:  h.recoverCount,
		mode:          h.mode,
		execCount:     h.execCount,
		guestSize:     h.guestSize,
	})
	newID := dst.id(start)
	c.replace(h.lutAddr, id, newID)
	copy(dst.mem[start+headerSize:start+headerSize+size], src.mem[srcOff+headerSize:srcOff+headerSize+size])

	src.setState(srcOff, Inactive)
	src.setField(srcOff, fieldUseList, 0)

	dst.ptr = dst.cut(start, size)
	if dst.size(dst.ptr) == 0 {
		dst.ptr = 0
	}
}
