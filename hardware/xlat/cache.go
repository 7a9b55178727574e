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
	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/logger"
)

// Sentinal errors returned by the translation cache.
const (
	InvalidArenaSize = "xlat: invalid arena size (%d bytes)"
	ArenaMapping     = "xlat: mapping %s arena: %v"
	ArenaExhausted   = "xlat: block of %d bytes does not fit in an arena of %d bytes"
	NotBuilding      = "xlat: no block is under construction"
	BlockOverflow    = "xlat: %d bytes does not fit block of %d bytes"
	Integrity        = "xlat: %s arena: %v"
)

// Generations selects how blocks are treated when they are evicted from the
// new arena.
type Generations int

// List of valid Generations values.
const (
	// blocks are discarded on eviction
	SingleGeneration Generations = iota

	// blocks are promoted on eviction to the temp arena and from there to
	// the old arena if they have been executed
	MultiGeneration
)

func (g Generations) String() string {
	if g == MultiGeneration {
		return "multi generation"
	}
	return "single generation"
}

// Target is notified when a block that other blocks have been linked to is
// discarded or moved. The use list value is the value given to SetUseList().
type Target interface {
	UnlinkBlock(useList uint32)
}

// the largest arena that can be addressed by a BlockID.
const maxArenaSize = idOffMask

// the smallest usable arena.
const minArenaSize = 4 * (headerSize + MinBlockSize)

// Cache is the translation cache.
type Cache struct {
	env *environment.Environment

	generations Generations
	arenas      [numGenerations]*arena

	lut    lut
	target Target

	// the header of the block under construction in the new arena
	create   uint32
	building bool
}

// NewCache is the preferred method of initialisation for the Cache type. The
// size is the size of the new arena. For the MultiGeneration mode the temp
// and old arenas are one quarter and one half of that size respectively.
func NewCache(env *environment.Environment, size int, generations Generations) (*Cache, error) {
	if size < minArenaSize || size > maxArenaSize || size%4 != 0 {
		return nil, curated.Errorf(InvalidArenaSize, size)
	}

	c := &Cache{
		env:         env,
		generations: generations,
	}

	sizes := []int{size}
	if generations == MultiGeneration {
		sizes = append(sizes, (size/4)&^3, (size/2)&^3)
		if sizes[1] < minArenaSize {
			return nil, curated.Errorf(InvalidArenaSize, size)
		}
	}

	for i, sz := range sizes {
		mem, err := mapArena(sz)
		if err != nil {
			_ = c.Close()
			return nil, curated.Errorf(ArenaMapping, generation(i), err)
		}
		c.arenas[i] = &arena{
			gen: generation(i),
			mem: mem,
		}
	}

	c.Flush()

	logger.Logf(c.env, "XLAT", "%s cache with %d byte arena", generations, size)

	return c, nil
}

// Close releases the memory used by the arenas. The Cache must not be used
// after Close() has been called.
func (c *Cache) Close() error {
	var err error
	for i, a := range c.arenas {
		if a == nil {
			continue
		}
		if e := unmapArena(a.mem); e != nil && err == nil {
			err = e
		}
		c.arenas[i] = nil
	}
	return err
}

// SetTarget sets the Target that is notified of discarded blocks.
func (c *Cache) SetTarget(target Target) {
	c.target = target
}

// Generations returns the generation mode of the cache.
func (c *Cache) Generations() Generations {
	return c.generations
}

// Flush discards all translated code.
func (c *Cache) Flush() {
	for _, a := range c.arenas {
		if a != nil {
			a.reset()
		}
	}
	c.lut.clear()
	c.building = false
}

// arena returns the arena containing the block.
func (c *Cache) arena(id BlockID) *arena {
	g := id.gen()
	if g >= numGenerations {
		return nil
	}
	return c.arenas[g]
}

// valid returns true if id refers to a block in one of the arenas.
func (c *Cache) valid(id BlockID) bool {
	if id == NoBlock {
		return false
	}
	a := c.arena(id)
	if a == nil {
		return false
	}
	off := uint32(id & idOffMask)
	return off >= headerSize && off <= a.sentinel()
}

// Start a new block at the guest address. The block is installed in the LUT
// immediately and replaces any block already at that address, which becomes
// the next block in the chain for the slot. The block must be finished with
// Commit() before another block is started.
func (c *Cache) Start(addr uint32) BlockID {
	a := c.arenas[genNew]
	if a.size(a.ptr) == 0 {
		a.ptr = 0
	}
	if a.state(a.ptr) != Inactive {
		c.evict(a, a.ptr)
	}

	c.create = a.ptr
	c.building = true
	a.ptr = a.next(a.ptr)

	id := a.id(c.create)
	slot := c.lut.slot(addr)

	h := header{
		state:   Active,
		size:    a.size(c.create),
		lutAddr: addr,
	}
	if slot.isEntry() {
		h.chain = slot.Block
	}
	a.setHeader(c.create, h)
	*slot = slot.withBlock(id)

	return id
}

// Extend the block under construction so that it has a payload of at least
// newSize bytes. The block may be moved as a result, in which case the
// payload is copied and the new BlockID returned.
func (c *Cache) Extend(newSize uint32) (BlockID, error) {
	if !c.building {
		return NoBlock, curated.Errorf(NotBuilding)
	}

	a := c.arenas[genNew]
	if newSize > a.capacity() {
		return NoBlock, curated.Errorf(ArenaExhausted, newSize, a.capacity())
	}

	for a.size(c.create) < newSize {
		if a.size(a.ptr) != 0 {
			next := a.ptr
			if a.state(next) != Inactive {
				c.evict(a, next)
			}
			a.ptr = a.next(next)
			a.setSize(c.create, a.size(c.create)+a.size(next)+headerSize)
			continue
		}

		// the sentinel has been reached. move the block to the start of the
		// arena so that it remains contiguous
		if err := c.relocate(a); err != nil {
			return NoBlock, err
		}
	}

	return a.id(c.create), nil
}

// relocate moves the block under construction to the start of the arena.
func (c *Cache) relocate(a *arena) error {
	old := a.header(c.create)
	oldID := a.id(c.create)
	size := old.size + MinBlockSize
	if size > a.capacity() {
		return curated.Errorf(ArenaExhausted, size, a.capacity())
	}

	// the block is removed from the LUT while the blocks at the start of the
	// arena are evicted. evicting them may change the chain
	c.unlink(oldID)
	a.setState(c.create, Inactive)

	allocation := -int64(headerSize)
	a.ptr = 0
	for allocation < int64(size) {
		if a.state(a.ptr) != Inactive {
			c.evict(a, a.ptr)
		}
		allocation += int64(a.size(a.ptr)) + headerSize
		a.ptr = a.next(a.ptr)
	}

	src := c.create + headerSize
	c.create = 0
	slot := c.lut.slot(old.lutAddr)

	h := header{
		state:   Active,
		size:    uint32(allocation),
		lutAddr: old.lutAddr,
		mode:    old.mode,
	}
	if slot.isEntry() {
		h.chain = slot.Block
	}
	a.setHeader(0, h)
	*slot = slot.withBlock(a.id(0))

	copy(a.mem[headerSize:headerSize+old.size], a.mem[src:src+old.size])

	logger.Logf(c.env, "XLAT", "relocated block for %08x (%d bytes)", old.lutAddr, old.size)

	return nil
}

// Commit the block under construction. The first destSize bytes of the
// payload are retained and the remainder released. The guest addresses after
// startAddr and before endAddr are marked as being covered by the block.
func (c *Cache) Commit(destSize uint32, startAddr uint32, endAddr uint32) error {
	if !c.building {
		return curated.Errorf(NotBuilding)
	}

	a := c.arenas[genNew]
	if destSize > a.size(c.create) {
		return curated.Errorf(BlockOverflow, destSize, a.size(c.create))
	}

	for addr := startAddr + 2; addr < endAddr; addr += 2 {
		slot := c.lut.slot(addr)
		*slot = slot.asContinuation()
	}

	a.setField(c.create, fieldGuestSize, endAddr-startAddr)
	a.ptr = a.cut(c.create, destSize)
	c.building = false

	return nil
}

// Code returns the payload of the block. Returns nil if the BlockID is not
// valid.
func (c *Cache) Code(id BlockID) []byte {
	if !c.valid(id) {
		return nil
	}
	return c.arena(id).payload(id.offset())
}

// Lookup returns the most recently translated block for the guest address.
func (c *Cache) Lookup(addr uint32) BlockID {
	s := c.lut.peek(addr)
	if s.isEntry() {
		return s.Block
	}
	return NoBlock
}

// LookupMode returns the most recently translated block for the guest address
// that was translated with the mode.
func (c *Cache) LookupMode(addr uint32, mode uint32) BlockID {
	s := c.lut.peek(addr)
	if !s.isEntry() {
		return NoBlock
	}
	for id := s.Block; id != NoBlock; {
		a := c.arena(id)
		off := id.offset()
		if a.field(off, fieldMode) == mode {
			return id
		}
		id = BlockID(a.field(off, fieldChain))
	}
	return NoBlock
}

// Slot returns the LUT slot for the guest address.
func (c *Cache) Slot(addr uint32) Slot {
	return c.lut.peek(addr)
}
