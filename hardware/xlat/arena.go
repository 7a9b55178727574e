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
	"encoding/binary"
	"fmt"
)

// the size of a block header in bytes.
const headerSize = 40

// MinBlockSize is the smallest payload a free block is cut to.
const MinBlockSize = 32

// offsets of the header fields. each field is a little-endian 32bit value.
const (
	fieldState         = 0
	fieldSize          = 4
	fieldChain         = 8
	fieldLUTAddr       = 12
	fieldUseList       = 16
	fieldRecoverOffset = 20
	fieldRecoverCount  = 24
	fieldMode          = 28
	fieldExecCount     = 32
	fieldGuestSize     = 36
)

// BlockState is the allocation state of a block.
type BlockState uint32

// List of valid BlockState values.
const (
	Inactive BlockState = iota
	Active
	Used
)

func (s BlockState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Used:
		return "used"
	}
	return fmt.Sprintf("invalid (%d)", uint32(s))
}

// header is the decoded form of a block header.
type header struct {
	state BlockState
	size  uint32

	// the next block in the chain of blocks that share a LUT slot
	chain BlockID

	// the guest address that the block is installed at
	lutAddr uint32

	useList       uint32
	recoverOffset uint32
	recoverCount  uint32
	mode          uint32
	execCount     uint32
	guestSize     uint32
}

// generation identifies an arena.
type generation uint32

const (
	genNew generation = iota
	genTemp
	genOld
	numGenerations
)

func (g generation) String() string {
	switch g {
	case genNew:
		return "new"
	case genTemp:
		return "temp"
	case genOld:
		return "old"
	}
	return "unknown"
}

// arena is a region of executable memory divided into blocks. The arena is
// only accessed through the methods of this type.
type arena struct {
	gen generation
	mem []byte

	// the header of the next block to be allocated
	ptr uint32
}

func (a *arena) field(off uint32, field uint32) uint32 {
	return binary.LittleEndian.Uint32(a.mem[off+field:])
}

func (a *arena) setField(off uint32, field uint32, v uint32) {
	binary.LittleEndian.PutUint32(a.mem[off+field:], v)
}

func (a *arena) header(off uint32) header {
	return header{
		state:         BlockState(a.field(off, fieldState)),
		size:          a.field(off, fieldSize),
		chain:         BlockID(a.field(off, fieldChain)),
		lutAddr:       a.field(off, fieldLUTAddr),
		useList:       a.field(off, fieldUseList),
		recoverOffset: a.field(off, fieldRecoverOffset),
		recoverCount:  a.field(off, fieldRecoverCount),
		mode:          a.field(off, fieldMode),
		execCount:     a.field(off, fieldExecCount),
		guestSize:     a.field(off, fieldGuestSize),
	}
}

func (a *arena) setHeader(off uint32, h header) {
	a.setField(off, fieldState, uint32(h.state))
	a.setField(off, fieldSize, h.size)
	a.setField(off, fieldChain, uint32(h.chain))
	a.setField(off, fieldLUTAddr, h.lutAddr)
	a.setField(off, fieldUseList, h.useList)
	a.setField(off, fieldRecoverOffset, h.recoverOffset)
	a.setField(off, fieldRecoverCount, h.recoverCount)
	a.setField(off, fieldMode, h.mode)
	a.setField(off, fieldExecCount, h.execCount)
	a.setField(off, fieldGuestSize, h.guestSize)
}

func (a *arena) state(off uint32) BlockState {
	return BlockState(a.field(off, fieldState))
}

func (a *arena) setState(off uint32, s BlockState) {
	a.setField(off, fieldState, uint32(s))
}

func (a *arena) size(off uint32) uint32 {
	return a.field(off, fieldSize)
}

func (a *arena) setSize(off uint32, size uint32) {
	a.setField(off, fieldSize, size)
}

// next returns the header following the block at off.
func (a *arena) next(off uint32) uint32 {
	return off + headerSize + a.size(off)
}

// payload returns the payload of the block at off.
func (a *arena) payload(off uint32) []byte {
	start := off + headerSize
	return a.mem[start : start+a.size(off)]
}

// sentinel returns the offset of the sentinel header.
func (a *arena) sentinel() uint32 {
	return uint32(len(a.mem)) - headerSize
}

// capacity is the largest payload a single block can have.
func (a *arena) capacity() uint32 {
	return uint32(len(a.mem)) - 2*headerSize
}

// reset the arena to a single free block.
func (a *arena) reset() {
	a.setHeader(0, header{state: Inactive, size: a.capacity()})
	a.setHeader(a.sentinel(), header{state: Active, size: 0})
	a.ptr = 0
}

// id returns the BlockID for the block at off.
func (a *arena) id(off uint32) BlockID {
	return BlockID(uint32(a.gen)<<idGenShift | (off + headerSize))
}

// cut the block at off so that it has the given payload size, with the
// remaining space forming a new free block. The cut is not made if the free
// block would be smaller than the minimum block size. Returns the header
// following the (possibly cut) block.
func (a *arena) cut(off uint32, cutsize uint32) uint32 {
	cutsize = (cutsize + 3) &^ 3

	// a size of zero identifies the sentinel
	if cutsize == 0 {
		cutsize = 4
	}

	size := a.size(off)
	if size > cutsize+headerSize+MinBlockSize {
		a.setSize(off, cutsize)
		next := a.next(off)
		a.setHeader(next, header{state: Inactive, size: size - cutsize - headerSize})
		return next
	}
	return a.next(off)
}

// contains returns true if off is the offset of a block in the arena. The
// walk is linear in the number of blocks.
func (a *arena) contains(off uint32) bool {
	for o := uint32(0); o < a.sentinel(); o = a.next(o) {
		if o == off {
			return true
		}
	}
	return false
}

// integrity walks the arena and checks the sentinel is in place and the
// allocation cursor is at a block boundary.
func (a *arena) integrity() error {
	sentinel := a.sentinel()
	if a.state(sentinel) != Active || a.size(sentinel) != 0 {
		return fmt.Errorf("sentinel is %s with size %d", a.state(sentinel), a.size(sentinel))
	}

	foundPtr := a.ptr == sentinel
	o := uint32(0)
	for o < sentinel {
		if s := a.state(o); s > Used {
			return fmt.Errorf("block at %#x has state %s", o, s)
		}
		if a.size(o) >= uint32(len(a.mem)) {
			return fmt.Errorf("block at %#x has size %d", o, a.size(o))
		}
		if o == a.ptr {
			foundPtr = true
		}
		o = a.next(o)
	}

	if o != sentinel {
		return fmt.Errorf("last block ends at %#x not at sentinel %#x", o, sentinel)
	}
	if !foundPtr {
		return fmt.Errorf("allocation cursor %#x is not a block boundary", a.ptr)
	}

	return nil
}
