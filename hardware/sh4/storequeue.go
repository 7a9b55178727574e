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

package sh4

import (
	"github.com/hean01/lxdream/hardware/memory/bus"
)

// the store queue is two queues of eight longwords. bit 5 of the address
// selects the queue.
func sqIndex(addr uint32) (int, int) {
	return int(addr>>5) & 1, int(addr>>2) & 7
}

func (sh *CPU) readStoreQueue(addr uint32, width bus.Width) uint32 {
	q, i := sqIndex(addr)
	v := sh.storeQueue[q][i]
	shift := (addr & 3) * 8
	switch width {
	case bus.Byte:
		return (v >> shift) & 0xff
	case bus.Word:
		return (v >> shift) & 0xffff
	}
	return v
}

func (sh *CPU) writeStoreQueue(addr uint32, data uint32, width bus.Width) {
	q, i := sqIndex(addr)
	shift := (addr & 3) * 8
	switch width {
	case bus.Byte:
		sh.storeQueue[q][i] = sh.storeQueue[q][i]&^(0xff<<shift) | (data&0xff)<<shift
	case bus.Word:
		sh.storeQueue[q][i] = sh.storeQueue[q][i]&^(0xffff<<shift) | (data&0xffff)<<shift
	default:
		sh.storeQueue[q][i] = data
	}
}

// flushStoreQueue writes the queue selected by the address to memory, as
// performed by a PREF instruction.
func (sh *CPU) flushStoreQueue(addr uint32) error {
	target, err := sh.MMU.StoreQueueTarget(addr)
	if err != nil {
		return err
	}

	q, _ := sqIndex(addr)
	target &^= 0x1f
	for i, v := range sh.storeQueue[q] {
		if err := sh.mem.Write(target+uint32(i)*4, v, bus.Long); err != nil {
			return err
		}
	}
	return nil
}
