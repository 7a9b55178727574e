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
	"github.com/hean01/lxdream/hardware/sh4/mmu"
)

// read from the virtual address. A non-nil error is either a guest exception
// or a failure of the memory system.
func (sh *CPU) read(addr uint32, width bus.Width) (uint32, error) {
	if !width.Aligned(addr) {
		return 0, sh.MMU.Raise(mmu.AddressErrorRead, addr)
	}

	pa, err := sh.MMU.TranslateRead(addr)
	if err != nil {
		return 0, err
	}

	if mmu.IsStoreQueue(pa) {
		return sh.readStoreQueue(pa, width), nil
	}

	return sh.mem.Read(pa, width)
}

// write to the virtual address.
func (sh *CPU) write(addr uint32, data uint32, width bus.Width) error {
	if !width.Aligned(addr) {
		return sh.MMU.Raise(mmu.AddressErrorWrite, addr)
	}

	pa, err := sh.MMU.TranslateWrite(addr)
	if err != nil {
		return err
	}

	if mmu.IsStoreQueue(pa) {
		sh.writeStoreQueue(pa, data, width)
		return nil
	}

	return sh.mem.Write(pa, data, width)
}

// signExtend a value read from memory to 32 bits.
func signExtend(v uint32, width bus.Width) uint32 {
	switch width {
	case bus.Byte:
		return uint32(int32(int8(v)))
	case bus.Word:
		return uint32(int32(int16(v)))
	}
	return v
}
