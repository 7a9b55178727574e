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

package memory

import (
	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/memory/bus"
	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/logger"
)

// Sentinal errors returned by the memory package.
const (
	UnmappedAddress = "memory: no memory at %08x"
	LoadOverflow    = "memory: %d bytes at %08x overflows the %s area"
	Misaligned      = "memory: %s access at %08x is misaligned"
)

// Control is the interface to the MMU registers and the memory mapped TLB
// arrays in the P4 area.
type Control interface {
	ReadRegister(offset uint32) uint32
	WriteRegister(offset uint32, val uint32)
	ReadITLBAddress(addr uint32) uint32
	ReadITLBData(addr uint32) uint32
	WriteITLBAddress(addr uint32, val uint32)
	WriteITLBData(addr uint32, val uint32)
	ReadUTLBAddress(addr uint32) uint32
	ReadUTLBData(addr uint32) uint32
	WriteUTLBAddress(addr uint32, val uint32) error
	WriteUTLBData(addr uint32, val uint32)
}

// CodeCache is notified of writes to memory that may contain translated code.
// Addresses are canonical physical addresses.
type CodeCache interface {
	InvalidateWord(addr uint32)
	InvalidateLong(addr uint32)
	InvalidateRange(addr uint32, size uint32)
}

// the MMU registers occupy the first page of the control area. other control
// registers are not emulated.
const controlMMUMask = 0xfffff000

// Memory is the physical address space of the machine.
type Memory struct {
	env *environment.Environment

	BIOS *Area
	RAM  *Area

	control Control
	code    CodeCache
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory(env *environment.Environment) *Memory {
	return &Memory{
		env:  env,
		BIOS: newArea("BIOS", memorymap.OriginBIOS, memorymap.MemtopBIOS),
		RAM:  newArea("RAM", memorymap.OriginRAM, memorymap.MemtopRAM),
	}
}

// Plumb the control registers and the translation cache into the memory
// system. Either may be nil.
func (mem *Memory) Plumb(control Control, code CodeCache) {
	mem.control = control
	mem.code = code
}

// Reset clears RAM. The BIOS is not changed.
func (mem *Memory) Reset() {
	mem.RAM.Reset()
	if mem.code != nil {
		mem.code.InvalidateRange(memorymap.OriginRAM, uint32(len(mem.RAM.data)))
	}
}

// area returns the RAM or ROM area for the normalised address.
func (mem *Memory) area(area memorymap.Area) *Area {
	switch area {
	case memorymap.BIOS:
		return mem.BIOS
	case memorymap.RAM:
		return mem.RAM
	}
	return nil
}

// Region returns the memory backing the physical address, running from the
// address to the end of the RAM or ROM area. Returns nil for any other
// address.
func (mem *Memory) Region(ppa uint32) []byte {
	ma, area := memorymap.MapAddress(ppa)
	ar := mem.area(area)
	if ar == nil {
		return nil
	}
	return ar.data[ma^ar.origin:]
}

// Read implements the bus.CPUBus interface.
func (mem *Memory) Read(address uint32, width bus.Width) (uint32, error) {
	if !width.Aligned(address) {
		return 0, curated.Errorf(Misaligned, width, address)
	}

	ma, area := memorymap.MapAddress(address)
	if ar := mem.area(area); ar != nil {
		return ar.read(ma, width), nil
	}

	if mem.control != nil {
		switch area {
		case memorymap.Control:
			if ma&controlMMUMask == memorymap.OriginControl {
				return mem.control.ReadRegister(ma), nil
			}
		case memorymap.ITLBAddress:
			return mem.control.ReadITLBAddress(ma), nil
		case memorymap.ITLBData:
			return mem.control.ReadITLBData(ma), nil
		case memorymap.UTLBAddress:
			return mem.control.ReadUTLBAddress(ma), nil
		case memorymap.UTLBData:
			return mem.control.ReadUTLBData(ma), nil
		}
	}

	logger.Logf(mem.env, "MEMORY", "unmapped %s read at %08x", width, address)
	return 0, nil
}

// Write implements the bus.CPUBus interface. The error may be an mmu.Fault
// if the write is to the UTLB address array.
func (mem *Memory) Write(address uint32, data uint32, width bus.Width) error {
	if !width.Aligned(address) {
		return curated.Errorf(Misaligned, width, address)
	}

	ma, area := memorymap.MapAddress(address)
	switch area {
	case memorymap.RAM:
		mem.RAM.write(ma, data, width)
		if mem.code != nil {
			if width == bus.Long {
				mem.code.InvalidateLong(ma)
			} else {
				mem.code.InvalidateWord(ma &^ 1)
			}
		}
		return nil
	case memorymap.BIOS:
		logger.Logf(mem.env, "MEMORY", "ignored %s write to BIOS at %08x", width, address)
		return nil
	}

	if mem.control != nil {
		switch area {
		case memorymap.Control:
			if ma&controlMMUMask == memorymap.OriginControl {
				mem.control.WriteRegister(ma, data)
				return nil
			}
		case memorymap.ITLBAddress:
			mem.control.WriteITLBAddress(ma, data)
			return nil
		case memorymap.ITLBData:
			mem.control.WriteITLBData(ma, data)
			return nil
		case memorymap.UTLBAddress:
			return mem.control.WriteUTLBAddress(ma, data)
		case memorymap.UTLBData:
			mem.control.WriteUTLBData(ma, data)
			return nil
		}
	}

	logger.Logf(mem.env, "MEMORY", "unmapped %s write at %08x", width, address)
	return nil
}

// Peek implements the bus.DebuggerBus interface.
func (mem *Memory) Peek(address uint32) (uint8, error) {
	ma, area := memorymap.MapAddress(address)
	ar := mem.area(area)
	if ar == nil {
		return 0, curated.Errorf(UnmappedAddress, address)
	}
	return uint8(ar.read(ma, bus.Byte)), nil
}

// Poke implements the bus.DebuggerBus interface. Unlike Write(), the BIOS can
// be changed with Poke().
func (mem *Memory) Poke(address uint32, value uint8) error {
	ma, area := memorymap.MapAddress(address)
	ar := mem.area(area)
	if ar == nil {
		return curated.Errorf(UnmappedAddress, address)
	}
	ar.write(ma, uint32(value), bus.Byte)
	if mem.code != nil {
		mem.code.InvalidateWord(ma &^ 1)
	}
	return nil
}

// Load copies data into the RAM or ROM area containing the physical address.
// Translated code for the changed memory is discarded.
func (mem *Memory) Load(address uint32, data []byte) error {
	ma, area := memorymap.MapAddress(address)
	ar := mem.area(area)
	if ar == nil {
		return curated.Errorf(UnmappedAddress, address)
	}

	o := ma ^ ar.origin
	if int(o)+len(data) > len(ar.data) {
		return curated.Errorf(LoadOverflow, len(data), address, ar.label)
	}
	copy(ar.data[o:], data)

	if mem.code != nil {
		mem.code.InvalidateRange(ma, uint32(len(data)+1)&^1)
	}

	logger.Logf(mem.env, "MEMORY", "loaded %d bytes at %08x (%s)", len(data), ma, ar.label)

	return nil
}
