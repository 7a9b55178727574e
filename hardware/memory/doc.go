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

// Package memory implements the physical address space of the machine. The
// CPU accesses memory through the CPU bus after translating the virtual
// address with the MMU. The debugger accesses memory through the debugger bus.
//
//	    CPU ---- mmu ---- cpu bus ---- MEMORY ---- control ---- MMU registers
//	                                                        \
//	                             |                           \--- TLB arrays
//	                             |
//	                        debugger bus
//
// The memory is divided into areas, defined in the memorymap package. Writes
// to RAM are reported to the translation cache so that translated code for the
// changed memory can be discarded.
//
// Physical addresses in the P4 area (0xe0000000 and above) are not memory but
// control registers of the processor. The memory package dispatches accesses
// to the MMU registers and the memory mapped TLB arrays through the Control
// interface. The store queue area is handled by the CPU and is never seen by
// the memory package.
package memory
