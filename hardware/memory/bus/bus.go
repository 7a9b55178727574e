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

package bus

// Width is the size of a memory access in bytes.
type Width int

// List of valid Width values.
const (
	Byte Width = 1
	Word Width = 2
	Long Width = 4
)

func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Long:
		return "long"
	}
	return "invalid width"
}

// Aligned returns true if the address is aligned to the width.
func (w Width) Aligned(address uint32) bool {
	return address&uint32(w-1) == 0
}

// CPUBus defines the operations for the memory system when accessed from the
// CPU. Addresses are physical addresses and values are zero extended.
type CPUBus interface {
	Read(address uint32, width Width) (uint32, error)
	Write(address uint32, data uint32, width Width) error
}

// DebuggerBus defines the meta-operations for all memory areas. Think of these
// functions as "debugging" functions, that is operations outside of the normal
// operation of the machine. Peek() and Poke() have no side effects other than
// changing the memory value.
type DebuggerBus interface {
	Peek(address uint32) (uint8, error)
	Poke(address uint32, value uint8) error
}
