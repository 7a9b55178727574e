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
	"encoding/binary"

	"github.com/hean01/lxdream/hardware/memory/bus"
)

// Area is a contiguous block of RAM or ROM.
type Area struct {
	label  string
	origin uint32
	data   []byte
}

func newArea(label string, origin uint32, memtop uint32) *Area {
	return &Area{
		label:  label,
		origin: origin,
		data:   make([]byte, memtop-origin+1),
	}
}

// Label returns the name of the area.
func (ar *Area) Label() string {
	return ar.label
}

// Origin returns the first address of the area.
func (ar *Area) Origin() uint32 {
	return ar.origin
}

// Memtop returns the last address of the area.
func (ar *Area) Memtop() uint32 {
	return ar.origin + uint32(len(ar.data)) - 1
}

// Data returns the memory backing the area.
func (ar *Area) Data() []byte {
	return ar.data
}

// Reset contents of area.
func (ar *Area) Reset() {
	clear(ar.data)
}

// read a value from the area. address must be normalised.
func (ar *Area) read(address uint32, width bus.Width) uint32 {
	o := address ^ ar.origin
	switch width {
	case bus.Byte:
		return uint32(ar.data[o])
	case bus.Word:
		return uint32(binary.LittleEndian.Uint16(ar.data[o:]))
	}
	return binary.LittleEndian.Uint32(ar.data[o:])
}

// write a value to the area. address must be normalised.
func (ar *Area) write(address uint32, data uint32, width bus.Width) {
	o := address ^ ar.origin
	switch width {
	case bus.Byte:
		ar.data[o] = uint8(data)
	case bus.Word:
		binary.LittleEndian.PutUint16(ar.data[o:], uint16(data))
	default:
		binary.LittleEndian.PutUint32(ar.data[o:], data)
	}
}
