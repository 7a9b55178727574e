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

package memorymap

import (
	"fmt"
	"strings"
)

// the primary areas in address order.
var primary = []struct {
	origin uint32
	memtop uint32
}{
	{OriginBIOS, MemtopBIOS},
	{OriginRAM, MemtopRAM},
	{OriginStoreQueue, MemtopStoreQueue},
	{OriginITLBAddress, MemtopITLBAddress},
	{OriginITLBData, MemtopITLBData},
	{OriginUTLBAddress, MemtopUTLBAddress},
	{OriginUTLBData, MemtopUTLBData},
	{OriginControl, MemtopControl},
}

// Summary returns a single multiline string detailing the primary areas in
// the address space. Useful for reference.
func Summary() string {
	s := strings.Builder{}
	for _, p := range primary {
		_, area := MapAddress(p.origin)
		s.WriteString(fmt.Sprintf("%08x -> %08x\t%s\n", p.origin, p.memtop, area.String()))
	}
	return s.String()
}
