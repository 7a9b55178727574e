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

package memorymap_test

import (
	"testing"

	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/test"
)

const validMemMap = `00000000 -> 001fffff	BIOS
0c000000 -> 0cffffff	RAM
e0000000 -> e3ffffff	Store Queue
f2000000 -> f2ffffff	ITLB Address Array
f3000000 -> f3ffffff	ITLB Data Array
f6000000 -> f6ffffff	UTLB Address Array
f7000000 -> f7ffffff	UTLB Data Array
ff000000 -> ffffffff	Control Registers
`

func TestMemory(t *testing.T) {
	if memorymap.Summary() != validMemMap {
		t.Fatalf("memory map is invalid")
	}
}

func TestMirrors(t *testing.T) {
	a, area := memorymap.MapAddress(0x0d001234)
	test.ExpectEquality(t, a, uint32(0x0c001234))
	test.ExpectEquality(t, area, memorymap.RAM)

	a, area = memorymap.MapAddress(0x8f000010)
	test.ExpectEquality(t, a, uint32(0x0c000010))
	test.ExpectEquality(t, area, memorymap.RAM)

	a, area = memorymap.MapAddress(0xa0000100)
	test.ExpectEquality(t, a, uint32(0x00000100))
	test.ExpectEquality(t, area, memorymap.BIOS)

	// the top of the external space shadows P4
	a, area = memorymap.MapAddress(0x1f000010)
	test.ExpectEquality(t, a, uint32(0xff000010))
	test.ExpectEquality(t, area, memorymap.Control)

	_, area = memorymap.MapAddress(0x04000000)
	test.ExpectEquality(t, area, memorymap.Undefined)

	_, area = memorymap.MapAddress(0xe2000000)
	test.ExpectEquality(t, area, memorymap.StoreQueue)

	test.ExpectSuccess(t, memorymap.IsArea(0xf6000100, memorymap.UTLBAddress))
	test.ExpectFailure(t, memorymap.IsArea(0xf6000100, memorymap.UTLBData))
}
