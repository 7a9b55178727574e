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

// Area represents the different areas of the physical address space.
type Area int

func (a Area) String() string {
	switch a {
	case BIOS:
		return "BIOS"
	case RAM:
		return "RAM"
	case StoreQueue:
		return "Store Queue"
	case ITLBAddress:
		return "ITLB Address Array"
	case ITLBData:
		return "ITLB Data Array"
	case UTLBAddress:
		return "UTLB Address Array"
	case UTLBData:
		return "UTLB Data Array"
	case Control:
		return "Control Registers"
	}

	return "undefined"
}

// The different memory areas that are emulated.
const (
	Undefined Area = iota
	BIOS
	RAM
	StoreQueue
	ITLBAddress
	ITLBData
	UTLBAddress
	UTLBData
	Control
)

// The origin and memory top for each area of memory. The RAM area is
// mirrored four times in area 3 of the external address space. The values
// here are for the primary mirror.
//
// Implementations of the different memory areas drag the address down into
// the range of an array with (address^origin) rather than subtraction.
const (
	OriginBIOS        = uint32(0x00000000)
	MemtopBIOS        = uint32(0x001fffff)
	OriginRAM         = uint32(0x0c000000)
	MemtopRAM         = uint32(0x0cffffff)
	OriginStoreQueue  = uint32(0xe0000000)
	MemtopStoreQueue  = uint32(0xe3ffffff)
	OriginITLBAddress = uint32(0xf2000000)
	MemtopITLBAddress = uint32(0xf2ffffff)
	OriginITLBData    = uint32(0xf3000000)
	MemtopITLBData    = uint32(0xf3ffffff)
	OriginUTLBAddress = uint32(0xf6000000)
	MemtopUTLBAddress = uint32(0xf6ffffff)
	OriginUTLBData    = uint32(0xf7000000)
	MemtopUTLBData    = uint32(0xf7ffffff)
	OriginControl     = uint32(0xff000000)
	MemtopControl     = uint32(0xffffffff)
)

// the external address space is 29 bits wide. the top 64MB of the external
// space is a shadow of the P4 area.
const (
	ExternalBits  = uint32(0x1fffffff)
	OriginShadow  = uint32(0x1c000000)
	OriginP4      = uint32(0xe0000000)
	area3Mask     = uint32(0x1c000000)
	area3         = uint32(0x0c000000)
	RAMBits       = OriginRAM ^ MemtopRAM
	BIOSBits      = OriginBIOS ^ MemtopBIOS
	areaArrayMask = uint32(0xff000000)
)

// MapAddress translates a physical address to its primary mirror and the area
// it belongs to. Addresses in the P4 area are not masked to 29 bits.
func MapAddress(address uint32) (uint32, Area) {
	if address < OriginP4 {
		address &= ExternalBits
		if address >= OriginShadow {
			address |= OriginP4
		}
	}

	if address >= OriginP4 {
		if address <= MemtopStoreQueue {
			return address, StoreQueue
		}
		switch address & areaArrayMask {
		case OriginITLBAddress:
			return address, ITLBAddress
		case OriginITLBData:
			return address, ITLBData
		case OriginUTLBAddress:
			return address, UTLBAddress
		case OriginUTLBData:
			return address, UTLBData
		case OriginControl:
			return address, Control
		}
		return address, Undefined
	}

	if address&area3Mask == area3 {
		return OriginRAM | (address & RAMBits), RAM
	}

	if address <= MemtopBIOS {
		return address, BIOS
	}

	return address, Undefined
}

// Canonical returns the primary mirror of the physical address.
func Canonical(address uint32) uint32 {
	a, _ := MapAddress(address)
	return a
}

// IsArea returns true if the address is in the specified area.
func IsArea(address uint32, area Area) bool {
	_, a := MapAddress(address)
	return area == a
}
