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

// Package memorymap facilitates the translation of physical addresses to
// primary address equivalents.
//
// Physical addresses produced by the MMU are 29 bits wide, except for the P4
// area which occupies the top 512MB of the 32 bit address space. The
// MapAddress() function should be used to produce a "mapped address"
// whenever a physical address is used to access memory.
//
//	ma, area := memorymap.MapAddress(address)
//
// Main RAM is mirrored throughout area 3 of the external address space and
// the top 64MB of the external space is a shadow of the P4 area. Both cases
// are handled by the function.
package memorymap
