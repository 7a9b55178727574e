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

// Package sh4 is the translation driver of the SH4 processor. Guest code is
// translated one basic block at a time into host ops, which are stored in the
// translation cache (see the xlat package) and executed by the host op
// interpreter in this package.
//
// A basic block is the straight-line code from a start address up to and
// including the next control transfer, or to the end of the 4K page (or the
// end of the instruction fetch region if that is sooner). Every instruction in
// a block has a recovery record that maps the position of its host ops to the
// number of guest instructions preceding it, which is how the program counter
// and the cycle count are recovered when a block is left early because of an
// exception or a request to exit.
//
// Host ops are position independent. Branch targets and PC relative addresses
// are stored relative to the address of the start of the block so that a block
// can be relocated by copying and so that the same translation can be used
// whatever virtual address the physical code is executed from.
//
// The CPU is run in time slices with RunSlice(). Timed events and interrupts
// are checked between blocks. The CPU must only be used from the goroutine
// that created it.
package sh4
