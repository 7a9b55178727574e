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

// Package xlat is the translation cache. Translated code is stored in one or
// more arenas of executable memory and is found by the physical address of the
// guest code through a two level lookup table.
//
// Each arena is a sequence of blocks. Every block is a fixed size header
// followed by the block's payload. The payload of a block in use is the
// translated code followed by the block's recovery table. The last header in
// an arena is a sentinel with a size of zero that is always active.
//
// In the single generation mode there is one arena and blocks are discarded
// when the allocator reaches them again. In the multi generation mode blocks
// are promoted to a temp arena when they are evicted from the new arena, and
// blocks in the temp arena that have been executed are promoted to an old
// arena.
//
// Blocks are identified by a BlockID, which encodes the arena and the position
// of the block in the arena. A BlockID is only valid until the block is moved
// or discarded and should not be retained by the caller across calls that
// allocate blocks.
package xlat
