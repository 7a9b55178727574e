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

package sh4

import (
	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/hardware/xlat"
)

// linkValid returns true if the block linked to by an exit op can be executed
// at the current PC.
func (sh *CPU) linkValid(link xlat.BlockID, handle uint32) bool {
	if sh.Cache.State(link) == xlat.Inactive || sh.Cache.UseList(link) != handle {
		return false
	}
	ic := sh.MMU.ICache()
	if !ic.Contains(sh.PC) {
		return false
	}
	if sh.Cache.GuestAddress(link) != memorymap.Canonical(ic.Phys(sh.PC)) {
		return false
	}
	return sh.Cache.Mode(link) == sh.mode()
}

// link the exit op that was most recently taken to the block, if the block
// is at the address the exit op jumped to.
func (sh *CPU) link(target xlat.BlockID) {
	site := sh.site
	sh.site = nil
	if site == nil || site.target != sh.PC {
		return
	}
	if sh.Cache.State(site.block) == xlat.Inactive || sh.Cache.UseList(site.block) != site.handle {
		return
	}

	handle := sh.Cache.UseList(target)
	if handle == 0 {
		return
	}

	setLink(sh.Cache.Code(site.block)[site.off:], target, handle)
	sh.links[handle] = append(sh.links[handle], *site)
}

// UnlinkBlock implements the xlat.Target interface. Exit ops linked to the
// block with the handle are reset so that they no longer jump to it.
func (sh *CPU) UnlinkBlock(handle uint32) {
	for _, s := range sh.links[handle] {
		if sh.Cache.State(s.block) != xlat.Inactive && sh.Cache.UseList(s.block) == s.handle {
			setLink(sh.Cache.Code(s.block)[s.off:], xlat.NoBlock, 0)
		}
	}
	delete(sh.links, handle)
}
