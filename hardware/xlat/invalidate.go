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

package xlat

// flushPage discards every block installed in the page, including chained
// blocks, and empties the page.
func (c *Cache) flushPage(p *page) {
	if p == nil {
		return
	}
	for i := range p {
		if p[i].isEntry() {
			id := p[i].Block
			for id != NoBlock {
				next := BlockID(c.arena(id).field(id.offset(), fieldChain))
				c.discard(id)
				id = next
			}
		}
		p[i] = Slot{}
	}
}

// the first slot of a page can be covered by a block that begins in the
// previous page, for example by a delay slot. that block must also be
// discarded.
func (c *Cache) flushPrevious(addr uint32, p *page) {
	if lutSlot(addr) == 0 && p[0].isContinuation() {
		c.flushPage(c.lut.page(addr - 2))
	}
}

// InvalidateWord is called when the 16bit value at the physical address has
// changed. All translated code in the same LUT page is discarded if any block
// covers the address.
func (c *Cache) InvalidateWord(addr uint32) {
	p := c.lut.page(addr)
	if p == nil {
		return
	}
	c.flushPrevious(addr, p)
	if p[lutSlot(addr)].isUsed() {
		c.flushPage(p)
	}
}

// InvalidateLong is the same as InvalidateWord() for a 32bit value.
func (c *Cache) InvalidateLong(addr uint32) {
	p := c.lut.page(addr)
	if p == nil {
		return
	}
	c.flushPrevious(addr, p)
	s := lutSlot(addr)
	if p[s].isUsed() || (s+1 < lutPageSlots && p[s+1].isUsed()) {
		c.flushPage(p)
	}
}

// InvalidateRange is the same as InvalidateWord() for a range of memory.
func (c *Cache) InvalidateRange(addr uint32, size uint32) {
	count := int(size >> 1)
	pageNo := lutPage(addr)
	slot := int(lutSlot(addr))

	if p := c.lut.pages[pageNo]; p != nil {
		c.flushPrevious(addr, p)
	}

	for count > 0 {
		n := lutPageSlots - slot
		if count < n {
			n = count
		}

		if p := c.lut.pages[pageNo]; p != nil {
			if n == lutPageSlots {
				c.flushPage(p)
			} else {
				for i := slot; i < slot+n; i++ {
					if p[i].isUsed() {
						c.flushPage(p)
						break
					}
				}
			}
		}

		count -= n
		pageNo = (pageNo + 1) & (lutPages - 1)
		slot = 0
	}
}

// FlushPage discards all translated code in the LUT page containing the
// address.
func (c *Cache) FlushPage(addr uint32) {
	c.flushPage(c.lut.page(addr))
}
