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

import (
	"sort"

	"github.com/hean01/lxdream/curated"
)

// Address returns the guest address of the block containing the pointer. A
// pointer is a BlockID plus an offset into the block. Only blocks installed
// at the head of a LUT slot are considered.
//
// The LUT is searched linearly.
func (c *Cache) Address(ptr uint32) (uint32, bool) {
	for pn := range c.lut.pages {
		p := c.lut.pages[pn]
		if p == nil {
			continue
		}
		for sn := range p {
			if !p[sn].isEntry() {
				continue
			}
			id := p[sn].Block
			start := uint32(id)
			if ptr >= start && ptr < start+c.BlockSize(id) {
				return lutAddress(uint32(pn), uint32(sn)), true
			}
		}
	}
	return 0, false
}

// CheckIntegrity walks every arena and checks that the block headers are
// consistent.
func (c *Cache) CheckIntegrity() error {
	for _, a := range c.arenas {
		if a == nil {
			continue
		}
		if err := a.integrity(); err != nil {
			return curated.Errorf(Integrity, a.gen, err)
		}
	}
	return nil
}

// BlockRef describes a single block in the cache.
type BlockRef struct {
	ID BlockID

	// guest address of the block
	Addr uint32

	State     BlockState
	ExecCount uint32
}

// ActiveBlockCount returns the number of active or used blocks in the new
// arena.
func (c *Cache) ActiveBlockCount() int {
	a := c.arenas[genNew]
	n := 0
	for o := uint32(0); o < a.sentinel(); o = a.next(o) {
		if a.state(o) != Inactive {
			n++
		}
	}
	return n
}

// ActiveBlocks returns a reference to every active or used block in all
// arenas.
func (c *Cache) ActiveBlocks() []BlockRef {
	var refs []BlockRef
	for _, a := range c.arenas {
		if a == nil {
			continue
		}
		for o := uint32(0); o < a.sentinel(); o = a.next(o) {
			h := a.header(o)
			if h.state == Inactive {
				continue
			}
			refs = append(refs, BlockRef{
				ID:        a.id(o),
				Addr:      h.lutAddr,
				State:     h.state,
				ExecCount: h.execCount,
			})
		}
	}
	return refs
}

// BlocksByActivity returns up to n blocks with the highest execution counts,
// most executed first.
func (c *Cache) BlocksByActivity(n int) []BlockRef {
	refs := c.ActiveBlocks()
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].ExecCount > refs[j].ExecCount
	})
	if n < len(refs) {
		refs = refs[:n]
	}
	return refs
}

// Stats summarises the use of an arena.
type Stats struct {
	Arena  string
	Size   int
	Blocks int
	Active int
	Used   int
	Free   uint32
}

// Stats returns the usage of each arena.
func (c *Cache) Stats() []Stats {
	var stats []Stats
	for _, a := range c.arenas {
		if a == nil {
			continue
		}
		s := Stats{
			Arena: a.gen.String(),
			Size:  len(a.mem),
		}
		for o := uint32(0); o < a.sentinel(); o = a.next(o) {
			s.Blocks++
			switch a.state(o) {
			case Active:
				s.Active++
			case Used:
				s.Used++
			default:
				s.Free += a.size(o)
			}
		}
		stats = append(stats, s)
	}
	return stats
}
