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

package mmu

import (
	"encoding/binary"
	"io"

	"github.com/hean01/lxdream/curated"
)

// Sentinal error returned by Load() if the state could not be read in its
// entirety.
const (
	TruncatedState = "mmu: truncated state: %v"
)

// the state that is saved by Save() in the order it is written.
type savedState struct {
	ITLB [ITLBEntries]ITLBEntry
	UTLB [UTLBEntries]UTLBEntry
	URC  uint32
	URB  uint32
	LRUI uint32
	ASID uint32
}

// Save writes the TLB state to the io.Writer. Values are written as
// little-endian 32bit values.
func (m *MMU) Save(w io.Writer) error {
	s := savedState{
		ITLB: m.itlb,
		UTLB: m.utlb,
		URC:  m.urc,
		URB:  m.urb,
		LRUI: m.lrui,
		ASID: m.asid,
	}
	return binary.Write(w, binary.LittleEndian, &s)
}

// Load reads TLB state previously written by Save(). The MMU is not changed
// if the state cannot be read in full.
func (m *MMU) Load(r io.Reader) error {
	var s savedState
	err := binary.Read(r, binary.LittleEndian, &s)
	if err != nil {
		return curated.Errorf(TruncatedState, err)
	}

	m.itlb = s.ITLB
	m.utlb = s.UTLB
	m.urc = s.URC & 0x3f
	m.urb = s.URB & 0x3f
	m.lrui = s.LRUI & 0x3f
	m.asid = s.ASID & 0xff

	m.sortedReload()
	m.icache.invalidate()

	return nil
}

// Snapshot is a copy of the MMU state that is safe to inspect while the
// emulation continues.
type Snapshot struct {
	ITLB  [ITLBEntries]ITLBEntry
	UTLB  [UTLBEntries]UTLBEntry
	URC   uint32
	URB   uint32
	LRUI  uint32
	ASID  uint32
	MMUCR uint32

	// the number of entries in the sorted UTLB index
	Indexed int
}

// Snapshot returns a copy of the current MMU state.
func (m *MMU) Snapshot() *Snapshot {
	return &Snapshot{
		ITLB:    m.itlb,
		UTLB:    m.utlb,
		URC:     m.urc,
		URB:     m.urb,
		LRUI:    m.lrui,
		ASID:    m.asid,
		MMUCR:   m.ReadRegister(MMUCR),
		Indexed: m.sorted.count,
	}
}
