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

package hardware

import (
	"github.com/hean01/lxdream/hardware/sh4"
	"github.com/hean01/lxdream/hardware/sh4/faults"
	"github.com/hean01/lxdream/hardware/sh4/mmu"
	"github.com/hean01/lxdream/hardware/xlat"
)

// State is a copy of the observable state of the machine. It is produced by
// the Snapshot() function and is intended for diagnostics. It cannot be
// plumbed back into a machine.
type State struct {
	Registers sh4.Registers
	CPU       sh4.State
	Clock     uint64

	MMU   *mmu.Snapshot
	Cache []xlat.Stats

	Faults []faults.Entry
}

// Snapshot the state of the machine.
func (m *Machine) Snapshot() *State {
	s := &State{
		Registers: m.CPU.Registers,
		CPU:       m.CPU.State(),
		Clock:     m.CPU.Clock(),
		MMU:       m.CPU.MMU.Snapshot(),
		Cache:     m.CPU.Cache.Stats(),
	}
	for _, e := range m.CPU.Faults.Log {
		s.Faults = append(s.Faults, *e)
	}
	return s
}
