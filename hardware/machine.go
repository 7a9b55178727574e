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
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/memory"
	"github.com/hean01/lxdream/hardware/sh4"
	"github.com/hean01/lxdream/logger"
)

// Machine is the emulated machine.
type Machine struct {
	Env *environment.Environment

	Mem    *memory.Memory
	Events *eventq.Queue
	CPU    *sh4.CPU
}

// NewMachine creates a new machine and everything associated with the
// hardware. The machine is owned by the calling goroutine.
func NewMachine(env *environment.Environment) (*Machine, error) {
	var err error

	m := &Machine{
		Env:    env,
		Mem:    memory.NewMemory(env),
		Events: eventq.NewQueue(env),
	}

	m.CPU, err = sh4.NewCPU(env, m.Mem, m.Events)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Close releases the resources used by the machine.
func (m *Machine) Close() error {
	return m.CPU.Close()
}

// Claim transfers ownership of the machine to the calling goroutine.
func (m *Machine) Claim() {
	m.CPU.Claim()
}

// Reset the machine. RAM is cleared and all pending events are discarded.
func (m *Machine) Reset() {
	m.Events.Reset()
	m.Mem.Reset()
	m.CPU.Reset()
}

// LoadBinary copies the data into memory at the address and sets the PC to
// the address. The address can be any mirror of RAM.
func (m *Machine) LoadBinary(address uint32, data []byte) error {
	if err := m.Mem.Load(address, data); err != nil {
		return err
	}
	m.CPU.PC = address
	logger.Logf(m.Env, "SH4", "entry point %08x", address)
	return nil
}
