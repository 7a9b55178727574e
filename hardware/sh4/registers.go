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
	"fmt"
	"strings"
)

// Status register bits.
const (
	SRT     = 0x00000001
	SRS     = 0x00000002
	SRIMASK = 0x000000f0
	SRQ     = 0x00000100
	SRM     = 0x00000200
	SRFD    = 0x00008000
	SRBL    = 0x10000000
	SRRB    = 0x20000000
	SRMD    = 0x40000000

	// bits of the status register that can be written
	srMask = 0x700083f3
)

// the value of the status register after a reset.
const srReset = 0x700000f0

// Registers is the register file of the CPU.
type Registers struct {
	// the general registers. R0 to R7 are the registers of the current bank
	R [16]uint32

	// R0 to R7 of the bank that is not selected
	Bank [8]uint32

	SR  uint32
	GBR uint32
	VBR uint32
	SSR uint32
	SPC uint32
	SGR uint32
	PR  uint32

	// the address of the next instruction to execute. inside a block the PC
	// is the address of the start of the block
	PC uint32
}

func (r Registers) String() string {
	s := strings.Builder{}
	for i := 0; i < 16; i++ {
		s.WriteString(fmt.Sprintf("R%-2d=%08x", i, r.R[i]))
		if i%4 == 3 {
			s.WriteString("\n")
		} else {
			s.WriteString(" ")
		}
	}
	s.WriteString(fmt.Sprintf("PC =%08x SR =%08x PR =%08x VBR=%08x\n", r.PC, r.SR, r.PR, r.VBR))
	s.WriteString(fmt.Sprintf("SPC=%08x SSR=%08x SGR=%08x GBR=%08x", r.SPC, r.SSR, r.SGR, r.GBR))
	return s.String()
}

// T returns the value of the T bit of the status register.
func (r *Registers) T() bool {
	return r.SR&SRT == SRT
}

func (r *Registers) setT(t bool) {
	if t {
		r.SR |= SRT
	} else {
		r.SR &^= SRT
	}
}

// bank1 returns true if the status register selects the second register bank.
func bank1(sr uint32) bool {
	return sr&(SRMD|SRRB) == SRMD|SRRB
}

// SetSR writes the status register, switching register banks if required.
func (r *Registers) SetSR(sr uint32) {
	sr &= srMask
	if bank1(sr) != bank1(r.SR) {
		for i := range r.Bank {
			r.R[i], r.Bank[i] = r.Bank[i], r.R[i]
		}
	}
	r.SR = sr
}

// Privileged returns true if the CPU is in privileged mode.
func (r *Registers) Privileged() bool {
	return r.SR&SRMD == SRMD
}

// imask returns the interrupt mask level.
func (r *Registers) imask() int {
	return int((r.SR & SRIMASK) >> 4)
}
