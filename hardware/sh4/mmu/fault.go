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

import "fmt"

// FaultKind identifies the class of a fault raised by the MMU.
type FaultKind int

// List of valid FaultKind values.
const (
	AddressErrorRead FaultKind = iota
	AddressErrorWrite
	TLBMissRead
	TLBMissWrite
	TLBProtectionRead
	TLBProtectionWrite
	InitialWrite
	MultiHit
)

func (k FaultKind) String() string {
	switch k {
	case AddressErrorRead:
		return "address error (read)"
	case AddressErrorWrite:
		return "address error (write)"
	case TLBMissRead:
		return "tlb miss (read)"
	case TLBMissWrite:
		return "tlb miss (write)"
	case TLBProtectionRead:
		return "tlb protection violation (read)"
	case TLBProtectionWrite:
		return "tlb protection violation (write)"
	case InitialWrite:
		return "tlb initial page write"
	case MultiHit:
		return "tlb multi-hit"
	}
	return "unknown fault"
}

// Code returns the exception event code for the fault kind, as written to the
// EXPEVT register.
func (k FaultKind) Code() uint32 {
	switch k {
	case AddressErrorRead:
		return 0x0e0
	case AddressErrorWrite:
		return 0x100
	case TLBMissRead:
		return 0x040
	case TLBMissWrite:
		return 0x060
	case TLBProtectionRead:
		return 0x0a0
	case TLBProtectionWrite:
		return 0x0c0
	case InitialWrite:
		return 0x080
	case MultiHit:
		return 0x140
	}
	return 0
}

// TLBMiss returns true if the fault is handled by the TLB miss vector rather
// than the general exception vector.
func (k FaultKind) TLBMiss() bool {
	return k == TLBMissRead || k == TLBMissWrite
}

// Reset returns true if the fault causes a processor reset rather than a
// resumable exception.
func (k FaultKind) Reset() bool {
	return k == MultiHit
}

// Fault is returned as an error by MMU operations that fail to translate an
// address.
type Fault struct {
	Kind FaultKind

	// the virtual address that caused the fault
	VMA uint32
}

func (f Fault) Error() string {
	return fmt.Sprintf("mmu: %s at %08x", f.Kind, f.VMA)
}

// raise records the faulting address and returns the fault as an error.
func (m *MMU) raise(kind FaultKind, vma uint32) error {
	m.regs[TEA>>2] = vma
	m.regs[PTEH>>2] = (m.regs[PTEH>>2] & 0x3ff) | (vma & 0xfffffc00)
	return Fault{Kind: kind, VMA: vma}
}

// Raise records a fault that was detected outside of the MMU, such as a
// misaligned access, in the same way as a translation fault.
func (m *MMU) Raise(kind FaultKind, vma uint32) error {
	return m.raise(kind, vma)
}
