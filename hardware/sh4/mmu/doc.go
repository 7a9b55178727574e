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

// Package mmu models the SH4 memory management unit: the four entry
// instruction TLB, the sixty-four entry unified TLB, the MMU control
// registers and the instruction-cache shadow used for fast instruction fetch.
//
// All state belongs to an MMU instance. Operations that can fault return an
// error of type Fault. The caller is responsible for delivering the fault to
// the CPU; the MMU has already recorded the faulting address in the TEA and
// PTEH registers by the time the fault is returned.
//
// Address translation follows the SH4 rules for the P0 to P4 regions. When
// address translation is disabled (MMUCR.AT clear) every address is
// direct-mapped to the external address space. When enabled, unprivileged
// accesses and accesses in multiple virtual memory mode are resolved with the
// sorted UTLB index. Privileged accesses in single virtual memory mode use a
// VPN only search.
//
// The sorted index is an accelerated lookup structure. It holds one entry for
// every valid UTLB slot, keyed by the masked VPN plus the ASID. Two valid
// slots with the same key collapse into a single multi-hit entry, which
// always results in a MultiHit fault when found.
package mmu
