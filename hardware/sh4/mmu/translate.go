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

// the store queue window in the P4 region.
const (
	StoreQueueBase = 0xe0000000
	StoreQueueMask = 0xfc000000
)

// IsStoreQueue returns true if the address is in the store queue window.
func IsStoreQueue(vma uint32) bool {
	return vma&StoreQueueMask == StoreQueueBase
}

// passthrough handles the parts of translation that do not require the TLB.
// Returns true if the address has been resolved, with a non-nil error if an
// address error has been raised.
func (m *MMU) passthrough(vma uint32, kind FaultKind) (uint32, bool, error) {
	if vma&0x80000000 == 0x80000000 {
		if m.cpu.Privileged() {
			if vma >= 0xe0000000 {
				return vma, true, nil
			}
			if vma < 0xc0000000 {
				return vma & 0x1fffffff, true, nil
			}
			// P3 is translated in the same way as U0
		} else {
			if IsStoreQueue(vma) && m.regs[MMUCR>>2]&ControlSQMD == 0 {
				return vma, true, nil
			}
			return 0, true, m.raise(kind, vma)
		}
	}

	if !m.Enabled() {
		return vma & 0x1fffffff, true, nil
	}

	return 0, false, nil
}

// lookupData is the UTLB search used by data accesses.
func (m *MMU) lookupData(vma uint32) int {
	if m.regs[MMUCR>>2]&ControlSV == 0 || !m.cpu.Privileged() {
		return m.utlbFind(vma)
	}
	return m.utlbLookupVPN(vma)
}

// TranslateRead returns the physical address for a data read from the
// virtual address. A non-nil error will be of type Fault.
func (m *MMU) TranslateRead(vma uint32) (uint32, error) {
	pa, done, err := m.passthrough(vma, AddressErrorRead)
	if done {
		return pa, err
	}

	entry := m.lookupData(vma)
	switch entry {
	case lookupMiss:
		return 0, m.raise(TLBMissRead, vma)
	case lookupMultiHit:
		return 0, m.raise(MultiHit, vma)
	}

	e := &m.utlb[entry]
	if !m.cpu.Privileged() && e.Flags&TLBUser != TLBUser {
		return 0, m.raise(TLBProtectionRead, vma)
	}

	return (e.PPN & e.Mask) | (vma &^ e.Mask), nil
}

// TranslateWrite returns the physical address for a data write to the
// virtual address. A non-nil error will be of type Fault.
func (m *MMU) TranslateWrite(vma uint32) (uint32, error) {
	pa, done, err := m.passthrough(vma, AddressErrorWrite)
	if done {
		return pa, err
	}

	entry := m.lookupData(vma)
	switch entry {
	case lookupMiss:
		return 0, m.raise(TLBMissWrite, vma)
	case lookupMultiHit:
		return 0, m.raise(MultiHit, vma)
	}

	e := &m.utlb[entry]
	if err := m.checkWrite(e, vma); err != nil {
		return 0, err
	}

	return (e.PPN & e.Mask) | (vma &^ e.Mask), nil
}

// checkWrite applies the protection and dirty bit checks of a write through
// the UTLB entry.
func (m *MMU) checkWrite(e *UTLBEntry, vma uint32) error {
	if m.cpu.Privileged() {
		if e.Flags&TLBWritable != TLBWritable {
			return m.raise(TLBProtectionWrite, vma)
		}
	} else if e.Flags&TLBUserWritable != TLBUserWritable {
		return m.raise(TLBProtectionWrite, vma)
	}

	if e.Flags&TLBDirty != TLBDirty {
		return m.raise(InitialWrite, vma)
	}

	return nil
}

// TranslateDisasm translates an instruction address for diagnostic purposes.
// No fault is raised and no MMU state is changed. Protection bits are
// ignored. Returns false if the address cannot be translated.
func (m *MMU) TranslateDisasm(vma uint32) (uint32, bool) {
	if m.icache.Contains(vma) {
		return m.icache.Phys(vma), true
	}

	if vma&0x80000000 == 0x80000000 {
		if vma < 0xc0000000 {
			return vma & 0x1fffffff, true
		}
		if vma >= 0xe0000000 && vma < 0xffffff00 {
			return 0, false
		}
	}

	if !m.Enabled() {
		return vma & 0x1fffffff, true
	}

	var mask, ppn uint32
	found := false
	for i := range m.itlb {
		e := &m.itlb[i]
		if e.Flags&TLBValid == TLBValid && (e.Flags&TLBShare == TLBShare || e.ASID == m.asid) && e.matches(vma) {
			mask, ppn, found = e.Mask, e.PPN, true
			break
		}
	}
	if !found {
		u := m.utlbSearchShared(vma, m.asid, true)
		if u < 0 {
			return 0, false
		}
		mask, ppn = m.utlb[u].Mask, m.utlb[u].PPN
	}

	return (ppn & mask) | (vma &^ mask), true
}

// StoreQueueTarget returns the external address of a store queue burst for
// the store queue address. When address translation is enabled, the target
// is found through the UTLB and any failure is returned as a Fault.
func (m *MMU) StoreQueueTarget(addr uint32) (uint32, error) {
	if !m.Enabled() {
		qacr := m.regs[(QACR0>>2)+((addr>>5)&1)]
		return (addr & 0x03ffffe0) | (qacr << 24), nil
	}

	entry := m.lookupData(addr)
	switch entry {
	case lookupMiss:
		return 0, m.raise(TLBMissWrite, addr)
	case lookupMultiHit:
		return 0, m.raise(MultiHit, addr)
	}

	e := &m.utlb[entry]
	if err := m.checkWrite(e, addr); err != nil {
		return 0, err
	}

	return ((e.PPN & e.Mask) | (addr &^ e.Mask)) & 0xffffffe0, nil
}
