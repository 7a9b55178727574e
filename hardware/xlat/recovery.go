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
	"encoding/binary"

	"github.com/hean01/lxdream/curated"
)

// RecoveryRecord maps a position in the translated code to the number of
// guest instructions that had completed before that position.
type RecoveryRecord struct {
	// offset into the block's payload
	Offset uint32

	// the number of guest instructions from the start of the block
	ICount uint32
}

// the encoded size of a recovery record.
const recoveryRecordSize = 8

// RecoveryTableSize returns the number of bytes required to store a
// recovery table of n records.
func RecoveryTableSize(n int) uint32 {
	return uint32(n) * recoveryRecordSize
}

// SetRecovery writes the recovery table to the block's payload at the offset.
// The offset is also the size of the translated code.
func (c *Cache) SetRecovery(id BlockID, offset uint32, records []RecoveryRecord) error {
	code := c.Code(id)
	if code == nil {
		return curated.Errorf(NotBuilding)
	}

	end := offset + RecoveryTableSize(len(records))
	if end > uint32(len(code)) {
		return curated.Errorf(BlockOverflow, end, len(code))
	}

	for i, r := range records {
		o := offset + uint32(i)*recoveryRecordSize
		binary.LittleEndian.PutUint32(code[o:], r.Offset)
		binary.LittleEndian.PutUint32(code[o+4:], r.ICount)
	}

	a := c.arena(id)
	a.setField(id.offset(), fieldRecoverOffset, offset)
	a.setField(id.offset(), fieldRecoverCount, uint32(len(records)))

	return nil
}

// RecoveryTable returns a copy of the block's recovery table.
func (c *Cache) RecoveryTable(id BlockID) []RecoveryRecord {
	code := c.Code(id)
	if code == nil {
		return nil
	}

	a := c.arena(id)
	offset := a.field(id.offset(), fieldRecoverOffset)
	count := a.field(id.offset(), fieldRecoverCount)

	records := make([]RecoveryRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		o := offset + i*recoveryRecordSize
		records = append(records, RecoveryRecord{
			Offset: binary.LittleEndian.Uint32(code[o:]),
			ICount: binary.LittleEndian.Uint32(code[o+4:]),
		})
	}

	return records
}

// Recovery is a view of a block's recovery table. The view remains usable
// while the block is executing even if the cache is flushed, since the
// payload of a block is not overwritten until a new block is allocated.
type Recovery struct {
	table []byte
}

// Recovery returns a view of the block's recovery table.
func (c *Cache) Recovery(id BlockID) Recovery {
	code := c.Code(id)
	if code == nil {
		return Recovery{}
	}
	a := c.arena(id)
	offset := a.field(id.offset(), fieldRecoverOffset)
	end := offset + RecoveryTableSize(int(a.field(id.offset(), fieldRecoverCount)))
	if end > uint32(len(code)) {
		return Recovery{}
	}
	return Recovery{table: code[offset:end]}
}

// Len returns the number of records in the table.
func (r Recovery) Len() int {
	return len(r.table) / recoveryRecordSize
}

func (r Recovery) record(i int) RecoveryRecord {
	o := i * recoveryRecordSize
	return RecoveryRecord{
		Offset: binary.LittleEndian.Uint32(r.table[o:]),
		ICount: binary.LittleEndian.Uint32(r.table[o+4:]),
	}
}

// Pre returns the recovery record that applies at the native offset. See
// PreRecovery().
func (r Recovery) Pre(nativeOffset uint32) (RecoveryRecord, bool) {
	n := r.Len()
	if n == 0 || nativeOffset < r.record(0).Offset {
		return RecoveryRecord{}, false
	}
	for i := 1; i < n; i++ {
		if r.record(i).Offset > nativeOffset {
			return r.record(i - 1), true
		}
	}
	return r.record(n - 1), true
}

// PreRecovery returns the recovery record that applies at the native offset
// in the block. This is the last record with an offset that does not exceed
// the native offset, or the last record in the table if the native offset is
// beyond the end of the table. Returns false if the block has no recovery
// records or if the native offset is before the first record.
func (c *Cache) PreRecovery(id BlockID, nativeOffset uint32) (RecoveryRecord, bool) {
	return c.Recovery(id).Pre(nativeOffset)
}
