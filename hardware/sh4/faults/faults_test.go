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

package faults_test

import (
	"strings"
	"testing"

	"github.com/hean01/lxdream/hardware/sh4/faults"
	"github.com/hean01/lxdream/test"
)

func TestFaults(t *testing.T) {
	flt := faults.NewFaults()

	flt.NewEntry("read", faults.TLBMiss, 0x8c010000, 0x00400000)
	flt.NewEntry("read", faults.TLBMiss, 0x8c010000, 0x00400000)
	flt.NewEntry("write", faults.InitialWrite, 0x8c010004, 0x00400000)
	test.ExpectEquality(t, len(flt.Log), 2)
	test.ExpectEquality(t, flt.Log[0].Count, 2)
	test.ExpectEquality(t, flt.Log[1].Count, 1)
	test.ExpectFailure(t, flt.HasDoubleFault)

	flt.NewEntry("fetch", faults.DoubleFault, 0x00400000, 0x00400000)
	test.ExpectSuccess(t, flt.HasDoubleFault)

	w := &strings.Builder{}
	flt.WriteLog(w)
	test.ExpectEquality(t, strings.Count(w.String(), "\n"), 3)
	test.ExpectSuccess(t, strings.HasPrefix(w.String(), "tlb miss: read: 00400000 (PC: 8c010000)\n"))

	flt.Clear()
	test.ExpectEquality(t, len(flt.Log), 0)
	test.ExpectSuccess(t, flt.HasDoubleFault)
}
