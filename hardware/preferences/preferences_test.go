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

package preferences_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/prefs"
	"github.com/hean01/lxdream/test"
)

func TestDefaults(t *testing.T) {
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, p.ArenaSize.Get().(int), preferences.DefaultArenaSize)
	test.ExpectEquality(t, p.CPUPeriod.Get().(int), preferences.DefaultCPUPeriod)
	test.ExpectEquality(t, p.SliceLength.Get().(int), preferences.DefaultSliceLength)
	test.ExpectEquality(t, p.Generational.Get().(bool), false)
	test.ExpectEquality(t, p.Log.Get().(bool), true)
}

func TestValidation(t *testing.T) {
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, p.ArenaSize.Set(1024))
	test.ExpectFailure(t, p.ArenaSize.Set(0x100001))
	test.ExpectSuccess(t, p.ArenaSize.Set("0x100000"))
	test.ExpectFailure(t, p.CPUPeriod.Set(0))
	test.ExpectFailure(t, p.SliceLength.Set(-1))
	test.ExpectEquality(t, p.ArenaSize.Get().(int), 0x100000)
}

func TestSaveAndLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "preferences")

	p, err := preferences.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.Generational.Set(true))
	test.ExpectSuccess(t, p.CPUPeriod.Set(10))
	test.DemandSuccess(t, p.Save())

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), prefs.WarningBoilerPlate+"\n"+
		"hardware.log :: true\n"+
		"sh4.cpuperiod :: 10\n"+
		"sh4.slicelength :: 1000000\n"+
		"xlat.arenasize :: 8388608\n"+
		"xlat.generational :: true\n")

	q, err := preferences.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Generational.Get().(bool), true)
	test.ExpectEquality(t, q.CPUPeriod.Get().(int), 10)

	q.SetDefaults()
	test.ExpectEquality(t, q.CPUPeriod.Get().(int), preferences.DefaultCPUPeriod)
}
