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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/prefs"
	"github.com/hean01/lxdream/test"
)

func getTmpPrefFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)
}

func cmpTmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Errorf("error reading tmp file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.ExpectEquality(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := getTmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	var x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("true"))

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestInt(t *testing.T) {
	fn := getTmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	var w prefs.Int
	test.ExpectSuccess(t, dsk.Add("number", &v))
	test.ExpectSuccess(t, dsk.Add("numberB", &w))

	test.ExpectSuccess(t, v.Set(10))

	// string conversion to int, including base prefixes
	test.ExpectSuccess(t, w.Set("0x800000"))
	test.ExpectEquality(t, w.Get().(int), 0x800000)

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "number :: 10\nnumberB :: 8388608\n")

	// failure conditions
	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
}

func TestDefaultsAndHooks(t *testing.T) {
	var v prefs.Int
	v.SetDefault(5)
	test.ExpectEquality(t, v.Get().(int), 5)

	v.SetHookPre(func(value prefs.Value) error {
		if value.(int) <= 0 {
			return fmt.Errorf("value must be positive")
		}
		return nil
	})

	var post int
	v.SetHookPost(func(value prefs.Value) error {
		post = value.(int)
		return nil
	})

	test.ExpectFailure(t, v.Set(0))
	test.ExpectEquality(t, v.Get().(int), 5)
	test.ExpectSuccess(t, v.Set(7))
	test.ExpectEquality(t, post, 7)
	test.ExpectSuccess(t, v.Reset())
	test.ExpectEquality(t, v.Get().(int), 5)
}

// write values from two different prefs.Disk instances. tests that the second
// writing doesn't clobber the results of the first write.
func TestSharedFile(t *testing.T) {
	fn := getTmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, v.Set(true))
	test.DemandSuccess(t, dsk.Save())

	dsk, err = prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var n prefs.Int
	test.ExpectSuccess(t, dsk.Add("foo", &n))
	test.ExpectSuccess(t, n.Set(99))
	test.DemandSuccess(t, dsk.Save())

	cmpTmpFile(t, fn, "foo :: 99\ntest :: true\n")
}

func TestLoad(t *testing.T) {
	fn := getTmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	v.SetDefault(3)
	test.ExpectSuccess(t, dsk.Add("value", &v))

	// missing file is reported but a file is created with the current values
	err = dsk.Load(true)
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))
	cmpTmpFile(t, fn, "value :: 3\n")

	test.ExpectSuccess(t, v.Set(42))
	test.DemandSuccess(t, dsk.Save())
	test.ExpectSuccess(t, v.Set(0))
	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, v.Get().(int), 42)
}

func TestInvalidKeys(t *testing.T) {
	dsk, err := prefs.NewDisk(getTmpPrefFile(t))
	test.DemandSuccess(t, err)

	var v, w prefs.Bool
	test.ExpectSuccess(t, curated.Is(dsk.Add("", &v), prefs.InvalidKey))
	test.ExpectSuccess(t, curated.Is(dsk.Add("a :: b", &v), prefs.InvalidKey))
	test.ExpectSuccess(t, dsk.Add("a", &v))
	test.ExpectSuccess(t, curated.Is(dsk.Add("a", &w), prefs.DuplicateKey))
}

func TestCommandLineOverride(t *testing.T) {
	dsk, err := prefs.NewDisk(getTmpPrefFile(t))
	test.DemandSuccess(t, err)

	prefs.PushCommandLineStack("xlat.generational::true")
	defer prefs.PopCommandLineStack()

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("xlat.generational", &v))
	test.ExpectEquality(t, v.Get().(bool), true)
}
