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

package assert_test

import (
	"testing"

	"github.com/hean01/lxdream/assert"
	"github.com/hean01/lxdream/test"
)

func TestOwner(t *testing.T) {
	o := assert.NewOwner()
	o.Check("test")

	done := make(chan any)
	go func() {
		defer func() {
			done <- recover()
		}()
		o.Check("test")
	}()
	test.ExpectInequality[any](t, <-done, nil)

	test.ExpectInequality(t, assert.GetGoRoutineID(), uint64(0))
}
