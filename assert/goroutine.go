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

// Package assert contains checks for conditions that should never happen in
// a correctly written program. The checks are intended for debugging and
// testing and are cheap enough to leave in place.
package assert

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

// GetGoRoutineID returns an identify for a goroutine. it returns a result that
// is (a) different between goroutines and (b) consistent for a given
// goroutine. It is undoubtedly useful for but it should only ever be used for
// debugging or testing purposes.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Owner records the goroutine that owns a resource.
type Owner struct {
	id uint64
}

// NewOwner returns an Owner for the calling goroutine.
func NewOwner() Owner {
	return Owner{id: GetGoRoutineID()}
}

// Claim transfers ownership to the calling goroutine.
func (o *Owner) Claim() {
	o.id = GetGoRoutineID()
}

// Check panics if the calling goroutine is not the owner. The what argument
// names the resource in the panic message.
func (o Owner) Check(what string) {
	if id := GetGoRoutineID(); id != o.id {
		panic(fmt.Sprintf("%s: owned by goroutine %d but accessed from goroutine %d", what, o.id, id))
	}
}
