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

package modalflag

import (
	"fmt"
	"strconv"
)

// addressValue implements flag.Value for 32bit guest addresses. Values can be
// given in any base accepted by strconv.ParseUint with a base of zero. A bare
// number with eight digits is treated as hexadecimal.
type addressValue uint32

func (a *addressValue) String() string {
	return fmt.Sprintf("%#08x", uint32(*a))
}

func (a *addressValue) Set(s string) error {
	base := 0
	if len(s) == 8 {
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return fmt.Errorf("not a 32bit address: %s", s)
	}
	*a = addressValue(v)
	return nil
}

// AddAddress flag for next call to Parse().
func (md *Modes) AddAddress(name string, value uint32, usage string) *uint32 {
	v := value
	md.flags.Var((*addressValue)(&v), name, usage)
	return &v
}
