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

package hardware

import (
	"github.com/hean01/lxdream/hardware/sh4"
)

// Step runs the machine for a single slice. The length of the slice is taken
// from the sh4.slicelength preference.
func (m *Machine) Step() (sh4.Exit, error) {
	return m.CPU.RunSlice(uint64(m.Env.Prefs.SliceLength.Get().(int)))
}
