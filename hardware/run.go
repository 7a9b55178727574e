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
	"context"

	"github.com/hean01/lxdream/hardware/sh4"
)

// Run the machine for the number of slices, or until the context is done if
// slices is zero or less. Execution stops early if a slice ends before
// completion, in which case the Exit value says why.
//
// The context is checked between slices. The error from a done context is
// returned as is.
func (m *Machine) Run(ctx context.Context, slices int) (sh4.Exit, error) {
	m.CPU.Start()

	for i := 0; slices <= 0 || i < slices; i++ {
		select {
		case <-ctx.Done():
			return sh4.ExitNone, ctx.Err()
		default:
		}

		exit, err := m.Step()
		if err != nil {
			return exit, err
		}
		if !exit.Normal() {
			return exit, nil
		}
	}

	return sh4.ExitNone, nil
}
