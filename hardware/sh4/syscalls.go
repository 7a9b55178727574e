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

package sh4

// SyscallBase is the lowest address of the syscall hook region. Execution of
// an address above the base calls the Syscalls handler and returns to PR.
const SyscallBase = 0xffffff00

// Syscalls is implemented by the handler of the syscall hook region.
type Syscalls interface {
	Syscall(sh *CPU, addr uint32)
}
