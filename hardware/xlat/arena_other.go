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

//go:build !unix

package xlat

// mapArena allocates memory for an arena. On platforms without mmap() the
// arena is ordinary heap memory. The translated code in the arena is never
// executed directly by the host so this is sufficient.
func mapArena(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// unmapArena releases memory allocated by mapArena().
func unmapArena(mem []byte) error {
	return nil
}
