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

// Package statsview serves runtime statistics for a running emulation over
// HTTP. The server is only built when the statsview build constraint is
// present. Without it, Available() returns false and Launch() reports that
// no server is available.
//
// After launch, graphical statistics will be viewable at:
//
//	localhost:12680/debug/statsview
//
// And standard Go pprof statistics at:
//
//	localhost:12680/debug/pprof/
//
// The translation cache allocates its arenas outside of the Go heap so the
// memory graphs only show the heap used by the MMU, the event queue and the
// emulated memory areas.
package statsview
