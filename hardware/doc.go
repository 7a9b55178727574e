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

// Package hardware is the base package for the emulated machine. The Machine
// type owns the physical memory, the event queue and the CPU, and plumbs
// them together.
//
// A machine is owned by the goroutine that created it. Other goroutines
// communicate with a running machine by posting functions to the event queue
// with eventq.Queue.Post().
//
// The sub-packages contain the individual components: hardware/memory for
// the physical address space, hardware/eventq for timed events and interrupt
// requests, hardware/sh4 for the processor and its MMU, and hardware/xlat for
// the translation cache used by the processor.
package hardware
