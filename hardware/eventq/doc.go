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

// Package eventq is the timed event queue of the machine. Events are
// scheduled for an absolute time, measured in nanoseconds since the machine
// was reset, and are executed by the CPU when it reaches a slice boundary or
// block exit at or after the event's deadline.
//
// The queue also holds the pending interrupt requests. The CPU checks for an
// acceptable interrupt whenever it checks for due events.
//
// All methods, except Post(), must be called from the goroutine that runs the
// machine. Post() can be called from any goroutine and is the way for other
// parts of the program to hand work to the machine.
package eventq
