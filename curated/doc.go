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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values and returns an error. The pattern
// is what identifies the error, so packages export their patterns as
// constants:
//
//	const ArenaExhausted = "xlat: arena exhausted: block of %d bytes"
//
//	err := curated.Errorf(ArenaExhausted, size)
//	if curated.Is(err, ArenaExhausted) {
//		...
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain:
//
//	f := curated.Errorf("machine: %v", err)
//	curated.Has(f, ArenaExhausted) // true
//	curated.Is(f, ArenaExhausted)  // false
//
// The IsAny() function answers whether the error was created by
// curated.Errorf(). Put another way, it returns true if the error is
// 'expected' and false if the error is 'unexpected'.
//
// Curated errors also implement Unwrap(), returning the first error value in
// the placeholder values. This means errors.Is() and errors.As() from the
// standard library see through curated errors to any wrapped error.
//
// The Error() function normalises the error chain by removing duplicate
// adjacent parts, which alleviates the problem of when and how to wrap
// errors at every level of a call stack.
package curated
