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

// Package modalflag wraps the flag package from the standard library. It adds
// program modes (and sub-modes), each with its own set of flags.
//
// Arguments are given to NewArgs() and then consumed by successive calls to
// Parse(). Flags are added before each call:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "DUMP", "VERSION")
//	_, _ = md.Parse()
//
// The first sub-mode is the default. After Parse() the selected mode is
// available with Mode() and the mode can be given its own flags:
//
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		slices := md.AddInt("slices", 0, "number of time slices to run")
//		base := md.AddAddress("base", 0x8c010000, "load address")
//		p, err := md.Parse()
//		...
//	}
//
// Sub-mode comparisons are case insensitive. Non-flag arguments that remain
// after the last Parse() are returned by RemainingArgs() and GetArg().
//
// The -help flag is handled by Parse(), which prints the flags and sub-modes
// for the current mode to the Output writer and returns ParseHelp.
//
// AddAddress() accepts 32bit guest addresses. A bare eight digit value is
// read as hexadecimal so that addresses can be copied from a disassembly
// listing without a prefix.
package modalflag
