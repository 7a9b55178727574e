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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware"
	"github.com/hean01/lxdream/hardware/memory/memorymap"
	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/hardware/sh4"
	"github.com/hean01/lxdream/logger"
	"github.com/hean01/lxdream/modalflag"
	"github.com/hean01/lxdream/prefs"
	"github.com/hean01/lxdream/statsview"
	"github.com/hean01/lxdream/version"
)

// the address binaries are loaded to unless the -base flag says otherwise.
// this is the conventional start of a program in main RAM
const defaultBase = 0x8c010000

// exit values
const (
	exitOK    = 0
	exitParse = 10
	exitMode  = 20
)

func main() {
	// #ctrlc stops the emulation at the end of the current slice
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(launch(ctx, os.Args[1:], os.Stdout))
}

// launch parses the command line and runs the selected mode. the return value
// is suitable for os.Exit().
func launch(ctx context.Context, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "DUMP", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitOK

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return exitParse
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md, output)

	case "DUMP":
		err = dump(ctx, md, output)

	case "VERSION":
		err = showVersion(md, output)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return exitMode
	}

	return exitOK
}

// flags shared by the RUN and DUMP modes.
type machineFlags struct {
	prefsFile *string
	prefs     *string
	base      *uint32
	slices    *int
	breaks    *string
	log       *bool
}

func addMachineFlags(md *modalflag.Modes, slices int) machineFlags {
	return machineFlags{
		prefsFile: md.AddString("prefsfile", "", "preferences file to use (default is in the resources folder)"),
		prefs:     md.AddString("prefs", "", "preferences for this session (eg. sh4.slicelength::500000)"),
		base:      md.AddAddress("base", defaultBase, "address to load the binary to. also the entry point"),
		slices:    md.AddInt("slices", slices, "number of time slices to run (zero runs until the CPU stops)"),
		breaks:    md.AddString("break", "", "comma separated list of breakpoint addresses"),
		log:       md.AddBool("log", false, "echo log to stdout"),
	}
}

// newMachine creates and prepares a machine according to the flags and the
// binary file named in the remaining arguments.
func newMachine(md *modalflag.Modes, f machineFlags, output io.Writer) (*hardware.Machine, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return nil, fmt.Errorf("binary file required")
	case 1:
	default:
		return nil, fmt.Errorf("too many arguments for %s mode", md)
	}

	if *f.log {
		logger.SetEcho(output)
	}

	// command line preferences are applied as the preferences are added to
	// the disk instance. the stack must be popped afterwards whether the
	// values were used or not
	prefs.PushCommandLineStack(*f.prefs)
	p, err := preferences.NewPreferences(*f.prefsFile)
	if unused := prefs.PopCommandLineStack(); unused != "" {
		logger.Logf(logger.Allow, "lxdream", "unused preferences: %s", unused)
	}
	if err != nil {
		return nil, err
	}

	env, err := environment.NewEnvironment(environment.MainEmulation, p)
	if err != nil {
		return nil, err
	}

	m, err := hardware.NewMachine(env)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(md.GetArg(0))
	if err != nil {
		closeLogged(m.Env, "machine", m)
		return nil, err
	}

	err = m.LoadBinary(*f.base, data)
	if err != nil {
		closeLogged(m.Env, "machine", m)
		return nil, err
	}

	if *f.breaks != "" {
		for _, s := range strings.Split(*f.breaks, ",") {
			a, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
			if err != nil {
				closeLogged(m.Env, "machine", m)
				return nil, fmt.Errorf("breakpoint: %w", err)
			}
			m.CPU.SetBreakpoint(uint32(a), false)
		}
	}

	return m, nil
}

// closeLogged is used where a failure to close cannot be returned, either
// because a more important error is being returned or because the close is
// deferred. The failure is logged instead.
func closeLogged(perm logger.Permission, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Logf(perm, "lxdream", "close %s: %v", what, err)
	}
}

func run(ctx context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	md.AdditionalHelp("The binary is loaded into memory at the base address and executed from\n" +
		"there in privileged mode with the MMU disabled.")

	f := addMachineFlags(md, 0)
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	save := md.AddString("save", "", "save MMU state to file when the emulation stops")
	timeout := md.AddDuration("timeout", 0, "stop the emulation after the duration")
	memmap := md.AddBool("memmap", false, "include the physical memory map in the report")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("statsview not available in this build")
		}
		statsview.Launch(output)
	}

	m, err := newMachine(md, f, output)
	if err != nil {
		return err
	}
	defer closeLogged(m.Env, "machine", m)

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	exit, err := m.Run(ctx, *f.slices)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	report(output, m, exit, *memmap)

	// the log has already been seen if it was echoed
	if !*f.log {
		logger.Tail(output, 20)
	}

	if *save != "" {
		if serr := saveMMU(m, *save); serr != nil && err == nil {
			err = serr
		}
	}

	return err
}

func saveMMU(m *hardware.Machine, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.CPU.MMU.Save(f)
}

// report writes the state of the machine to output after an emulation stops.
func report(output io.Writer, m *hardware.Machine, exit sh4.Exit, memmap bool) {
	s := m.Snapshot()

	fmt.Fprintf(output, "%s after %d ns (%s)\n", s.CPU, s.Clock, exit)
	fmt.Fprintln(output, s.Registers)

	for _, st := range s.Cache {
		fmt.Fprintf(output, "%-4s %8d bytes, %4d blocks, %4d active, %4d used\n", st.Arena, st.Size, st.Blocks, st.Active, st.Used)
	}

	if memmap {
		fmt.Fprintln(output, "memory map:")
		io.WriteString(output, memorymap.Summary())
	}

	if len(s.Faults) > 0 {
		fmt.Fprintln(output, "faults:")
		m.CPU.Faults.WriteLog(output)
	}
}

func dump(ctx context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	f := addMachineFlags(md, 1)
	out := md.AddString("o", "", "write the graph to file rather than to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	m, err := newMachine(md, f, output)
	if err != nil {
		return err
	}
	defer closeLogged(m.Env, "machine", m)

	_, err = m.Run(ctx, *f.slices)
	if err != nil && !errors.Is(err, context.Canceled) {
		// the state at the point of the error is still worth seeing
		logger.Logf(m.Env, "lxdream", "dump: %v", err)
	}

	w := output
	if *out != "" {
		fo, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer fo.Close()
		w = fo
	}

	memviz.Map(w, m.Snapshot())

	return nil
}

func showVersion(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	revision := md.AddBool("revision", false, "display revision information from version control")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	v, r, release := version.Version()
	fmt.Fprintf(output, "%s %s\n", version.ApplicationName, v)
	if *revision || !release {
		fmt.Fprintln(output, r)
	}

	return nil
}
