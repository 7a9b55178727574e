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

package hardware_test

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"testing"
	"time"

	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/environment"
	"github.com/hean01/lxdream/hardware"
	"github.com/hean01/lxdream/hardware/eventq"
	"github.com/hean01/lxdream/hardware/preferences"
	"github.com/hean01/lxdream/hardware/sh4"
	"github.com/hean01/lxdream/hardware/xlat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entry = 0x8c010000

func newMachine(t *testing.T, program ...uint16) *hardware.Machine {
	t.Helper()

	prefs, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "preferences"))
	require.NoError(t, err)
	require.NoError(t, prefs.ArenaSize.Set(1024*1024))
	require.NoError(t, prefs.Generational.Set(true))
	require.NoError(t, prefs.Log.Set(false))

	env, err := environment.NewEnvironment(environment.MainEmulation, prefs)
	require.NoError(t, err)

	m, err := hardware.NewMachine(env)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, m.Close())
	})

	b := make([]byte, len(program)*2)
	for i, w := range program {
		binary.LittleEndian.PutUint16(b[i*2:], w)
	}
	require.NoError(t, m.LoadBinary(entry, b))

	m.CPU.SetSR(sh4.SRMD)
	m.CPU.VBR = entry + 0x1000

	return m
}

func TestRunToBreakpoint(t *testing.T) {
	m := newMachine(t,
		0xe064, // MOV #100,R0
		0x4010, // DT R0
		0x8bfd, // BF -3
		0x001b, // SLEEP
	)
	m.CPU.SetBreakpoint(entry+6, false)

	exit, err := m.Run(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, sh4.ExitBreakpoint, exit)

	s := m.Snapshot()
	assert.Equal(t, uint32(entry+6), s.Registers.PC)
	assert.Equal(t, uint32(0), s.Registers.R[0])
	assert.Equal(t, sh4.Running, s.CPU)
	assert.Equal(t, uint64(201*5), s.Clock)

	// the breakpoint is ignored when the run resumes
	exit, err = m.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, sh4.ExitNone, exit)
	assert.Equal(t, sh4.Sleeping, m.CPU.State())
	assert.Equal(t, uint32(entry+8), m.CPU.PC)
}

func TestPostedInterrupt(t *testing.T) {
	m := newMachine(t,
		0x001b, // SLEEP
	)
	m.CPU.SetBreakpoint(entry+0x1600, false)

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Events.Post(func() {
			m.Events.RaiseIRQ(eventq.IRQ{Code: 0x320, Level: 4})
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exit, err := m.Run(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, sh4.ExitBreakpoint, exit)
	assert.Equal(t, uint32(entry+2), m.CPU.SPC)
	assert.Equal(t, uint32(entry+0x1600), m.CPU.PC)
}

func TestCancelledContext(t *testing.T) {
	m := newMachine(t,
		0x001b, // SLEEP
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Run(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), m.CPU.Clock())
}

func TestDoubleFaultHalts(t *testing.T) {
	m := newMachine(t)
	m.CPU.PC = 0xe0000000
	m.CPU.VBR = 0xe0000000

	exit, err := m.Run(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, curated.Is(err, sh4.DoubleFault))
	assert.Equal(t, sh4.ExitHalt, exit)

	s := m.Snapshot()
	require.Len(t, s.Faults, 2)
	assert.Equal(t, sh4.Halted, s.CPU)

	// a reset recovers the machine
	m.Reset()
	assert.Equal(t, sh4.Running, m.CPU.State())
	assert.Equal(t, uint32(0xa0000000), m.CPU.PC)
}

func TestTranslationCacheUse(t *testing.T) {
	m := newMachine(t,
		0xe00a, // MOV #10,R0
		0x4010, // DT R0
		0x8bfd, // BF -3
		0x001b, // SLEEP
	)

	_, err := m.Run(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, m.CPU.Cache.CheckIntegrity())

	s := m.Snapshot()
	require.Len(t, s.Cache, 3)
	assert.Equal(t, 3, s.Cache[0].Active+s.Cache[0].Used)
	assert.NotEqual(t, xlat.NoBlock, m.CPU.Cache.Lookup(0x0c010002))
}
