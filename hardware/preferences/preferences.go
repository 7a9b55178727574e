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

// Package preferences collates the preference values of the emulated machine.
// Values are persisted to the preferences file by way of the prefs package and
// can be overridden from the command line with the prefs command line stack.
package preferences

import (
	"fmt"

	"github.com/hean01/lxdream/curated"
	"github.com/hean01/lxdream/prefs"
	"github.com/hean01/lxdream/resources"
)

// Preferences defines and collates all the preference values used by the
// machine emulation.
type Preferences struct {
	dsk *prefs.Disk

	// size in bytes of the translation cache's new generation arena
	ArenaSize prefs.Int

	// whether the translation cache promotes long-lived blocks into the temp
	// and old generations
	Generational prefs.Bool

	// the number of nanoseconds in one SH4 instruction cycle
	CPUPeriod prefs.Int

	// the number of nanoseconds in a single time slice
	SliceLength prefs.Int

	// whether the machine writes to the central log
	Log prefs.Bool
}

// Default values.
const (
	DefaultArenaSize    = 8 * 1024 * 1024
	DefaultCPUPeriod    = 5
	DefaultSliceLength  = 1000000
	DefaultGenerational = false
	DefaultLog          = true
)

// the smallest arena that can hold a useful number of blocks.
const minArenaSize = 64 * 1024

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences
// type. If filename is empty then the default preferences file in the
// resources directory is used.
func NewPreferences(filename string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.ArenaSize.SetHookPre(func(v prefs.Value) error {
		if v.(int) < minArenaSize || v.(int)%4 != 0 {
			return fmt.Errorf("preferences: arena size must be a multiple of four and at least %d bytes", minArenaSize)
		}
		return nil
	})
	p.CPUPeriod.SetHookPre(func(v prefs.Value) error {
		if v.(int) <= 0 {
			return fmt.Errorf("preferences: cpu period must be positive")
		}
		return nil
	})
	p.SliceLength.SetHookPre(func(v prefs.Value) error {
		if v.(int) <= 0 {
			return fmt.Errorf("preferences: slice length must be positive")
		}
		return nil
	})

	var err error

	if filename == "" {
		filename, err = resources.JoinPath(prefs.DefaultPrefsFile)
		if err != nil {
			return nil, err
		}
	}

	p.dsk, err = prefs.NewDisk(filename)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("xlat.arenasize", &p.ArenaSize)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("xlat.generational", &p.Generational)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("sh4.cpuperiod", &p.CPUPeriod)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("sh4.slicelength", &p.SliceLength)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.log", &p.Log)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(false)
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.ArenaSize.SetDefault(DefaultArenaSize)
	p.Generational.SetDefault(DefaultGenerational)
	p.CPUPeriod.SetDefault(DefaultCPUPeriod)
	p.SliceLength.SetDefault(DefaultSliceLength)
	p.Log.SetDefault(DefaultLog)
	_ = p.ArenaSize.Reset()
	_ = p.Generational.Reset()
	_ = p.CPUPeriod.Reset()
	_ = p.SliceLength.Reset()
	_ = p.Log.Reset()
}

// Reset all preferences to the default values.
func (p *Preferences) Reset() error {
	return p.dsk.Reset()
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
