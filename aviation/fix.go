// aviation/fix.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
)

type Fix struct {
	Name     string
	Location [2]float32
}

// FixSet is an ordered collection of named fixes.
type FixSet struct {
	fixes  []Fix
	byName map[string]int
}

func MakeFixSet(fixes ...Fix) *FixSet {
	fs := &FixSet{byName: make(map[string]int)}
	for _, f := range fixes {
		fs.Add(f)
	}
	return fs
}

// Add adds the fix to the set, replacing an existing fix with the same
// name.
func (fs *FixSet) Add(f Fix) {
	f.Name = strings.ToUpper(f.Name)
	if idx, ok := fs.byName[f.Name]; ok {
		fs.fixes[idx] = f
		return
	}
	fs.byName[f.Name] = len(fs.fixes)
	fs.fixes = append(fs.fixes, f)
}

func (fs *FixSet) Lookup(name string) (Fix, error) {
	if fs != nil {
		if idx, ok := fs.byName[strings.ToUpper(name)]; ok {
			return fs.fixes[idx], nil
		}
	}
	return Fix{}, fmt.Errorf("%s: %w", name, ErrUnknownFix)
}

func (fs *FixSet) Has(name string) bool {
	_, err := fs.Lookup(name)
	return err == nil
}

// All returns the fixes in the order they were added.
func (fs *FixSet) All() []Fix {
	if fs == nil {
		return nil
	}
	return fs.fixes
}

func (fs *FixSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.fixes)
}
