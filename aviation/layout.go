// aviation/layout.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/util"

	"github.com/iancoleman/orderedmap"
)

//go:embed layout.json
var defaultLayoutJSON []byte

// Layout is the static description of the simulated airspace: the
// airport and its runways, the named fixes, and the airlines whose
// callsigns are used for traffic.
type Layout struct {
	ICAO     string          `json:"icao"`
	Name     string          `json:"name"`
	Area     LayoutArea      `json:"area"`
	Runways  []RunwayConfig  `json:"runways"`
	RawFixes json.RawMessage `json:"fixes"`
	Airlines []Airline       `json:"airlines"`

	// Fixes are decoded from RawFixes, preserving their order in the file.
	Fixes []Fix `json:"-"`
}

type LayoutArea struct {
	Min [2]float32 `json:"min"`
	Max [2]float32 `json:"max"`
}

func (a LayoutArea) Extent() math.Extent2D {
	return math.Extent2D{P0: a.Min, P1: a.Max}
}

type RunwayConfig struct {
	// Optional; if not given, a name is generated from the bearing.
	Name     string     `json:"name,omitempty"`
	Center   [2]float32 `json:"center"`
	Bearing  float32    `json:"bearing"`
	LengthNM float32    `json:"length_nm"`
}

type Airline struct {
	Name      string `json:"name"`
	IATA      string `json:"iata"`
	ICAO      string `json:"icao"`
	Telephony string `json:"telephony"`
}

// DefaultLayout returns the built-in airspace layout.
func DefaultLayout() (*Layout, error) {
	var e util.ErrorLogger
	l := LoadLayout(bytes.NewReader(defaultLayoutJSON), &e)
	return l, e.Err()
}

// LoadLayoutFile loads and validates a layout from the given file.
func LoadLayoutFile(filename string) (*Layout, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var e util.ErrorLogger
	e.Push(filename)
	l := LoadLayout(f, &e)
	e.Pop()
	return l, e.Err()
}

// LoadLayout decodes a layout and validates it, reporting any problems
// via the provided ErrorLogger.
func LoadLayout(r io.Reader, e *util.ErrorLogger) *Layout {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		e.Error(err)
		return nil
	}

	l.decodeFixes(e)
	l.nameRunways()
	l.validate(e)

	return &l
}

func (l *Layout) decodeFixes(e *util.ErrorLogger) {
	if len(l.RawFixes) == 0 {
		return
	}

	e.Push("fixes")
	defer e.Pop()

	om := orderedmap.New()
	if err := om.UnmarshalJSON(l.RawFixes); err != nil {
		e.Error(err)
		return
	}

	for _, name := range om.Keys() {
		v, _ := om.Get(name)
		arr, ok := v.([]any)
		if !ok || len(arr) != 2 {
			e.ErrorString("%s: expected [x, y] location", name)
			continue
		}
		var loc [2]float32
		for i, c := range arr {
			f, ok := c.(float64)
			if !ok {
				e.ErrorString("%s: non-numeric coordinate %v", name, c)
			}
			loc[i] = float32(f)
		}
		l.Fixes = append(l.Fixes, Fix{Name: strings.ToUpper(name), Location: loc})
	}
}

// nameRunways generates names for runways that don't have one: the
// bearing divided by ten, with L/R suffixes for a pair of parallel
// runways and A, B, C... suffixes for more than two. Parallel runways
// are lettered from left to right as seen along the bearing.
func (l *Layout) nameRunways() {
	groups := make(map[int][]int)
	var order []int
	for i, rc := range l.Runways {
		b := int(math.NormalizeHeading(rc.Bearing)/10+0.5) * 10
		if _, ok := groups[b]; !ok {
			order = append(order, b)
		}
		groups[b] = append(groups[b], i)
	}

	for _, b := range order {
		idx := groups[b]
		if len(idx) > 1 {
			l.sortLeftToRight(idx, float32(b))
		}
		for j, i := range idx {
			if l.Runways[i].Name != "" {
				continue
			}

			var suffix string
			if len(idx) == 2 {
				suffix = []string{"L", "R"}[j]
			} else if len(idx) > 2 {
				suffix = string(rune('A' + j))
			}
			num := b / 10
			if num == 0 {
				num = 36
			}
			l.Runways[i].Name = fmt.Sprintf("%02d%s", num, suffix)
		}
	}
}

// sortLeftToRight orders the runway indices by how far left of the
// group's centroid each runway's center lies, looking along hdg.
func (l *Layout) sortLeftToRight(idx []int, hdg float32) {
	var c [2]float32
	for _, i := range idx {
		c = math.Add2f(c, l.Runways[i].Center)
	}
	c = math.Scale2f(c, 1/float32(len(idx)))

	v := math.HeadingVector(hdg)
	left := func(i int) float32 {
		d := math.Sub2f(l.Runways[i].Center, c)
		return v[0]*d[1] - v[1]*d[0]
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(left(b), left(a))
	})
}

func (l *Layout) validate(e *util.ErrorLogger) {
	if l.ICAO == "" {
		e.ErrorString("\"icao\" not specified")
	}

	area := l.Area.Extent()
	if area.Width() <= 0 || area.Height() <= 0 {
		e.ErrorString("area must have positive width and height")
	}

	if len(l.Runways) == 0 {
		e.ErrorString("no runways specified")
	}
	seen := make(map[string]bool)
	for _, rc := range l.Runways {
		e.Push("runway " + rc.Name)
		if seen[rc.Name] {
			e.Error(ErrDuplicateRunway)
		}
		seen[rc.Name] = true
		if rc.LengthNM <= 0 {
			e.ErrorString("length_nm %.1f must be positive", rc.LengthNM)
		}
		if !area.Inside(rc.Center) {
			e.ErrorString("center %v is outside the area", rc.Center)
		}
		e.Pop()
	}

	if len(l.Fixes) == 0 {
		e.ErrorString("no fixes specified")
	}
	for _, f := range l.Fixes {
		if !util.IsAllLetters(f.Name) {
			e.ErrorString("fix %q: names must be all letters", f.Name)
		}
		if !area.Inside(f.Location) {
			e.ErrorString("fix %s: location %v is outside the area", f.Name, f.Location)
		}
	}

	if len(l.Airlines) == 0 {
		e.ErrorString("no airlines specified")
	}
	for _, al := range l.Airlines {
		e.Push("airline " + al.Name)
		if len(al.IATA) != 2 {
			e.ErrorString("IATA code %q must be two characters", al.IATA)
		}
		if al.Telephony == "" {
			e.ErrorString("no telephony specified")
		}
		e.Pop()
	}
}

// BuildAirport creates a new Airport from the layout; each call returns
// fresh runways with no aircraft on them.
func (l *Layout) BuildAirport() *Airport {
	ap := &Airport{ICAO: l.ICAO, Name: l.Name}
	for _, rc := range l.Runways {
		ap.Runways = append(ap.Runways, MakeRunway(rc.Name, rc.Center, rc.Bearing, rc.LengthNM))
	}
	return ap
}

func (l *Layout) BuildFixSet() *FixSet {
	return MakeFixSet(l.Fixes...)
}
