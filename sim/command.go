// sim/command.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"strings"
)

type CommandType int

const (
	CommandHDG CommandType = iota
	CommandALT
	CommandSPD
	CommandNAV
	CommandHOLD
	CommandTAKEOFF
	CommandLAND
	NumCommandTypes
)

func (t CommandType) String() string {
	return []string{"HDG", "ALT", "SPD", "NAV", "HOLD", "TAKEOFF", "LAND"}[t]
}

// Command is a single queued instruction for an aircraft. Value and Extra
// hold the instruction's arguments in the form they were issued:
//
//	HDG      Value: "090"           Extra: "L", "R" or ""
//	ALT      Value: thousands, "5"  Extra: "X", "EX" or ""
//	SPD      Value: knots
//	NAV      Value: fix name
//	HOLD     Value: fix name or "" for the present position
//	TAKEOFF  Value: "runway,speed,altitude"
//	LAND     Value: runway name
type Command struct {
	Type  CommandType
	Value string
	Extra string
}

func (c Command) String() string {
	s := c.Type.String()
	if c.Value != "" {
		s += " " + c.Value
	}
	if c.Extra != "" {
		s += " " + c.Extra
	}
	return s
}

// TakeoffCommand returns a TAKEOFF command for the given runway, speed in
// knots, and altitude in feet.
func TakeoffCommand(rwy string, spd, alt int) Command {
	return Command{Type: CommandTAKEOFF, Value: fmt.Sprintf("%s,%d,%d", rwy, spd, alt)}
}

// takeoffArgs splits the value of a TAKEOFF command into its runway,
// speed, and altitude components.
func (c Command) takeoffArgs() (rwy, spd, alt string, ok bool) {
	f := strings.Split(c.Value, ",")
	if len(f) != 3 {
		return "", "", "", false
	}
	return strings.TrimSpace(f[0]), strings.TrimSpace(f[1]), strings.TrimSpace(f[2]), true
}
