// sim/control.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/util"
)

// ControlResult is the outcome of the commands issued to one aircraft:
// CtrlMsg is a terse status for the controller's display and AckMsg is
// the pilot's spoken readback.
type ControlResult struct {
	Callsign string
	CtrlMsg  string
	AckMsg   string
}

// Interpreter parses controller command text and queues the resulting
// commands with the addressed aircraft. Runway-related instructions are
// checked against the current state of the airspace when they are
// issued.
type Interpreter struct {
	Airspace *Airspace
	Config   *Config
	lg       *log.Logger
}

func NewInterpreter(as *Airspace, cfg *Config, lg *log.Logger) *Interpreter {
	return &Interpreter{Airspace: as, Config: cfg, lg: lg}
}

// Run interprets a line of command text. The text may address multiple
// aircraft, separated by "|"; each segment is of the form
//
//	CALLSIGN INSTRUCTION [ARGS...] [INSTRUCTION [ARGS...]]...
//
// A result is returned for each non-empty segment. Any accepted
// instruction other than AI leaves the aircraft under manual control.
func (in *Interpreter) Run(text string, aircraft []*Aircraft) []ControlResult {
	if strings.TrimSpace(text) == "" {
		return []ControlResult{{CtrlMsg: "NO COMMAND"}}
	}

	var results []ControlResult
	for _, seg := range strings.Split(text, "|") {
		fields := strings.Fields(strings.ToUpper(seg))
		if len(fields) == 0 {
			continue
		}

		callsign := fields[0]
		ac := findAircraft(aircraft, callsign)
		if ac == nil {
			results = append(results, ControlResult{Callsign: callsign, CtrlMsg: callsign + " NOT FOUND"})
			continue
		}

		results = append(results, in.runSegment(ac, fields[1:]))
	}
	return results
}

func findAircraft(aircraft []*Aircraft, callsign string) *Aircraft {
	for _, ac := range aircraft {
		if strings.EqualFold(ac.Callsign, callsign) {
			return ac
		}
	}
	return nil
}

func isInstruction(s string) bool {
	switch s {
	case "C", "S", "H", "T", "L", "AI":
		return true
	default:
		return false
	}
}

func (in *Interpreter) runSegment(ac *Aircraft, tokens []string) ControlResult {
	var cmds []Command
	var acks []string
	var aiSet *bool
	aiAck := -1

	perf := &ac.Nav.Perf

	// nextArg consumes and returns the token following tokens[i], if
	// there is one.
	i := 0
	nextArg := func() (string, bool) {
		if i+1 < len(tokens) {
			i++
			return tokens[i], true
		}
		return "", false
	}

tokens:
	for ; i < len(tokens); i++ {
		switch tok := tokens[i]; tok {
		case "C":
			arg, ok := nextArg()
			if !ok {
				acks = append(acks, "unable, missing clearance value")
				break tokens
			}
			var extra string
			if i+1 < len(tokens) {
				switch tokens[i+1] {
				case "L", "R", "X", "EX":
					i++
					extra = tokens[i]
				}
			}

			switch {
			case len(arg) == 3 && util.IsAllNumbers(arg):
				hdg, _ := strconv.Atoi(arg)
				if hdg > 360 {
					acks = append(acks, "unable, invalid heading")
					continue
				}
				var turn string
				switch extra {
				case "L":
					turn = "left "
				case "R":
					turn = "right "
				default:
					extra = ""
				}
				cmds = append(cmds, Command{Type: CommandHDG, Value: arg, Extra: extra})
				acks = append(acks, "turn "+turn+"heading "+av.SayHeading(hdg))

			case util.IsAllNumbers(arg):
				thousands, err := strconv.Atoi(arg)
				alt := thousands * 1000
				if err != nil || float32(alt) > perf.MaxAltitude {
					acks = append(acks, "unable, invalid altitude")
					continue
				}
				if extra != "X" && extra != "EX" {
					extra = ""
				}

				direction := "maintain"
				if cur := ac.Altitude(); float32(alt) > cur {
					direction = "climb and maintain"
				} else if float32(alt) < cur {
					direction = "descend and maintain"
				}
				ack := direction + " " + av.SayAltitude(alt)
				if extra != "" {
					ack += " expedite"
				}
				cmds = append(cmds, Command{Type: CommandALT, Value: strconv.Itoa(thousands), Extra: extra})
				acks = append(acks, ack)

			default:
				cmds = append(cmds, Command{Type: CommandNAV, Value: arg})
				acks = append(acks, "cleared direct "+arg)
			}

		case "S":
			arg, ok := nextArg()
			spd, err := strconv.Atoi(arg)
			if !ok || err != nil || spd <= 0 || float32(spd) > perf.MaxSpeed {
				acks = append(acks, "unable, invalid speed")
				continue
			}
			cmds = append(cmds, Command{Type: CommandSPD, Value: arg})
			acks = append(acks, "speed "+av.SaySpeed(spd))

		case "H":
			if i+1 < len(tokens) && !isInstruction(tokens[i+1]) {
				i++
				cmds = append(cmds, Command{Type: CommandHOLD, Value: tokens[i]})
				acks = append(acks, "hold at "+tokens[i])
			} else {
				cmds = append(cmds, Command{Type: CommandHOLD})
				acks = append(acks, "hold position")
			}

		case "T":
			if i+3 >= len(tokens) {
				acks = append(acks, "takeoff clearance missing parameters")
				break tokens
			}
			name, spdStr, altStr := tokens[i+1], tokens[i+2], tokens[i+3]
			i += 3

			spd, serr := strconv.Atoi(spdStr)
			alt, aerr := strconv.Atoi(altStr)
			if serr != nil || aerr != nil || spd <= 0 || float32(spd) > perf.MaxSpeed ||
				alt <= 0 || float32(alt) > perf.MaxAltitude {
				acks = append(acks, "unable, invalid takeoff parameters")
				continue
			}
			rwy, msg := in.lookupRunway(name)
			if rwy == nil {
				acks = append(acks, msg)
				continue
			}
			if msg := in.checkAvailable(ac, rwy); msg != "" {
				acks = append(acks, msg)
				continue
			}
			cmds = append(cmds, TakeoffCommand(rwy.Name, spd, alt))
			acks = append(acks, fmt.Sprintf("cleared for takeoff runway %s, climb to %d feet, maintain %d knots",
				rwy.Name, alt, spd))

		case "L":
			name, ok := nextArg()
			if !ok {
				acks = append(acks, "landing clearance missing runway")
				break tokens
			}
			rwy, msg := in.lookupRunway(name)
			if rwy == nil {
				acks = append(acks, msg)
				continue
			}
			if math.HeadingDifference(ac.Heading(), rwy.Bearing) > in.Config.LandingAlignTolerance {
				acks = append(acks, "unable, not aligned for "+rwy.Name)
				continue
			}
			if ac.Altitude() > in.Config.LandingCeiling {
				acks = append(acks, "unable, too high for approach")
				continue
			}
			if msg := in.checkAvailable(ac, rwy); msg != "" {
				acks = append(acks, msg)
				continue
			}
			cmds = append(cmds, Command{Type: CommandLAND, Value: rwy.Name})
			acks = append(acks, "cleared to land runway "+rwy.Name)

		case "AI":
			on := !ac.AIControlled
			if i+1 < len(tokens) && (tokens[i+1] == "ON" || tokens[i+1] == "OFF") {
				i++
				on = tokens[i] == "ON"
			}
			aiSet = &on
			aiAck = len(acks)
			acks = append(acks, "autonomous control "+util.Select(on, "on", "off"))

		default:
			acks = append(acks, "unable, unknown instruction "+tok)
		}
	}

	result := ControlResult{Callsign: ac.Callsign}

	// Queued commands are left in place; new ones go after them.
	ac.Enqueue(cmds...)

	if len(cmds) > 0 {
		// Manual control takes over from the AI, even if AI ON was
		// given in the same segment.
		if aiSet != nil && *aiSet {
			off := false
			aiSet = &off
			acks[aiAck] = "autonomous control off"
		}
		ac.AIControlled = false
	} else if aiSet != nil {
		ac.AIControlled = *aiSet
	}

	joined := util.CapitalizeFirst(strings.Join(acks, ", "))
	switch {
	case len(cmds) > 0:
		result.CtrlMsg = fmt.Sprintf("%s: CLEARED %d COMMAND(S)", ac.Callsign, len(cmds))
		result.AckMsg = joined + ", " + in.Airspace.SpokenCallsign(ac.Callsign)
	case aiSet != nil:
		result.CtrlMsg = fmt.Sprintf("%s: AI %s", ac.Callsign, util.Select(*aiSet, "ON", "OFF"))
		result.AckMsg = joined + ", " + in.Airspace.SpokenCallsign(ac.Callsign)
	default:
		result.CtrlMsg = ac.Callsign + ": NO VALID COMMANDS"
		result.AckMsg = util.Select(joined != "", joined, "No response.")
	}

	in.lg.Info("control", slog.String("callsign", ac.Callsign), slog.Any("commands", cmds),
		slog.String("ctrl", result.CtrlMsg), slog.String("ack", result.AckMsg))

	return result
}

func (in *Interpreter) lookupRunway(name string) (*av.Runway, string) {
	rwy, err := in.Airspace.Runway(name)
	if err != nil {
		if !errors.Is(err, av.ErrRunwayNotFound) {
			in.lg.Error("runway lookup", slog.Any("error", err))
		}
		return nil, "unable, runway " + name + " not found"
	}
	return rwy, ""
}

// checkAvailable returns the reason the aircraft can't be cleared onto
// the runway, phrased for the readback, or "" if it can.
func (in *Interpreter) checkAvailable(ac *Aircraft, rwy *av.Runway) string {
	switch {
	case ac.Runway != nil:
		return "unable, already on runway " + ac.Runway.Name
	case rwy.Status == av.RunwayClosed:
		return "unable, runway " + rwy.Name + " closed"
	case !rwy.IsAvailable():
		return "unable, " + rwy.Name + " occupied"
	default:
		return ""
	}
}
