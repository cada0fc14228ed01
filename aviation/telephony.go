// aviation/telephony.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/atcsim/atcsim/util"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Telephony maps written callsigns like "BA123" to the way they are
// spoken on frequency ("Speedbird 123").
type Telephony struct {
	airlines map[string]Airline // by IATA code
	spoken   *lru.Cache[string, string]
}

func MakeTelephony(airlines []Airline) *Telephony {
	t := &Telephony{airlines: make(map[string]Airline)}
	for _, al := range airlines {
		al.Telephony = util.StopShouting(al.Telephony)
		t.airlines[strings.ToUpper(al.IATA)] = al
	}
	// Only fails for a non-positive size.
	t.spoken, _ = lru.New[string, string](256)
	return t
}

// Airline returns the airline whose IATA code prefixes the callsign.
func (t *Telephony) Airline(callsign string) (Airline, error) {
	if len(callsign) >= 2 {
		if al, ok := t.airlines[strings.ToUpper(callsign[:2])]; ok {
			return al, nil
		}
	}
	return Airline{}, fmt.Errorf("%s: %w", callsign, ErrUnknownAirline)
}

// Spoken returns the radio callsign for the given written callsign: the
// airline's telephony followed by the flight number without leading
// zeros. Callsigns of unknown airlines are returned unchanged.
func (t *Telephony) Spoken(callsign string) string {
	if s, ok := t.spoken.Get(callsign); ok {
		return s
	}

	s := callsign
	if al, err := t.Airline(callsign); err == nil {
		number := strings.TrimLeft(callsign[2:], "0")
		s = strings.TrimSpace(al.Telephony + " " + number)
	}

	t.spoken.Add(callsign, s)
	return s
}

// IATACodes returns the known airline codes, sorted.
func (t *Telephony) IATACodes() []string {
	return util.SortedMapKeys(t.airlines)
}
