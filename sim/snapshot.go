// sim/snapshot.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"io"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/nav"

	"github.com/brunoga/deep"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// AircraftSnapshot is a copy of an aircraft's state that shares no memory
// with the live Aircraft, so it can be handed to other goroutines.
type AircraftSnapshot struct {
	Callsign     string
	Position     [2]float32
	Heading      float32
	Altitude     float32
	IAS          float32
	State        AircraftState
	Runway       string
	AIControlled bool
	Msg          string
	Queue        []Command
	Nav          nav.Nav
}

func (ac *Aircraft) Snapshot() AircraftSnapshot {
	s := AircraftSnapshot{
		Callsign:     ac.Callsign,
		Position:     ac.Position(),
		Heading:      ac.Heading(),
		Altitude:     ac.Altitude(),
		IAS:          ac.IAS(),
		State:        ac.State,
		AIControlled: ac.AIControlled,
		Msg:          ac.Msg,
		Queue:        deep.MustCopy(ac.Queue),
		Nav:          deep.MustCopy(ac.Nav),
	}
	if ac.Runway != nil {
		s.Runway = ac.Runway.Name
	}
	return s
}

// WorldSnapshot is the state of the whole simulation at the end of a
// tick.
type WorldSnapshot struct {
	SimTime   float32
	Aircraft  []AircraftSnapshot
	Runways   []av.Runway
	Conflicts []Conflict
	Arrivals  []string
}

func (ws *WorldSnapshot) Lookup(callsign string) (AircraftSnapshot, bool) {
	for _, ac := range ws.Aircraft {
		if ac.Callsign == callsign {
			return ac, true
		}
	}
	return AircraftSnapshot{}, false
}

///////////////////////////////////////////////////////////////////////////
// Snapshot streams

// SnapshotWriter writes a stream of WorldSnapshots as zstd-compressed
// msgpack, for consumption by an external display.
type SnapshotWriter struct {
	zw     *zstd.Encoder
	enc    *msgpack.Encoder
	closed bool
}

func NewSnapshotWriter(w io.Writer) (*SnapshotWriter, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &SnapshotWriter{zw: zw, enc: msgpack.NewEncoder(zw)}, nil
}

func (sw *SnapshotWriter) Write(ws *WorldSnapshot) error {
	if sw.closed {
		return ErrSnapshotClosed
	}
	return sw.enc.Encode(ws)
}

// Flush makes everything written so far available to the reader.
func (sw *SnapshotWriter) Flush() error {
	if sw.closed {
		return ErrSnapshotClosed
	}
	return sw.zw.Flush()
}

func (sw *SnapshotWriter) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	return sw.zw.Close()
}

type SnapshotReader struct {
	zr  *zstd.Decoder
	dec *msgpack.Decoder
}

func NewSnapshotReader(r io.Reader) (*SnapshotReader, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	return &SnapshotReader{zr: zr, dec: msgpack.NewDecoder(zr)}, nil
}

// Read returns the next snapshot in the stream; io.EOF is returned at the
// end of the stream.
func (sr *SnapshotReader) Read() (WorldSnapshot, error) {
	var ws WorldSnapshot
	err := sr.dec.Decode(&ws)
	return ws, err
}

func (sr *SnapshotReader) Close() {
	sr.zr.Close()
}
