// Package output formats per-epoch solutions for spec §6's ".pos" file
// (one line per processed epoch) and the optional ".trace"/fixed-
// solution sidecar files, grounded on the teacher's solution.go
// (OutEcef/OutSolPos's Sprintf-and-append style, kept here for the
// ".pos" writer; OutSolHead for the header line).
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// Solution is one epoch's output record, spec §6's ".pos" line
// contents.
type Solution struct {
	Epoch      obs.Epoch
	Position   [3]float64 // ECEF meters, or ENU displacement when ENU
	ENU        bool
	RecClock   map[gnssid.System]float64 // meters, per system
	WetTropo   float64
	Satellites int
	PDOP       float64
	Fixed      bool
}

// PosWriter writes ".pos" lines in the teacher's separator-joined,
// fixed-width Sprintf style (OutEcef/OutSolPos), one call to Write per
// epoch.
type PosWriter struct {
	w   *bufio.Writer
	sys []gnssid.System // stable column order for RecClock
}

// NewPosWriter wraps w, emitting a column header first (spec §6: the
// ".pos" file is one line per epoch -- the header documents the
// columns for a human reader, matching OutSolHead).
func NewPosWriter(w io.Writer, systems []gnssid.System) *PosWriter {
	pw := &PosWriter{w: bufio.NewWriter(w), sys: systems}
	pw.writeHeader()
	return pw
}

func (p *PosWriter) writeHeader() {
	fmt.Fprint(p.w, "%  week     sow            x/e            y/n            z/u")
	for _, s := range p.sys {
		fmt.Fprintf(p.w, "      cdt_%s", s)
	}
	fmt.Fprint(p.w, "    wetTropo  ns    pdop  fix\n")
}

// Write appends one solution line and flushes immediately, matching
// the teacher's line-at-a-time output so a tailing reader sees each
// epoch as soon as it is produced.
func (p *PosWriter) Write(s Solution) error {
	fix := 0
	if s.Fixed {
		fix = 1
	}
	fmt.Fprintf(p.w, "%5d%10.3f%15.4f%15.4f%15.4f",
		s.Epoch.Week, s.Epoch.SOW, s.Position[0], s.Position[1], s.Position[2])
	for _, sys := range p.sys {
		fmt.Fprintf(p.w, "%12.4f", s.RecClock[sys])
	}
	fmt.Fprintf(p.w, "%12.4f%4d%8.2f%5d\n", s.WetTropo, s.Satellites, s.PDOP, fix)
	return p.w.Flush()
}

// WriteBlank emits a no-fix marker line for an epoch that produced no
// solution, spec §7's InsufficientObservations policy ("pipeline emits
// a blank output line and advances").
func (p *PosWriter) WriteBlank(e obs.Epoch) error {
	fmt.Fprintf(p.w, "%5d%10.3f   no-fix\n", e.Week, e.SOW)
	return p.w.Flush()
}
