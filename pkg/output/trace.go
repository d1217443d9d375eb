package output

import (
	"fmt"
	"io"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
)

// TraceWriter emits the "$TAG,..." verbose diagnostic lines gated on
// the `trace` config flag, ported from the teacher's OutPPPStat
// ($POS/$CLK/$TROP/$TRPG tags).
type TraceWriter struct {
	w io.Writer
}

func NewTraceWriter(w io.Writer) *TraceWriter { return &TraceWriter{w: w} }

// Position writes the $POS line: week, sow, satellites used, estimated
// position and its formal standard deviations.
func (t *TraceWriter) Position(week int, sow float64, nsat int, pos, std [3]float64) {
	fmt.Fprintf(t.w, "$POS,%d,%.3f,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n",
		week, sow, nsat, pos[0], pos[1], pos[2], std[0], std[1], std[2])
}

// Clock writes the $CLK line: one receiver-clock estimate (meters) and
// its standard deviation per system, in the order systems is given.
func (t *TraceWriter) Clock(week int, sow float64, systems []gnssid.System, clocks, stds map[gnssid.System]float64) {
	for _, sys := range systems {
		fmt.Fprintf(t.w, "$CLK,%d,%.3f,%s,%.4f,%.4f\n", week, sow, sys, clocks[sys], stds[sys])
	}
}

// Tropo writes the $TROP line: estimated wet zenith delay and its
// standard deviation.
func (t *TraceWriter) Tropo(week int, sow, wetZTD, std float64) {
	fmt.Fprintf(t.w, "$TROP,%d,%.3f,%.4f,%.4f\n", week, sow, wetZTD, std)
}

// Ambiguity writes one $AMB line per satellite carrying a resolved
// ambiguity, ported from the teacher's per-satellite $AMB block
// (ppp.go's IONOOPT_EST satellite loop, adapted here to ambiguity
// state rather than ionosphere state).
func (t *TraceWriter) Ambiguity(week int, sow float64, sat gnssid.SatID, floatValue float64, fixed bool, fixedValue float64) {
	f := 0
	if fixed {
		f = 1
	}
	fmt.Fprintf(t.w, "$AMB,%d,%.3f,%s,%.4f,%d,%.4f\n", week, sow, sat, floatValue, f, fixedValue)
}
