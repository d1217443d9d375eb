package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// FixedAmbiguity is one resolved integer ambiguity, spec §4.5's
// ambiguity-resolution output.
type FixedAmbiguity struct {
	Satellite gnssid.SatID
	Signal    string
	Value     float64
	Ratio     float64
}

// FixedWriter writes the optional fixed-solution sidecar file, emitted
// only when AR is enabled, grounded on the teacher's OutSolHead/
// OutSolPos pattern of a header line followed by one row per record.
type FixedWriter struct {
	w *bufio.Writer
}

func NewFixedWriter(w io.Writer) *FixedWriter {
	fw := &FixedWriter{w: bufio.NewWriter(w)}
	fmt.Fprint(fw.w, "%  week     sow  sat  signal       value    ratio\n")
	return fw
}

// Write appends one epoch's resolved ambiguities.
func (f *FixedWriter) Write(e obs.Epoch, fixes []FixedAmbiguity) error {
	for _, fx := range fixes {
		fmt.Fprintf(f.w, "%5d%9.3f  %s  %-8s%10.4f%9.2f\n",
			e.Week, e.SOW, fx.Satellite, fx.Signal, fx.Value, fx.Ratio)
	}
	return f.w.Flush()
}
