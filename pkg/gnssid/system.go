// Package gnssid defines the core GNSS identifiers shared across the
// pipeline: satellite systems, SatID, and SourceID. Constants and
// per-system PRN ranges are carried over from the teacher's types.go.
package gnssid

import "fmt"

// System is a single-bit navigation system flag, matching the teacher's
// SYS_GPS/SYS_GLO/... bitmask so system sets can be combined with OR.
type System uint8

const (
	SysNone System = 0
	SysGPS  System = 0x01
	SysSBS  System = 0x02
	SysGLO  System = 0x04
	SysGal  System = 0x08
	SysQZS  System = 0x10
	SysCMP  System = 0x20
	SysIRN  System = 0x40
	SysAll  System = 0xFF
)

func (s System) String() string {
	switch s {
	case SysGPS:
		return "G"
	case SysGLO:
		return "R"
	case SysGal:
		return "E"
	case SysCMP:
		return "C"
	case SysQZS:
		return "J"
	case SysIRN:
		return "I"
	case SysSBS:
		return "S"
	default:
		return "?"
	}
}

// SystemFromChar maps a RINEX system character to a System, the
// counterpart of the teacher's satno()/satsys() family in types.go.
func SystemFromChar(c byte) (System, error) {
	switch c {
	case 'G':
		return SysGPS, nil
	case 'R':
		return SysGLO, nil
	case 'E':
		return SysGal, nil
	case 'C':
		return SysCMP, nil
	case 'J':
		return SysQZS, nil
	case 'I':
		return SysIRN, nil
	case 'S':
		return SysSBS, nil
	default:
		return SysNone, fmt.Errorf("gnssid: unknown system char %q", c)
	}
}

// PRN range per system, verbatim from the teacher's types.go constants.
const (
	MinPRNGPS = 1
	MaxPRNGPS = 32
	MinPRNGLO = 1
	MaxPRNGLO = 27
	MinPRNGal = 1
	MaxPRNGal = 36
	MinPRNQZS = 193
	MaxPRNQZS = 202
	MinPRNCMP = 1
	MaxPRNCMP = 63
	MinPRNIRN = 1
	MaxPRNIRN = 14
	MinPRNSBS = 120
	MaxPRNSBS = 158
)

// ValidPRN reports whether prn is in the valid range for sys.
func ValidPRN(sys System, prn int) bool {
	switch sys {
	case SysGPS:
		return prn >= MinPRNGPS && prn <= MaxPRNGPS
	case SysGLO:
		return prn >= MinPRNGLO && prn <= MaxPRNGLO
	case SysGal:
		return prn >= MinPRNGal && prn <= MaxPRNGal
	case SysQZS:
		return prn >= MinPRNQZS && prn <= MaxPRNQZS
	case SysCMP:
		return prn >= MinPRNCMP && prn <= MaxPRNCMP
	case SysIRN:
		return prn >= MinPRNIRN && prn <= MaxPRNIRN
	case SysSBS:
		return prn >= MinPRNSBS && prn <= MaxPRNSBS
	default:
		return false
	}
}

// Frequencies (Hz), verbatim from the teacher's types.go.
const (
	Freq1     = 1.57542e9  // L1/E1/B1C
	Freq2     = 1.22760e9  // L2
	Freq5     = 1.17645e9  // L5/E5a/B2a
	Freq6     = 1.27875e9  // E6/L6
	Freq7     = 1.20714e9  // E5b
	Freq8     = 1.191795e9 // E5a+b
	Freq1CMP  = 1.561098e9 // BDS B1I
	Freq2CMP  = 1.20714e9  // BDS B2I/B2b
	Freq3CMP  = 1.26852e9  // BDS B3
	CLight    = 299792458.0
)
