// Package config loads the flat key=value configuration file of spec
// §6, grouped by section prefix the way the teacher's options.go
// groups "pos1-"/"pos2-"/"out-" keys, and validates it with
// go-playground/validator struct tags instead of the teacher's
// hand-rolled Str2Enum/SearchOpt table.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/xbfeng/gnssppp/internal/errs"
)

// General holds the top-level processing options of spec §6's
// configuration vocabulary.
type General struct {
	System         string  `validate:"required,oneof=G GE GCE GREC GRECJ GRECJI GRECJIS"`
	Mode           string  `validate:"required,oneof=SPP PPP_STATIC PPP_KIN"`
	IonoOpt        string  `validate:"required,oneof=UC1 UC12 UC123 UC1234 UC12345 IF12 IF1213 IF123 IF121314 IF1234 IF12131415 IF12345"`
	BDSComb        string  `validate:"omitempty,oneof=none CI CCI"`
	BDSFopt        int     `validate:"oneof=0 1"`
	BDS2           int     `validate:"oneof=0 1"`
	AmbFixMode     string  `validate:"required,oneof=none SDUCROUND SDUCILS SDIFROUND SDIFILS"`
	FixFreq        string  `validate:"omitempty,oneof=DFrqs TFrqs QFrqs PFrqs"`
	AmbProduct     string  `validate:"required,oneof=OFF UPD IRC"`
	ObsCorr        string  `validate:"required,oneof=NONE DCB OSB"`
	ElevMaskDeg    float64 `validate:"gte=0,lt=90"`
	SampleInterval float64 `validate:"gte=0"`
	BeginSOD       float64 `validate:"gte=0"`
	EndSOD         float64 `validate:"gte=0"`
	OutENU         bool
	CodeOnly       bool
	IFCBCorr       bool
	FloatFix       bool
	OutPos         bool
	Trace          bool
}

// Config is the fully-loaded, validated configuration for one station
// run. Section maps carry any keys General doesn't name, so a
// fallback2Default in an unrecognized section is still representable.
type Config struct {
	General General
	// Raw holds every key=value pair read from the file, section-
	// qualified ("section.key"), before struct binding -- kept so
	// fallback2Default resolution (see resolveFallback) and future
	// sections can consult values General does not surface as fields.
	Raw map[string]string
}

var validate = validator.New()

// Load reads, section-resolves, and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := readKeyValue(path)
	if err != nil {
		return nil, err
	}
	raw = resolveFallback(raw)

	cfg := &Config{Raw: raw}
	cfg.General = General{
		System:         raw["general.system"],
		Mode:           raw["general.mode"],
		IonoOpt:        raw["general.ionoopt"],
		BDSComb:        raw["general.bdsComb"],
		BDSFopt:        atoiDefault(raw["general.bdsfopt"], 0),
		BDS2:           atoiDefault(raw["general.bds2"], 0),
		AmbFixMode:     orDefault(raw["general.ambFixMode"], "none"),
		FixFreq:        raw["general.fixFreq"],
		AmbProduct:     orDefault(raw["general.ambProduct"], "OFF"),
		ObsCorr:        orDefault(raw["general.obsCorr"], "NONE"),
		ElevMaskDeg:    atofDefault(raw["general.elev"], 7.0),
		SampleInterval: atofDefault(raw["general.sampleInterval"], 0),
		BeginSOD:       atofDefault(raw["general.begin_sod"], 0),
		EndSOD:         atofDefault(raw["general.end_sod"], 0),
		OutENU:         atobDefault(raw["general.outENU"], false),
		CodeOnly:       atobDefault(raw["general.codeOnly"], false),
		IFCBCorr:       atobDefault(raw["general.ifcbCorr"], false),
		FloatFix:       atobDefault(raw["general.floatFix"], false),
		OutPos:         atobDefault(raw["general.outPos"], true),
		Trace:          atobDefault(raw["general.trace"], false),
	}

	if err := validate.Struct(cfg.General); err != nil {
		return nil, errs.Wrap(errs.ConfigErr, err, "invalid configuration")
	}
	if err := checkConflicts(cfg.General); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkConflicts implements spec §8 scenario 6: a closed set of fatal
// option combinations that validator struct tags cannot express because
// they span two fields.
func checkConflicts(g General) error {
	switch {
	case g.AmbFixMode == "SDIFROUND" && g.AmbProduct == "IRC":
		return errs.New(errs.ConfigErr, "ambFixMode=SDIFROUND is incompatible with ambProduct=IRC")
	case strings.HasPrefix(g.IonoOpt, "IF") && !g.IFCBCorr && g.CodeOnly:
		return errs.New(errs.ConfigErr, "ionoopt=IF* requires ifcbCorr=1 when codeOnly=1")
	case g.AmbFixMode != "none" && g.Mode == "SPP":
		return errs.New(errs.ConfigErr, "ambFixMode requires a PPP mode, not SPP")
	}
	return nil
}

// resolveFallback applies spec §9's fallback2Default precedence: a
// section-scoped "section.fallback2Default" value only supplies keys
// entirely absent from that same section; any explicit section-local
// key always wins, and a fallback in one section never leaks into
// another.
func resolveFallback(raw map[string]string) map[string]string {
	fallbackBySection := map[string]string{}
	for key, value := range raw {
		section, name := splitSection(key)
		if name == "fallback2Default" {
			fallbackBySection[section] = value
		}
	}
	if len(fallbackBySection) == 0 {
		return raw
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for section, fallback := range fallbackBySection {
		for _, key := range knownKeysForSection(section) {
			full := section + "." + key
			if _, present := out[full]; !present {
				out[full] = fallback
			}
		}
	}
	return out
}

// knownKeysForSection lists the keys fallback2Default is allowed to
// backfill for a section. Only "general" is populated today; unknown
// sections get no fallback keys (a fallback with nothing to fill is a
// no-op, not an error).
func knownKeysForSection(section string) []string {
	if section != "general" {
		return nil
	}
	return []string{
		"system", "mode", "ionoopt", "bdsComb", "bdsfopt", "bds2",
		"ambFixMode", "fixFreq", "ambProduct", "obsCorr", "elev",
		"sampleInterval", "begin_sod", "end_sod", "outENU", "codeOnly",
		"ifcbCorr", "floatFix", "outPos", "trace",
	}
}

func splitSection(key string) (section, name string) {
	i := strings.IndexByte(key, '.')
	if i < 0 {
		return "general", key
	}
	return key[:i], key[i+1:]
}

// readKeyValue parses a flat key=value file, one option per line,
// blank lines and "#"-prefixed comments ignored, ported from the
// teacher's LoadOpts chop/split-on-"=" loop (options.go). Lines without
// an explicit section prefix are assigned to "general".
func readKeyValue(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileMissingErr, err, "opening config file")
	}
	defer f.Close()

	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := chop(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, errs.New(errs.ParseErr, fmt.Sprintf("invalid option %q (line %d)", line, lineNo))
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if _, _, ok := sectionOf(key); !ok {
			key = "general." + key
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return out, nil
}

func sectionOf(key string) (section, name string, ok bool) {
	i := strings.IndexByte(key, '.')
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// chop trims trailing comments (anything from the first "#")
// and surrounding whitespace, matching the teacher's options_chop.
func chop(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func atofDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func atobDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
