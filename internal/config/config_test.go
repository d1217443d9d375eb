package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfeng/gnssppp/internal/errs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ppp.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesValidConfig(t *testing.T) {
	path := writeConfig(t, `
# comment line
general.system=G
general.mode=PPP_STATIC
general.ionoopt=IF12
general.ambFixMode=none
general.ambProduct=OFF
general.obsCorr=NONE
general.elev=10
general.sampleInterval=30
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "G", cfg.General.System)
	assert.Equal(t, "PPP_STATIC", cfg.General.Mode)
	assert.InDelta(t, 10.0, cfg.General.ElevMaskDeg, 1e-9)
	assert.InDelta(t, 30.0, cfg.General.SampleInterval, 1e-9)
}

func TestLoadDefaultsUnqualifiedKeysToGeneralSection(t *testing.T) {
	path := writeConfig(t, "system=GE\nmode=SPP\nionoopt=UC12\nambFixMode=none\nambProduct=OFF\nobsCorr=NONE\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GE", cfg.General.System)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.FileMissingErr))
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := writeConfig(t, "this line has no equals sign\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ParseErr))
}

func TestLoadRejectsConflictingAmbFixModeAndAmbProduct(t *testing.T) {
	path := writeConfig(t, `
general.system=G
general.mode=PPP_STATIC
general.ionoopt=IF12
general.ambFixMode=SDIFROUND
general.ambProduct=IRC
general.obsCorr=NONE
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ConfigErr))
}

func TestLoadRejectsInvalidEnumValue(t *testing.T) {
	path := writeConfig(t, `
general.system=G
general.mode=NOT_A_MODE
general.ionoopt=IF12
general.ambFixMode=none
general.ambProduct=OFF
general.obsCorr=NONE
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ConfigErr))
}

func TestFallback2DefaultOnlyFillsAbsentKeysInItsOwnSection(t *testing.T) {
	path := writeConfig(t, `
general.system=G
general.mode=PPP_STATIC
general.ionoopt=IF12
general.ambFixMode=none
general.ambProduct=OFF
general.obsCorr=NONE
general.elev=15
general.fallback2Default=DEFAULT_MARKER
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	// elev was explicit, must win over the fallback.
	assert.InDelta(t, 15.0, cfg.General.ElevMaskDeg, 1e-9)
	// sampleInterval was absent; fallback resolution writes the marker
	// into Raw, but it is not numeric so atofDefault falls back to 0.
	assert.Equal(t, "DEFAULT_MARKER", cfg.Raw["general.sampleInterval"])
}
