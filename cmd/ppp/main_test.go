package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSucceedsOnValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ppp.conf")
	body := "general.system=G\ngeneral.mode=PPP_STATIC\ngeneral.ionoopt=IF12\ngeneral.ambFixMode=none\ngeneral.ambProduct=OFF\ngeneral.obsCorr=NONE\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	log := logrus.NewEntry(logrus.New())
	require.NoError(t, run(path, log))
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	err := run(filepath.Join(t.TempDir(), "missing.conf"), log)
	require.Error(t, err)
	assert.Equal(t, 3, exitCodeFor(err))
}

func TestExitCodeForConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ppp.conf")
	body := "general.system=G\ngeneral.mode=PPP_STATIC\ngeneral.ionoopt=IF12\ngeneral.ambFixMode=SDIFROUND\ngeneral.ambProduct=IRC\ngeneral.obsCorr=NONE\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	log := logrus.NewEntry(logrus.New())
	err := run(path, log)
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeFor(err))
}
