package obs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func sampleMap(t *testing.T) (obs.SatTypeValueMap, gnssid.SatID, gnssid.SatID) {
	t.Helper()
	sat1, err := gnssid.NewSatID(gnssid.SysGPS, 3)
	assert.NoError(t, err)
	sat2, err := gnssid.NewSatID(gnssid.SysGPS, 7)
	assert.NoError(t, err)

	m := obs.NewSatTypeValueMap()
	v1 := obs.NewTypeValueMap()
	v1.Set(obs.ShortObs('C', 1, 'G'), 100.0)
	v1.Set(obs.ShortObs('L', 1, 'G'), 200.0)
	m.Insert(sat1, v1)

	v2 := obs.NewTypeValueMap()
	v2.Set(obs.ShortObs('C', 1, 'G'), 300.0)
	m.Insert(sat2, v2)
	return m, sat1, sat2
}

func TestExtractSatIDThenKeepOnlySatIDIsEquivalentToInput(t *testing.T) {
	m, sat1, _ := sampleMap(t)
	extracted := m.ExtractSatID(sat1)

	copyOfM := m.Clone()
	copyOfM.KeepOnlySatID(sat1)

	assert.Equal(t, extracted, copyOfM)
}

func TestMatrixMissingCellIsZeroNotError(t *testing.T) {
	m, _, _ := sampleMap(t)
	cols := []obs.TypeID{obs.ShortObs('C', 1, 'G'), obs.ShortObs('L', 1, 'G')}
	rows := m.Matrix(cols)

	assert.Len(t, rows, 2)
	// sat2 (second row, sorted by PRN) has no L1G: must read as 0, not panic/error.
	assert.Equal(t, 0.0, rows[1][1])
}

func TestInsertColumnRestoresValuesForCellsInSet(t *testing.T) {
	m, sat1, sat2 := sampleMap(t)
	col := obs.ShortObs('C', 1, 'G')

	before := m.Matrix([]obs.TypeID{col})
	m.InsertColumn(col, []float64{before[0][0], before[1][0]})

	v1, err := m[sat1].Value(col)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, v1)
	v2, err := m[sat2].Value(col)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, v2)
}

func TestValueMissingTypeReturnsTypedError(t *testing.T) {
	tvm := obs.NewTypeValueMap()
	_, err := tvm.Value(obs.ShortObs('C', 1, 'G'))
	assert.ErrorIs(t, err, obs.ErrTypeMissing)
}

func TestSatellitesAreSortedBySystemThenPRN(t *testing.T) {
	m, sat1, sat2 := sampleMap(t)
	sats := m.Satellites()
	assert.Equal(t, []gnssid.SatID{sat1, sat2}, sats)
}
