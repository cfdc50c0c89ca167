package restart

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arrayWriter struct {
	key  string
	data []float64
}

func (aw *arrayWriter) PutToDatabase(db Database) {
	db.PutDoubleArray(aw.key, aw.data)
}

func TestMemoryDatabase(t *testing.T) {
	db := NewMemoryDatabase()
	in := []float64{1, 2, 3}
	db.PutDoubleArray("F_1", in)
	in[0] = 99
	out, err := db.GetDoubleArray("F_1", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out)
	assert.True(t, db.KeyExists("F_1"))
	assert.False(t, db.KeyExists("F_2"))

	_, err = db.GetDoubleArray("F_2", 3)
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = db.GetDoubleArray("F_1", 2)
	assert.ErrorIs(t, err, ErrArrayLength)

	child := db.PutDatabase("evaluator")
	assert.Same(t, child, db.PutDatabase("evaluator"))
	assert.True(t, db.IsDatabase("evaluator"))
	_, err = db.GetDatabase("missing")
	assert.ErrorIs(t, err, ErrMissingDatabase)
	db.PutDoubleArray("A", nil)
	assert.Equal(t, []string{"A", "F_1"}, db.Keys())
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.yaml")
	db := NewMemoryDatabase()
	values := []float64{0.1, -1. / 3, math.Pi * 1.e-17, 6.02214076e23, 2, 0, math.SmallestNonzeroFloat64}
	db.PutDatabase("forces").PutDoubleArray("P_box_7", values)
	require.NoError(t, WriteFile(path, db))

	read, err := ReadFile(path)
	require.NoError(t, err)
	sub, err := read.GetDatabase("forces")
	require.NoError(t, err)
	got, err := sub.GetDoubleArray("P_box_7", len(values))
	require.NoError(t, err)
	for i := range values {
		assert.Equal(t, math.Float64bits(values[i]), math.Float64bits(got[i]), "entry %d", i)
	}

	_, err = ReadFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()
	assert.False(t, m.IsFromRestart())
	item := &arrayWriter{key: "X_lo_0", data: []float64{0.25, 0.5, 0}}
	require.NoError(t, m.RegisterRestartItem("evaluator", item))
	assert.Error(t, m.RegisterRestartItem("evaluator", item))

	path, err := m.WriteRestartFile(dir, 12)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "restore.000012.yaml"), path)

	m2 := NewManager()
	assert.Error(t, m2.OpenRestartFile(dir, 11))
	require.NoError(t, m2.OpenRestartFile(dir, 12))
	assert.True(t, m2.IsFromRestart())
	root := m2.RootDatabase()
	require.True(t, root.IsDatabase("evaluator"))
	sub, err := root.GetDatabase("evaluator")
	require.NoError(t, err)
	got, err := sub.GetDoubleArray("X_lo_0", 3)
	require.NoError(t, err)
	assert.Equal(t, item.data, got)

	m.UnregisterRestartItem("evaluator")
	path, err = m.WriteRestartFile(dir, 13)
	require.NoError(t, err)
	db, err := ReadFile(path)
	require.NoError(t, err)
	assert.False(t, db.IsDatabase("evaluator"))
}
