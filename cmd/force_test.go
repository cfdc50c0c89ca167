package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ibforce/model_problems/ForceBalance"
)

func TestRunForce(t *testing.T) {
	dir := t.TempDir()
	icFile := filepath.Join(dir, "input.yaml")
	fileInput := []byte(`
Title: Test Case
Dim: 2
Rho: 1.
Mu: 0.1
DomainLower: [0, 0]
DomainUpper: [1, 1]
CoarseCells: [8, 8]
Boundaries: [wall, wall]
Structures:
  - ID: 2
    BoxLower: [0.25, 0.25]
    BoxUpper: [0.75, 0.75]
Flow:
  Type: quiescent # Can be uniform, shear or pressure_gradient
  P0: 2.
Dt: 0.05
Steps: 2
RestartInterval: 1
`)
	require.NoError(t, os.WriteFile(icFile, fileInput, 0644))

	mf := &ModelForce{ICFile: icFile, RestartDir: dir, Parallel: 2}
	ip, err := processInput(mf)
	require.NoError(t, err)
	assert.Equal(t, 2, ip.Structures[0].ID)
	assert.Equal(t, 0.05, ip.Dt)
	require.NoError(t, RunForce(mf, ip))
	_, err = os.Stat(filepath.Join(dir, "restore.000002.yaml"))
	assert.NoError(t, err)

	// Resume after the first step
	mf.RestartStep = 1
	ip, err = processInput(mf)
	require.NoError(t, err)
	ip.Steps = 1
	fd, err := ForceBalance.NewForceDriver(ip, mf.Parallel, mf.RestartDir, mf.RestartStep, false)
	require.NoError(t, err)
	require.NoError(t, fd.Run())
	require.Len(t, fd.History[2], 1)
	assert.InDelta(t, 0., fd.History[2][0].FNew.X, 1.e-10)

	_, err = processInput(&ModelForce{})
	assert.Error(t, err)
	_, err = processInput(&ModelForce{ICFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}
