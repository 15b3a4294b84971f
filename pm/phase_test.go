package pm_test

import (
	"testing"

	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/stretchr/testify/assert"
)

func TestPhaseInverse(t *testing.T) {
	t.Parallel()

	for p := pm.Running; p <= pm.ClocksUngated; p++ {
		assert.Equal(t, p, p.Inverse().Inverse(), "%v", p)

		if p.Suspending() {
			assert.Greater(t, p.Inverse(), pm.CPURetired, "%v", p)
		}
	}

	assert.Equal(t, pm.Running, pm.Running.Inverse())
	assert.Equal(t, pm.CPURetired, pm.CPURetired.Inverse())
	assert.Equal(t, pm.ClocksUngated, pm.ClocksGated.Inverse())
}

func TestPhaseCheckpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase pm.Phase
		want  byte
	}{
		{pm.Running, 0},
		{pm.ClocksGated, '0'},
		{pm.PMUSubdomainSaved, '5'},
		{pm.CPURetired, '6'},
		{pm.PMUSubdomainRestored, '5'},
		{pm.CoreDomainRestored, '3'},
		{pm.ClocksUngated, '0'},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.phase.Checkpoint(), "%v", tt.phase)
	}
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LogicDomainSaved", pm.LogicDomainSaved.String())
	assert.Equal(t, "Phase(42)", pm.Phase(42).String())
}
