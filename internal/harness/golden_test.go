package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden ledgers pin the exact byte form of a run's verification
// ledger: entry order, claims, failure details, and the
// content-addressed IDs derived from them. Any semantic drift in the
// compiler, the action layer, or the canonical encoder shows up as a
// golden diff.

func TestGoldenDeviceUpgradePass(t *testing.T) {
	sc := loadScenario(t, "device_upgrade_pass.yaml")

	result, err := RunWithGolden(t, New(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestGoldenDeviceUpgradeTimeout(t *testing.T) {
	sc := loadScenario(t, "device_upgrade_timeout.yaml")

	result, err := RunWithGolden(t, New(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass, "the SUT outcome fails; the ledger snapshot is still pinned")
}
