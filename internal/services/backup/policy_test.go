package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCadence(t *testing.T) {
	c, err := ParseCadence("weekly")
	require.NoError(t, err)
	assert.Equal(t, Weekly, c)

	_, err = ParseCadence("hourly")
	assert.Error(t, err)
}

func TestRetentionDefaults(t *testing.T) {
	cases := []struct {
		cadence Cadence
		keep    int
		want    int
	}{
		{Daily, 0, 7},
		{Daily, 3, 3},
		{Weekly, 0, 30},
		{Weekly, 2, 14},
		{Monthly, 0, 365},
		{Monthly, 2, 60},
	}
	for _, tc := range cases {
		t.Run(string(tc.cadence), func(t *testing.T) {
			assert.Equal(t, tc.want, retentionDays(tc.cadence, tc.keep))
		})
	}
}

// Manual backups are pruned by count; an unset keep retains 180 files
func TestManualKeepIsFileCount(t *testing.T) {
	assert.Equal(t, 180, manualKeep(0))
	assert.Equal(t, 180, manualKeep(-1))
	assert.Equal(t, 5, manualKeep(5))
	assert.Zero(t, retentionDays(Manual, 5))
}
