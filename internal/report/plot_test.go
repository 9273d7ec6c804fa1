package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// One cleared hour and 23 failed ones: the chart must still render, with
// the failed hours as empty slots.
func TestWritePriceChart(t *testing.T) {
	_, res := reportDay(t)
	path := filepath.Join(t.TempDir(), "prices.png")

	require.NoError(t, WritePriceChart(path, res))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
