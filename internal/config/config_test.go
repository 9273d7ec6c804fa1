package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tolerance: 1.0e-9
workers: 4
solve_timeout_ms: 250
mandatory_price_eur_mwh: 4000
tie_break:
  epsilon_eur_mwh: 0.01
  seed: 7
capacity:
  file: caps.csv
  default_pt_to_es_mw: 2200
  default_es_to_pt_mw: 2000
`)

	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 1.0e-9, c.Tolerance)
	require.Equal(t, 4, c.Workers)
	require.Equal(t, 4000.0, c.MandatoryPriceEURMWh)
	require.Equal(t, 0.01, c.TieBreak.EpsilonEURMWh)
	require.Equal(t, int64(7), c.TieBreak.Seed)
	require.Equal(t, "caps.csv", c.Capacity.File)
	require.Equal(t, 2200.0, c.Capacity.DefaultPTToESMW)
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")

	c, err := Load(path)
	require.NoError(t, err)

	def := Default()
	require.Equal(t, 2, c.Workers)
	require.Equal(t, def.Tolerance, c.Tolerance)
	require.Equal(t, def.MandatoryPriceEURMWh, c.MandatoryPriceEURMWh)
	require.Equal(t, def.TieBreak, c.TieBreak)
	require.Equal(t, def.Capacity, c.Capacity)
}

// A negative threshold disables price-taking demand; zero means unset
// and falls back to the default.
func TestLoadMandatoryPriceSentinel(t *testing.T) {
	c, err := Load(writeConfig(t, "mandatory_price_eur_mwh: -1\n"))
	require.NoError(t, err)
	require.Equal(t, -1.0, c.MandatoryPriceEURMWh)

	c, err = Load(writeConfig(t, "mandatory_price_eur_mwh: 0\n"))
	require.NoError(t, err)
	require.Equal(t, Default().MandatoryPriceEURMWh, c.MandatoryPriceEURMWh)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero tolerance":    "tolerance: 0\n",
		"workers too low":   "workers: 0\n",
		"workers too high":  "workers: 25\n",
		"zero timeout":      "solve_timeout_ms: 0\n",
		"negative jitter":   "tie_break:\n  epsilon_eur_mwh: -0.001\n",
		"negative capacity": "capacity:\n  default_pt_to_es_mw: -100\n",
		"not yaml":          "workers: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEngineParams(t *testing.T) {
	c := Default()
	c.SolveTimeoutMS = 1500

	p := c.EngineParams()
	require.Equal(t, c.Tolerance, p.Tolerance)
	require.Equal(t, c.MandatoryPriceEURMWh, p.MandatoryPriceEURMWh)
	require.Equal(t, 1500*time.Millisecond, p.SolveTimeout)
}

func TestDefaultCapacities(t *testing.T) {
	c := Default()
	caps := c.DefaultCapacities()
	for h := range caps {
		require.Equal(t, c.Capacity.DefaultPTToESMW, caps[h].PTToESMW)
		require.Equal(t, c.Capacity.DefaultESToPTMW, caps[h].ESToPTMW)
	}
}

func TestDefaultValidates(t *testing.T) {
	def := Default()
	require.NoError(t, def.Validate())
}
