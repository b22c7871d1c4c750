package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openswap.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(DefaultMinAtRest), cfg.MinAtRest)
	require.Equal(t, int64(DefaultMinChange), cfg.MinChange)
	require.Equal(t, int64(DefaultEscrowDeposit), cfg.EscrowDeposit)
	require.Equal(t, int64(DefaultRefundDelay), cfg.RefundDelay)
	require.Equal(t, DefaultNetworkName, cfg.NetworkName)

	// The default file was written and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openswap.toml")
	require.NoError(t, os.WriteFile(path, []byte("MinAtRest = 7000000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(7_000_000), cfg.MinAtRest)
	require.Equal(t, int64(DefaultMinChange), cfg.MinChange)
	require.Equal(t, DefaultNetworkName, cfg.NetworkName)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openswap.toml")
	require.NoError(t, os.WriteFile(path, []byte("MinAtRest = -5\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("MinAtRest = 9000000\nEscrowDeposit = 5000000\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		MinAtRest:     DefaultMinAtRest,
		MinChange:     DefaultMinChange,
		EscrowDeposit: DefaultEscrowDeposit,
		RefundDelay:   DefaultRefundDelay,
	}
	require.NoError(t, cfg.Validate())

	broken := *cfg
	broken.RefundDelay = 0
	require.Error(t, broken.Validate())
}
