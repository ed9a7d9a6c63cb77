package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.Equal(t, "basket-local", cfg.NetworkName)
	require.Equal(t, "local", cfg.Environment)

	// The default file is written so a second load round-trips it.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
RPCAddress = "0.0.0.0:9000"
DataDir = "/var/lib/basketd"
NetworkName = "basket-testnet"
Environment = "staging"
OwnerAddress = "bkt1qyqszqgpqyqszqgpqyqszqgpqyqszqgpjapcgw"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.RPCAddress)
	require.Equal(t, "/var/lib/basketd", cfg.DataDir)
	require.Equal(t, "basket-testnet", cfg.NetworkName)
	require.Equal(t, "staging", cfg.Environment)
	require.NotEmpty(t, cfg.OwnerAddress)
}

func TestLoadFillsMissingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`DataDir = "/tmp/basketd"`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.Equal(t, "basket-local", cfg.NetworkName)
	require.Equal(t, "/tmp/basketd", cfg.DataDir)
}
