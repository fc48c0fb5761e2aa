package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Consumer: config.ConsumerEndpoints{
			TracePath:    filepath.Join(dir, "trace"),
			Socket64Path: filepath.Join(dir, "consumer-64.sock"),
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestRunPrechecks_PassesWithWritableTraceDir(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, runPrechecks(cfg))
}

func TestRunPrechecks_FailsWhenConsumerSocketDirMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Consumer.Socket64Path = "/nonexistent-lttng-test-dir/consumer.sock"
	assert.Error(t, runPrechecks(cfg))
}

func TestListenApps_RemovesStaleSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.sock")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	ln, err := listenApps(path)
	require.NoError(t, err)
	defer ln.Close()

	assert.Equal(t, "unix", ln.Addr().Network())
}
