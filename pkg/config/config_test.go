package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalConfig(t *testing.T) {
	cfg, err := UnmarshalConfig(defaultConfigBytes)
	require.NoError(t, err)

	assert.Equal(t, uint64(4096), cfg.Channel.SubBufSize)
	assert.Equal(t, uint32(2), cfg.Protocol.Major)
	assert.Equal(t, "/var/lib/lttng/trace", cfg.Consumer.TracePath)
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := UnmarshalConfig(defaultConfigBytes)
	require.NoError(t, err)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, OutputModeSplice, cfg.Channel.Output)
}

func TestConfig_Validate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	assert.Error(t, err)
}
