package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, OpCreateChannel))

	op, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, OpCreateChannel, op)
}

func TestReturnCodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReturnCode(&buf, ErrBrokenPipe))

	rc, err := ReadReturnCode(&buf)
	require.NoError(t, err)
	assert.Equal(t, ErrBrokenPipe, rc)
	assert.True(t, IsBenignPeerDeath(rc))
}

func TestBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0x02, 0x03}
	require.NoError(t, WriteBytes(&buf, payload))

	out, err := ReadBytes(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestBytesRoundTrip_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBytes(&buf, nil))

	out, err := ReadBytes(&buf)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFixedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	attr := ChannelAttr{
		SubBufSize:  4096,
		SubBufCount: 4,
		Output:      OutputSplice,
		Type:        ChannelTypePerCPU,
	}
	require.NoError(t, WriteFixed(&buf, attr))

	var out ChannelAttr
	require.NoError(t, ReadFixed(&buf, &out))
	assert.Equal(t, attr, out)
}

func TestIsBenignPeerDeath_WrappedAndUnrelated(t *testing.T) {
	assert.False(t, IsBenignPeerDeath(nil))
	assert.False(t, IsBenignPeerDeath(ErrAlreadyExists))
	assert.True(t, IsBenignPeerDeath(ErrPeerExiting))
}
