package fdbudget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_ReserveWithinLimit(t *testing.T) {
	b := New(APPS, 10)
	require.NoError(t, b.Reserve(6))
	assert.EqualValues(t, 6, b.Reserved())
}

func TestBudget_ReserveExhausted(t *testing.T) {
	b := New(APPS, 10)
	require.NoError(t, b.Reserve(8))
	err := b.Reserve(4)
	require.Error(t, err)
	assert.EqualValues(t, 8, b.Reserved(), "failed reservation must not partially apply")
}

func TestBudget_ReleaseClampsAtZero(t *testing.T) {
	b := New(APPS, 10)
	require.NoError(t, b.Reserve(2))
	b.Release(5)
	assert.EqualValues(t, 0, b.Reserved())
}

func TestChannelFDs(t *testing.T) {
	assert.EqualValues(t, 10, ChannelFDs(4))
	assert.EqualValues(t, 2, ChannelFDs(0))
}
