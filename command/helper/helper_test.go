package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKV(t *testing.T) {
	t.Parallel()

	out := FormatKV([]string{
		"Version|1.0.0",
		"Build Time|now",
	})

	assert.Equal(t, "Version    = 1.0.0\nBuild Time = now", out)
}

func TestResolveAddr(t *testing.T) {
	t.Parallel()

	addr, err := ResolveAddr(":8545", AllInterfacesBinding)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8545", addr.String())

	addr, err = ResolveAddr("127.0.0.1:9000", AllInterfacesBinding)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", addr.String())

	_, err = ResolveAddr("nope", LocalHostBinding)
	assert.Error(t, err)
}

func TestReadPrivateKey(t *testing.T) {
	t.Parallel()

	key, err := ReadPrivateKey("0x4646464646464646464646464646464646464646464646464646464646464646")
	require.NoError(t, err)
	assert.NotNil(t, key)

	_, err = ReadPrivateKey("0x1234")
	assert.Error(t, err)
}
