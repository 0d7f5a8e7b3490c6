package runtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopContract struct{}

func (noopContract) Run(Host, *Call) ([]byte, error) {
	return nil, nil
}

func TestRevertError(t *testing.T) {
	t.Parallel()

	err := Revert("ERC20: insufficient allowance %d", 5)

	assert.True(t, errors.Is(err, ErrExecutionReverted))
	assert.True(t, errors.Is(fmt.Errorf("batch call 1: %w", err), ErrExecutionReverted))
	assert.Equal(t, "execution reverted: ERC20: insufficient allowance 5", err.Error())

	var revert *RevertError

	require.True(t, errors.As(err, &revert))
	assert.Equal(t, "ERC20: insufficient allowance 5", revert.Reason)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	code := make([]byte, 32)
	code[0] = 0x1

	hash, err := r.Register("noop", code, noopContract{})
	require.NoError(t, err)

	c, ok := r.Get(hash)
	assert.True(t, ok)
	assert.NotNil(t, c)
	assert.Equal(t, "noop", r.Name(hash))
	assert.Equal(t, map[string]types.Hash{"noop": hash}, r.Hashes())

	stored, ok := r.Bytecode(hash)
	assert.True(t, ok)
	assert.Equal(t, code, stored)

	_, ok = r.DefaultAccount()
	assert.False(t, ok)

	// same fingerprint twice
	_, err = r.Register("other", code, noopContract{})
	assert.Error(t, err)

	// not a valid bytecode
	_, err = r.Register("short", []byte{0x1}, noopContract{})
	assert.Error(t, err)

	_, ok = r.Get(types.ZeroHash)
	assert.False(t, ok)
}

func TestCall_Selector(t *testing.T) {
	t.Parallel()

	assert.Nil(t, (&Call{Input: []byte{1, 2}}).Selector())
	assert.Equal(t, []byte{1, 2, 3, 4}, (&Call{Input: []byte{1, 2, 3, 4, 5}}).Selector())
}
