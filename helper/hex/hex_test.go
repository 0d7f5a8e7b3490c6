package hex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeHex_OddLength(t *testing.T) {
	t.Parallel()

	buf, err := DecodeHex("0x123")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x23}, buf)
}

func TestEncodeUint64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x0", EncodeUint64(0))
	assert.Equal(t, "0x71", EncodeUint64(113))

	v, err := DecodeUint64("0x71")
	assert.NoError(t, err)
	assert.Equal(t, uint64(113), v)
}

func TestBigRoundTrip(t *testing.T) {
	t.Parallel()

	num, ok := new(big.Int).SetString("1000000000000000000", 10)
	assert.True(t, ok)

	str := EncodeBig(num)
	assert.Equal(t, "0xde0b6b3a7640000", str)

	back, err := DecodeHexToBig(str)
	assert.NoError(t, err)
	assert.Equal(t, 0, num.Cmp(back))

	_, err = DecodeHexToBig("0x")
	assert.Error(t, err)
}
