package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_Checksum(t *testing.T) {
	t.Parallel()

	cases := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, c := range cases {
		addr := StringToAddress(strings.ToLower(c))
		assert.Equal(t, c, addr.String())
	}
}

func TestAddress_JSON(t *testing.T) {
	t.Parallel()

	addr := StringToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	data, err := json.Marshal(addr)
	assert.NoError(t, err)

	var back Address

	assert.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, addr, back)

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &back))
}

func TestBytesToHash_LeftPads(t *testing.T) {
	t.Parallel()

	h := BytesToHash([]byte{0x01, 0x02})

	assert.Equal(t, byte(0x01), h[30])
	assert.Equal(t, byte(0x02), h[31])
	assert.Equal(t, StringToAddress("0x01").Hash(), BytesToHash([]byte{1}))
}
