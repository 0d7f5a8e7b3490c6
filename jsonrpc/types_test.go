package jsonrpc

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTypes_Encode(t *testing.T) {
	t.Parallel()

	// decode basic types
	cases := []struct {
		obj interface{}
		dec interface{}
		res string
	}{
		{
			argBig(*big.NewInt(10)),
			&argBig{},
			"0xa",
		},
		{
			argUint64(10),
			argUintPtr(0),
			"0xa",
		},
		{
			argBytes([]byte{0x1, 0x2}),
			&argBytes{},
			"0x0102",
		},
	}

	for _, c := range cases {
		res, err := json.Marshal(c.obj)
		assert.NoError(t, err)
		assert.Equal(t, strings.Trim(string(res), "\""), c.res)
		assert.NoError(t, json.Unmarshal(res, c.dec))
	}
}

func TestArgBytes_InvalidHex(t *testing.T) {
	t.Parallel()

	var b argBytes

	assert.Error(t, json.Unmarshal([]byte(`"0xzz"`), &b))
}

func TestDecode_CallArgs(t *testing.T) {
	t.Parallel()

	var args callArgs

	require.NoError(t, json.Unmarshal([]byte(`{
		"to": "0x0000000000000000000000000000000000000001",
		"data": "0x01"
	}`), &args))

	assert.Nil(t, args.From)
	assert.Equal(t, types.StringToAddress("0x01"), *args.To)
	assert.Equal(t, []byte{0x01}, args.input())

	// input wins over data
	require.NoError(t, json.Unmarshal([]byte(`{"input": "0x0203"}`), &args))
	assert.Equal(t, []byte{0x02, 0x03}, args.input())
}

func TestToReceipt(t *testing.T) {
	t.Parallel()

	r := toReceipt(&types.Receipt{
		OperationHash: types.StringToHash("0x01"),
		From:          types.StringToAddress("0x02"),
		Nonce:         3,
		Status:        types.ReceiptFailed,
		Failure:       "SubcallFailure",
		Reason:        "sub-call 1 reverted",
		FeeCharged:    big.NewInt(250),
		TokenPulled:   big.NewInt(0),
		Logs: []*types.Log{
			{Address: types.StringToAddress("0x04"), Data: []byte{0xff}},
		},
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &res))

	assert.Equal(t, "0x3", res["nonce"])
	assert.Equal(t, "0x0", res["status"])
	assert.Equal(t, "0xfa", res["feeCharged"])
	assert.Equal(t, "sub-call 1 reverted", res["revertReason"])
	assert.Nil(t, res["tokenPulled"])
	assert.Len(t, res["logs"], 1)
}
