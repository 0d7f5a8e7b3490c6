package jsonrpc

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/notuslabs/notus-aa/types"
)

type receipt struct {
	OperationHash types.Hash    `json:"operationHash"`
	From          types.Address `json:"from"`
	Nonce         argUint64     `json:"nonce"`
	Paymaster     types.Address `json:"paymaster"`
	Status        argUint64     `json:"status"`
	Failure       string        `json:"failure,omitempty"`
	Reason        string        `json:"revertReason,omitempty"`
	FeeCharged    argBig        `json:"feeCharged"`
	TokenPulled   *argBig       `json:"tokenPulled"`
	Logs          []*log        `json:"logs"`
}

type log struct {
	Address types.Address `json:"address"`
	Topics  []types.Hash  `json:"topics"`
	Data    argBytes      `json:"data"`
}

func toReceipt(r *types.Receipt) *receipt {
	res := &receipt{
		OperationHash: r.OperationHash,
		From:          r.From,
		Nonce:         argUint64(r.Nonce),
		Paymaster:     r.Paymaster,
		Status:        argUint64(r.Status),
		Failure:       r.Failure,
		Reason:        r.Reason,
		Logs:          make([]*log, 0, len(r.Logs)),
	}

	if r.FeeCharged != nil {
		res.FeeCharged = argBig(*r.FeeCharged)
	}

	if r.TokenPulled != nil && r.TokenPulled.Sign() > 0 {
		res.TokenPulled = argBigPtr(r.TokenPulled)
	}

	for _, l := range r.Logs {
		res.Logs = append(res.Logs, &log{
			Address: l.Address,
			Topics:  l.Topics,
			Data:    argBytes(l.Data),
		})
	}

	return res
}

// callArgs is the argument of aa_call
type callArgs struct {
	From  *types.Address `json:"from"`
	To    *types.Address `json:"to"`
	Data  *argBytes      `json:"data"`
	Input *argBytes      `json:"input"`
}

func (c *callArgs) input() []byte {
	if c.Input != nil {
		return *c.Input
	}

	if c.Data != nil {
		return *c.Data
	}

	return nil
}

type argBig big.Int

func argBigPtr(b *big.Int) *argBig {
	v := argBig(*b)

	return &v
}

func (a *argBig) UnmarshalText(input []byte) error {
	buf, err := decodeToHex(input)
	if err != nil {
		return err
	}

	b := new(big.Int)
	b.SetBytes(buf)
	*a = argBig(*b)

	return nil
}

func (a argBig) MarshalText() ([]byte, error) {
	b := (*big.Int)(&a)

	return []byte("0x" + b.Text(16)), nil
}

type argUint64 uint64

func argUintPtr(n uint64) *argUint64 {
	v := argUint64(n)

	return &v
}

func (u argUint64) MarshalText() ([]byte, error) {
	buf := make([]byte, 2, 10)
	copy(buf, `0x`)
	buf = strconv.AppendUint(buf, uint64(u), 16)

	return buf, nil
}

func (u *argUint64) UnmarshalText(input []byte) error {
	str := strings.TrimPrefix(string(input), "0x")

	num, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return err
	}

	*u = argUint64(num)

	return nil
}

type argBytes []byte

func argBytesPtr(b []byte) *argBytes {
	bb := argBytes(b)

	return &bb
}

func (b argBytes) MarshalText() ([]byte, error) {
	return encodeToHex(b), nil
}

func (b *argBytes) UnmarshalText(input []byte) error {
	hh, err := decodeToHex(input)
	if err != nil {
		return err
	}

	aux := make([]byte, len(hh))
	copy(aux, hh)
	*b = aux

	return nil
}

func decodeToHex(b []byte) ([]byte, error) {
	str := strings.TrimPrefix(string(b), "0x")
	if len(str)%2 != 0 {
		str = "0" + str
	}

	return hex.DecodeString(str)
}

func encodeToHex(b []byte) []byte {
	return []byte("0x" + hex.EncodeToString(b))
}
