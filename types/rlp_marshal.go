package types

import (
	"math/big"

	"github.com/dogechain-lab/fastrlp"
)

var marshalArenaPool fastrlp.ArenaPool

type RLPMarshaler interface {
	MarshalRLPTo(dst []byte) []byte
}

type marshalRLPFunc func(ar *fastrlp.Arena) *fastrlp.Value

func MarshalRLPTo(obj marshalRLPFunc, dst []byte) []byte {
	ar := marshalArenaPool.Get()
	dst = obj(ar).MarshalTo(dst)
	marshalArenaPool.Put(ar)

	return dst
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return big.NewInt(0)
	}

	return b
}

// MarshalRLP returns the typed envelope: the type byte followed by the rlp list
func (o *Operation) MarshalRLP() []byte {
	return o.MarshalRLPTo(nil)
}

func (o *Operation) MarshalRLPTo(dst []byte) []byte {
	dst = append(dst, EIP712TxType)

	return MarshalRLPTo(o.MarshalRLPWith, dst)
}

// MarshalRLPWith marshals the operation fields (without the type byte) to an RLP value
func (o *Operation) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewUint(o.Nonce))
	vv.Set(arena.NewBigInt(bigOrZero(o.PriorityFee())))
	vv.Set(arena.NewBigInt(bigOrZero(o.MaxFeePerGas)))
	vv.Set(arena.NewUint(o.GasLimit))
	vv.Set(arena.NewBytes(o.To.Bytes()))
	vv.Set(arena.NewBigInt(bigOrZero(o.Value)))
	vv.Set(arena.NewCopyBytes(o.Input))

	// legacy signature slots, unused by this envelope
	vv.Set(arena.NewUint(o.ChainID))
	vv.Set(arena.NewNull())
	vv.Set(arena.NewNull())

	vv.Set(arena.NewUint(o.ChainID))
	vv.Set(arena.NewBytes(o.From.Bytes()))
	vv.Set(arena.NewUint(o.GasPerPubdata))

	if len(o.FactoryDeps) == 0 {
		vv.Set(arena.NewNullArray())
	} else {
		deps := arena.NewArray()
		for _, dep := range o.FactoryDeps {
			deps.Set(arena.NewCopyBytes(dep))
		}

		vv.Set(deps)
	}

	vv.Set(arena.NewCopyBytes(o.Signature))

	if o.PaymasterParams == nil {
		vv.Set(arena.NewNullArray())
	} else {
		pm := arena.NewArray()
		pm.Set(arena.NewBytes(o.PaymasterParams.Paymaster.Bytes()))
		pm.Set(arena.NewCopyBytes(o.PaymasterParams.PaymasterInput))

		vv.Set(pm)
	}

	return vv
}

func (r *Receipt) MarshalRLP() []byte {
	return r.MarshalRLPTo(nil)
}

func (r *Receipt) MarshalRLPTo(dst []byte) []byte {
	return MarshalRLPTo(r.MarshalRLPWith, dst)
}

// MarshalRLPWith marshals a receipt with a specific fastrlp.Arena
func (r *Receipt) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	vv := a.NewArray()

	vv.Set(a.NewBytes(r.OperationHash.Bytes()))
	vv.Set(a.NewBytes(r.From.Bytes()))
	vv.Set(a.NewUint(r.Nonce))
	vv.Set(a.NewBytes(r.Paymaster.Bytes()))
	vv.Set(a.NewUint(uint64(r.Status)))
	vv.Set(a.NewBytes([]byte(r.Failure)))
	vv.Set(a.NewBytes([]byte(r.Reason)))
	vv.Set(a.NewBigInt(bigOrZero(r.FeeCharged)))
	vv.Set(a.NewBigInt(bigOrZero(r.TokenPulled)))

	if len(r.Logs) == 0 {
		vv.Set(a.NewNullArray())
	} else {
		logs := a.NewArray()
		for _, l := range r.Logs {
			logs.Set(l.MarshalRLPWith(a))
		}

		vv.Set(logs)
	}

	return vv
}

func (l *Log) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	v := a.NewArray()
	v.Set(a.NewBytes(l.Address.Bytes()))

	topics := a.NewArray()
	for _, t := range l.Topics {
		topics.Set(a.NewBytes(t.Bytes()))
	}

	v.Set(topics)
	v.Set(a.NewCopyBytes(l.Data))

	return v
}
