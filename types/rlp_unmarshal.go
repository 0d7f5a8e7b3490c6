package types

import (
	"errors"
	"fmt"

	"github.com/dogechain-lab/fastrlp"
)

const operationFieldCount = 16

var (
	ErrInvalidTxType    = errors.New("invalid operation envelope type")
	ErrInvalidRLPLength = errors.New("incorrect number of rlp elements")
	ErrInvalidAddress   = errors.New("invalid address length")
)

type RLPUnmarshaler interface {
	UnmarshalRLP(input []byte) error
}

var unmarshalParserPool fastrlp.ParserPool

type unmarshalRLPFunc func(p *fastrlp.Parser, v *fastrlp.Value) error

func UnmarshalRlp(obj unmarshalRLPFunc, input []byte) error {
	pr := unmarshalParserPool.Get()
	defer unmarshalParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return obj(pr, v)
}

// UnmarshalRLP decodes a typed envelope produced by MarshalRLP
func (o *Operation) UnmarshalRLP(input []byte) error {
	if len(input) == 0 || input[0] != EIP712TxType {
		return ErrInvalidTxType
	}

	return UnmarshalRlp(o.UnmarshalRLPFrom, input[1:])
}

func getAddress(v *fastrlp.Value, dst *Address) error {
	buf, err := v.GetBytes(nil)
	if err != nil {
		return err
	}

	if len(buf) != AddressLength {
		return fmt.Errorf("%w: %d", ErrInvalidAddress, len(buf))
	}

	copy(dst[:], buf)

	return nil
}

// UnmarshalRLPFrom unmarshals an operation body from an already parsed value
func (o *Operation) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != operationFieldCount {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRLPLength, operationFieldCount, len(elems))
	}

	if o.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}

	o.MaxPriorityFeePerGas = bigOrZero(nil)
	if err = elems[1].GetBigInt(o.MaxPriorityFeePerGas); err != nil {
		return err
	}

	o.MaxFeePerGas = bigOrZero(nil)
	if err = elems[2].GetBigInt(o.MaxFeePerGas); err != nil {
		return err
	}

	if o.GasLimit, err = elems[3].GetUint64(); err != nil {
		return err
	}

	if err = getAddress(elems[4], &o.To); err != nil {
		return err
	}

	o.Value = bigOrZero(nil)
	if err = elems[5].GetBigInt(o.Value); err != nil {
		return err
	}

	if o.Input, err = elems[6].GetBytes(o.Input[:0]); err != nil {
		return err
	}

	// elems[7..9] are the legacy signature slots
	if o.ChainID, err = elems[10].GetUint64(); err != nil {
		return err
	}

	if err = getAddress(elems[11], &o.From); err != nil {
		return err
	}

	if o.GasPerPubdata, err = elems[12].GetUint64(); err != nil {
		return err
	}

	deps, err := elems[13].GetElems()
	if err != nil {
		return err
	}

	o.FactoryDeps = nil

	for _, dep := range deps {
		buf, err := dep.GetBytes(nil)
		if err != nil {
			return err
		}

		o.FactoryDeps = append(o.FactoryDeps, buf)
	}

	if o.Signature, err = elems[14].GetBytes(o.Signature[:0]); err != nil {
		return err
	}

	pm, err := elems[15].GetElems()
	if err != nil {
		return err
	}

	switch len(pm) {
	case 0:
		o.PaymasterParams = nil
	case 2:
		params := &PaymasterParams{}
		if err = getAddress(pm[0], &params.Paymaster); err != nil {
			return err
		}

		if params.PaymasterInput, err = pm[1].GetBytes(nil); err != nil {
			return err
		}

		o.PaymasterParams = params
	default:
		return fmt.Errorf("%w: paymaster params with %d elements", ErrInvalidRLPLength, len(pm))
	}

	return nil
}

func (r *Receipt) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(r.UnmarshalRLPFrom, input)
}

func getHash(v *fastrlp.Value, dst *Hash) error {
	return v.GetHash(dst[:])
}

// UnmarshalRLPFrom unmarshals a receipt from an already parsed value
func (r *Receipt) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 10 {
		return fmt.Errorf("%w: expected 10, got %d", ErrInvalidRLPLength, len(elems))
	}

	if err = getHash(elems[0], &r.OperationHash); err != nil {
		return err
	}

	if err = getAddress(elems[1], &r.From); err != nil {
		return err
	}

	if r.Nonce, err = elems[2].GetUint64(); err != nil {
		return err
	}

	if err = getAddress(elems[3], &r.Paymaster); err != nil {
		return err
	}

	status, err := elems[4].GetUint64()
	if err != nil {
		return err
	}

	r.Status = ReceiptStatus(status)

	failure, err := elems[5].GetBytes(nil)
	if err != nil {
		return err
	}

	r.Failure = string(failure)

	reason, err := elems[6].GetBytes(nil)
	if err != nil {
		return err
	}

	r.Reason = string(reason)

	r.FeeCharged = bigOrZero(nil)
	if err = elems[7].GetBigInt(r.FeeCharged); err != nil {
		return err
	}

	r.TokenPulled = bigOrZero(nil)
	if err = elems[8].GetBigInt(r.TokenPulled); err != nil {
		return err
	}

	logs, err := elems[9].GetElems()
	if err != nil {
		return err
	}

	r.Logs = make([]*Log, 0, len(logs))

	for _, elem := range logs {
		log := &Log{}
		if err := log.UnmarshalRLPFrom(p, elem); err != nil {
			return err
		}

		r.Logs = append(r.Logs, log)
	}

	return nil
}

func (l *Log) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) < 3 {
		return fmt.Errorf("%w: log with %d elements", ErrInvalidRLPLength, len(elems))
	}

	if err := getAddress(elems[0], &l.Address); err != nil {
		return err
	}

	topicElems, err := elems[1].GetElems()
	if err != nil {
		return err
	}

	l.Topics = make([]Hash, len(topicElems))

	for i, topic := range topicElems {
		if err := getHash(topic, &l.Topics[i]); err != nil {
			return err
		}
	}

	if l.Data, err = elems[2].GetBytes(l.Data[:0]); err != nil {
		return err
	}

	return nil
}
