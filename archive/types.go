package archive

import (
	"fmt"

	"github.com/dogechain-lab/fastrlp"
	"github.com/notuslabs/notus-aa/types"
)

// Metadata heads an archive: the genesis the entries were written under and
// the number of operations applied when it was taken
type Metadata struct {
	GenesisHash    types.Hash
	OperationCount uint64
}

// Entry is one key value pair of the node database
type Entry struct {
	Key   []byte
	Value []byte
}

func (m *Metadata) MarshalRLP() []byte {
	return m.MarshalRLPTo(nil)
}

func (m *Metadata) MarshalRLPTo(dst []byte) []byte {
	return types.MarshalRLPTo(m.MarshalRLPWith, dst)
}

func (m *Metadata) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewBytes(m.GenesisHash.Bytes()))
	vv.Set(arena.NewUint(m.OperationCount))

	return vv
}

func (m *Metadata) UnmarshalRLP(input []byte) error {
	return types.UnmarshalRlp(m.UnmarshalRLPFrom, input)
}

func (m *Metadata) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 2 {
		return fmt.Errorf("%w: expected 2 metadata fields, got %d", types.ErrInvalidRLPLength, len(elems))
	}

	if err = elems[0].GetHash(m.GenesisHash[:]); err != nil {
		return err
	}

	m.OperationCount, err = elems[1].GetUint64()

	return err
}

func (e *Entry) MarshalRLPTo(dst []byte) []byte {
	return types.MarshalRLPTo(e.MarshalRLPWith, dst)
}

func (e *Entry) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewCopyBytes(e.Key))
	vv.Set(arena.NewCopyBytes(e.Value))

	return vv
}

func (e *Entry) UnmarshalRLP(input []byte) error {
	return types.UnmarshalRlp(e.UnmarshalRLPFrom, input)
}

func (e *Entry) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 2 {
		return fmt.Errorf("%w: expected 2 entry fields, got %d", types.ErrInvalidRLPLength, len(elems))
	}

	if e.Key, err = elems[0].GetBytes(nil); err != nil {
		return err
	}

	e.Value, err = elems[1].GetBytes(nil)

	return err
}
