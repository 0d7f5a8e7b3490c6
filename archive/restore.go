package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
	"github.com/notuslabs/notus-aa/helper/common"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/rawdb"
)

// entries per write batch
const restoreBatchSize = 1024

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd} // zstd Magic number

var (
	ErrNotEmpty        = errors.New("database already holds a genesis")
	ErrMissingMetadata = errors.New("expected metadata in archive but doesn't exist")
)

// RestoreDB reads the entries of an archive into an empty node database
func RestoreDB(log hclog.Logger, db kvdb.KVBatchStorage, filePath string) (*Metadata, error) {
	if _, ok := rawdb.ReadGenesisHash(db); ok {
		return nil, ErrNotEmpty
	}

	fp, err := os.OpenFile(filePath, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	fbuf := bufio.NewReaderSize(fp, 8*1024*1024) // 8MB buffer

	// check whether the file is compressed
	fileMagic, err := fbuf.Peek(len(zstdMagic))
	if err != nil {
		return nil, err
	}

	var readBuf io.Reader

	if bytes.Equal(fileMagic, zstdMagic) {
		zstdReader, err := zstd.NewReader(fbuf)
		if err != nil {
			return nil, err
		}
		defer zstdReader.Close()

		log.Info("archive is compressed with zstd")

		readBuf = zstdReader
	} else {
		readBuf = fbuf
	}

	return importEntries(log, db, newEntryStream(readBuf))
}

// importEntries scans all entries from stream and writes them to db
func importEntries(log hclog.Logger, db kvdb.KVBatchStorage, stream *entryStream) (*Metadata, error) {
	shutdownCh := common.GetTerminationSignalCh()

	metadata, err := stream.getMetadata()
	if err != nil {
		return nil, err
	}

	if metadata == nil {
		return nil, ErrMissingMetadata
	}

	var (
		batch   = db.NewBatch()
		pending int
		total   uint64
	)

	for {
		select {
		case <-shutdownCh:
			return nil, ErrInterrupted
		default:
		}

		entry, err := stream.nextEntry()
		if err != nil {
			return nil, err
		}

		// end of stream
		if entry == nil {
			break
		}

		if err := batch.Set(entry.Key, entry.Value); err != nil {
			return nil, err
		}

		pending++
		total++

		if pending == restoreBatchSize {
			if err := batch.Write(); err != nil {
				return nil, err
			}

			log.Info("entries imported", "total", total)

			batch, pending = db.NewBatch(), 0
		}
	}

	if err := batch.Write(); err != nil {
		return nil, err
	}

	genesisHash, ok := rawdb.ReadGenesisHash(db)
	if !ok || genesisHash != metadata.GenesisHash {
		return nil, fmt.Errorf("restored genesis %s does not match the archive genesis %s", genesisHash, metadata.GenesisHash)
	}

	log.Info("archive restored", "entries", total, "operations", metadata.OperationCount)

	return metadata, nil
}

// entryStream parses RLP-encoded entries from stream and consumes the used bytes
type entryStream struct {
	input  io.Reader
	buffer []byte
}

func newEntryStream(input io.Reader) *entryStream {
	return &entryStream{
		input:  input,
		buffer: make([]byte, 0, 1024),
	}
}

// getMetadata consumes some bytes from input and returns parsed Metadata
func (b *entryStream) getMetadata() (*Metadata, error) {
	size, err := b.loadRLPArray()
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return nil, nil
	}

	metadata := &Metadata{}
	if err := metadata.UnmarshalRLP(b.buffer[:size]); err != nil {
		return nil, err
	}

	return metadata, nil
}

// nextEntry consumes some bytes from input and returns parsed entry
func (b *entryStream) nextEntry() (*Entry, error) {
	size, err := b.loadRLPArray()
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return nil, nil
	}

	entry := &Entry{}
	if err := entry.UnmarshalRLP(b.buffer[:size]); err != nil {
		return nil, err
	}

	return entry, nil
}

// loadRLPArray loads RLP encoded array from input to buffer
func (b *entryStream) loadRLPArray() (uint64, error) {
	prefix, err := b.loadRLPPrefix()
	if errors.Is(err, io.EOF) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	// read information from RLP array header
	headerSize, payloadSize, err := b.loadPrefixSize(1, prefix)
	if err != nil {
		return 0, err
	}

	if err = b.loadPayload(headerSize, payloadSize); err != nil {
		return 0, err
	}

	return headerSize + payloadSize, nil
}

// loadRLPPrefix loads first byte of RLP encoded data from input
func (b *entryStream) loadRLPPrefix() (byte, error) {
	b.reserveCap(1)
	buf := b.buffer[:1]

	if _, err := io.ReadFull(b.input, buf); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// loadPrefixSize loads array's size from input and return RLP header size and payload size
func (b *entryStream) loadPrefixSize(offset uint64, prefix byte) (uint64, uint64, error) {
	switch {
	case prefix >= 0xc0 && prefix <= 0xf7:
		// an array whose size is less than 56
		return 1, uint64(prefix - 0xc0), nil
	case prefix >= 0xf8:
		// size of the data representing the size of payload
		payloadSizeSize := uint64(prefix - 0xf7)

		b.reserveCap(offset + payloadSizeSize)
		payloadSizeBytes := b.buffer[offset : offset+payloadSizeSize]

		if _, err := io.ReadFull(b.input, payloadSizeBytes); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, 0, io.ErrUnexpectedEOF
			}

			return 0, 0, err
		}

		payloadSize := new(big.Int).SetBytes(payloadSizeBytes).Uint64()

		return payloadSizeSize + 1, payloadSize, nil
	}

	return 0, 0, errors.New("expected array but got bytes")
}

// loadPayload loads payload data from stream and store to buffer
func (b *entryStream) loadPayload(offset uint64, size uint64) error {
	b.reserveCap(offset + size)
	buf := b.buffer[offset : offset+size]

	if _, err := io.ReadFull(b.input, buf); err != nil {
		return err
	}

	return nil
}

// reserveCap makes sure the internal buffer has given size
func (b *entryStream) reserveCap(size uint64) {
	if diff := int64(size) - int64(cap(b.buffer)); diff > 0 {
		b.buffer = append(b.buffer[:cap(b.buffer)], make([]byte, diff)...)
	} else {
		b.buffer = b.buffer[:size]
	}
}
