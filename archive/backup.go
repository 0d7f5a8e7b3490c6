package archive

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
	"github.com/notuslabs/notus-aa/helper/common"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/rawdb"
)

const progressInterval = 10000

var (
	ErrNoGenesis   = errors.New("database has no genesis")
	ErrInterrupted = errors.New("interrupted by termination signal")
)

// CreateBackup writes every entry of the node database as a binary
// archive to the given path and returns the number of entries written
func CreateBackup(
	logger hclog.Logger,
	db kvdb.KVBatchStorage,
	outPath string,
	overwriteFile bool,
	enableZstdCompression bool,
	zstdLevel int,
) (entries uint64, err error) {
	genesisHash, ok := rawdb.ReadGenesisHash(db)
	if !ok {
		return 0, ErrNoGenesis
	}

	// allow to overwrite the overwrites file only if it's explicitly set
	fileFlag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwriteFile {
		fileFlag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	fp, err := os.OpenFile(outPath, fileFlag, 0644)
	if err != nil {
		return 0, err
	}

	defer func() {
		if closeErr := fp.Close(); err == nil {
			err = closeErr
		}
	}()

	fbuf := bufio.NewWriterSize(fp, 1*1024*1024)

	defer func() {
		if err != nil {
			return
		}

		err = fbuf.Flush()
	}()

	var writeBuf io.Writer

	if enableZstdCompression {
		var zstdWriter *zstd.Encoder

		zstdWriter, err = zstd.NewWriter(fbuf,
			zstd.WithEncoderLevel(
				zstd.EncoderLevelFromZstd(zstdLevel),
			))
		if err != nil {
			return 0, err
		}

		defer func() {
			if err != nil {
				return
			}

			err = zstdWriter.Close()
		}()

		writeBuf = zstdWriter
	} else {
		writeBuf = fbuf
	}

	metadata := &Metadata{
		GenesisHash:    genesisHash,
		OperationCount: rawdb.ReadOperationCount(db),
	}

	if err = writeMetadata(writeBuf, logger, metadata); err != nil {
		return 0, err
	}

	entries, err = exportEntries(logger, db, writeBuf)

	return entries, err
}

// writeMetadata writes the archive header to the writer
func writeMetadata(writer io.Writer, logger hclog.Logger, metadata *Metadata) error {
	// tips: writer.Write() not necessarily write all data, use io.Copy() instead
	_, err := io.Copy(writer, bytes.NewBuffer(metadata.MarshalRLP()))
	if err != nil {
		return err
	}

	logger.Info("Wrote metadata to backup", "genesis", metadata.GenesisHash, "operations", metadata.OperationCount)

	return nil
}

func exportEntries(logger hclog.Logger, db kvdb.KVBatchStorage, writer io.Writer) (uint64, error) {
	signalCh := common.GetTerminationSignalCh()

	iter := db.NewIterator(nil)
	defer iter.Release()

	var (
		total uint64
		buf   []byte
	)

	for iter.Next() {
		select {
		case <-signalCh:
			logger.Info("Caught termination signal, shutting down...")

			return total, ErrInterrupted
		default:
		}

		entry := &Entry{Key: iter.Key(), Value: iter.Value()}

		buf = entry.MarshalRLPTo(buf[:0])
		if _, err := io.Copy(writer, bytes.NewBuffer(buf)); err != nil {
			return total, err
		}

		total++

		if total%progressInterval == 0 {
			logger.Info("entries are written", "total", total)
		}
	}

	if err := iter.Error(); err != nil {
		return total, err
	}

	logger.Info("backup finished", "total", total)

	return total, nil
}
