package backup

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/notuslabs/notus-aa/archive"
	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/helper/common"
	"github.com/notuslabs/notus-aa/server"
)

const (
	outFlag       = "out"
	overwriteFlag = "overwrite"
	zstdFlag      = "zstd"
	zstdLevelFlag = "zstd-level"
)

var (
	params = &backupParams{}
)

var errNoLedger = errors.New("no ledger found in data directory")

type backupParams struct {
	dataDir   string
	out       string
	overwrite bool
	zstd      bool
	zstdLevel int

	entries uint64
}

func (p *backupParams) getRequiredFlags() []string {
	return []string{
		outFlag,
	}
}

func (p *backupParams) validateFlags() error {
	if !common.FileExists(filepath.Join(p.dataDir, "ledger")) {
		return fmt.Errorf("%w: %s", errNoLedger, p.dataDir)
	}

	return nil
}

// createBackup dumps a stopped node's ledger. Leveldb holds a lock on the
// directory so this fails while the node runs.
func (p *backupParams) createBackup(logger hclog.Logger) error {
	db, err := server.NewLevelDBBuilder(logger, nil, p.dataDir).Build()
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	defer db.Close()

	p.entries, err = archive.CreateBackup(logger, db, p.out, p.overwrite, p.zstd, p.zstdLevel)

	return err
}

func (p *backupParams) getResult() command.CommandResult {
	return &BackupResult{
		Out:     p.out,
		Entries: p.entries,
	}
}
