package backup

import (
	"fmt"
	"strings"

	"github.com/notuslabs/notus-aa/command/helper"
)

type BackupResult struct {
	Out     string `json:"out"`
	Entries uint64 `json:"entries"`
}

func (r *BackupResult) GetOutput() string {
	var buffer strings.Builder

	buffer.WriteString("\n[LEDGER BACKUP]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("File|%s", r.Out),
		fmt.Sprintf("Entries|%d", r.Entries),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
