package account

import (
	"fmt"
	"strings"

	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/types"
)

type AddressResult struct {
	Factory types.Address `json:"factory"`
	Owner   types.Address `json:"owner"`
	Salt    types.Hash    `json:"salt"`
	Address types.Address `json:"address"`
}

func (r *AddressResult) GetOutput() string {
	var buffer strings.Builder

	buffer.WriteString("\n[ACCOUNT ADDRESS]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Factory|%s", r.Factory),
		fmt.Sprintf("Owner|%s", r.Owner),
		fmt.Sprintf("Salt|%s", r.Salt),
		fmt.Sprintf("Address|%s", r.Address),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
