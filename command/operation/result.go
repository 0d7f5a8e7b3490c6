package operation

import (
	"fmt"
	"strings"

	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/types"
)

type DigestResult struct {
	From   types.Address `json:"from"`
	Digest types.Hash    `json:"digest"`
}

func (r *DigestResult) GetOutput() string {
	var buffer strings.Builder

	buffer.WriteString("\n[OPERATION DIGEST]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("From|%s", r.From),
		fmt.Sprintf("Digest|%s", r.Digest),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}

type SignResult struct {
	Hash types.Hash    `json:"hash"`
	From types.Address `json:"from"`
	Raw  string        `json:"raw"`
}

func (r *SignResult) GetOutput() string {
	var buffer strings.Builder

	buffer.WriteString("\n[SIGNED OPERATION]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Hash|%s", r.Hash),
		fmt.Sprintf("From|%s", r.From),
		fmt.Sprintf("Raw|%s", r.Raw),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}

type SendResult struct {
	Hash types.Hash `json:"hash"`
}

func (r *SendResult) GetOutput() string {
	return fmt.Sprintf("Operation applied: %s", r.Hash)
}

// ReceiptResult is the receipt as served by aa_getOperationReceipt
type ReceiptResult struct {
	OperationHash types.Hash    `json:"operationHash"`
	From          types.Address `json:"from"`
	Nonce         string        `json:"nonce"`
	Paymaster     types.Address `json:"paymaster"`
	Status        string        `json:"status"`
	Failure       string        `json:"failure,omitempty"`
	Reason        string        `json:"revertReason,omitempty"`
	FeeCharged    string        `json:"feeCharged"`
	TokenPulled   *string       `json:"tokenPulled"`
}

func (r *ReceiptResult) GetOutput() string {
	var buffer strings.Builder

	rows := []string{
		fmt.Sprintf("Hash|%s", r.OperationHash),
		fmt.Sprintf("From|%s", r.From),
		fmt.Sprintf("Nonce|%s", r.Nonce),
		fmt.Sprintf("Status|%s", r.Status),
		fmt.Sprintf("Fee Charged|%s", r.FeeCharged),
	}

	if r.Paymaster != types.ZeroAddress {
		rows = append(rows, fmt.Sprintf("Paymaster|%s", r.Paymaster))
	}

	if r.TokenPulled != nil {
		rows = append(rows, fmt.Sprintf("Token Pulled|%s", *r.TokenPulled))
	}

	if r.Failure != "" {
		rows = append(rows,
			fmt.Sprintf("Failure|%s", r.Failure),
			fmt.Sprintf("Reason|%s", r.Reason),
		)
	}

	buffer.WriteString("\n[OPERATION RECEIPT]\n")
	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
