package helper

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/howeyc/gopass"
	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/common"
	"github.com/spf13/cobra"
)

const (
	LocalHostBinding     = "127.0.0.1"
	AllInterfacesBinding = "0.0.0.0"

	DefaultJSONRPCURL = "http://127.0.0.1:8545"
)

var (
	errShutdownBySignal  = errors.New("shutdown by signal channel")
	errShutdownByTimeout = errors.New("shutdown by timeout")
)

// HandleSignals blocks until a termination signal arrives and then runs
// closeFn, giving up after a second signal or five seconds
func HandleSignals(closeFn func(), outputter command.OutputFormatter) error {
	signalCh := common.GetTerminationSignalCh()
	sig := <-signalCh

	closeMessage := fmt.Sprintf("\n[SIGNAL] Caught signal: %v\n", sig)
	closeMessage += "Gracefully shutting down client...\n"

	outputter.SetCommandResult(&messageResult{message: closeMessage})
	outputter.WriteOutput()

	gracefulCh := make(chan struct{})

	go func() {
		if closeFn != nil {
			closeFn()
		}

		close(gracefulCh)
	}()

	select {
	case <-signalCh:
		return errShutdownBySignal
	case <-time.After(5 * time.Second):
		return errShutdownByTimeout
	case <-gracefulCh:
		return nil
	}
}

type messageResult struct {
	message string
}

func (r *messageResult) GetOutput() string {
	return r.message
}

// FormatKV aligns "key|value" rows into two columns
func FormatKV(in []string) string {
	var sb strings.Builder

	w := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', 0)

	for _, row := range in {
		key, value, _ := strings.Cut(row, "|")
		_, _ = fmt.Fprintf(w, "%s\t= %s\n", key, value)
	}

	_ = w.Flush()

	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatList aligns "a|b|c" rows into columns
func FormatList(in []string) string {
	var sb strings.Builder

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	for _, row := range in {
		_, _ = fmt.Fprintln(w, strings.ReplaceAll(row, "|", "\t"))
	}

	_ = w.Flush()

	return strings.TrimSuffix(sb.String(), "\n")
}

// ResolveAddr resolves the passed in TCP address. A missing host is bound to
// defaultIP.
func ResolveAddr(address string, defaultIP string) (*net.TCPAddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse addr '%s': %w", address, err)
	}

	if addr.IP == nil {
		addr.IP = net.ParseIP(defaultIP)
	}

	return addr, nil
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterPprofFlag registers the profiling server flags for all child commands
func RegisterPprofFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.PprofFlag,
		false,
		"enable the pprof server",
	)

	cmd.PersistentFlags().String(
		command.PprofAddressFlag,
		"127.0.0.1:6060",
		"the address the pprof server listens on",
	)
}

// RegisterJSONRPCFlag registers the node endpoint commands talk to
func RegisterJSONRPCFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.JSONRPCFlag,
		DefaultJSONRPCURL,
		"the JSON-RPC endpoint of the node",
	)
}

func GetJSONRPCAddress(cmd *cobra.Command) string {
	return cmd.Flag(command.JSONRPCFlag).Value.String()
}

// SetRequiredFlags marks the given flags as required
func SetRequiredFlags(cmd *cobra.Command, requiredFlags []string) {
	for _, requiredFlag := range requiredFlags {
		_ = cmd.MarkFlagRequired(requiredFlag)
	}
}

// RegisterPrivateKeyFlag registers the hex encoded signing key. Commands
// prompt for it when it is left out.
func RegisterPrivateKeyFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(
		target,
		command.PrivateKeyFlag,
		"",
		"the hex encoded private key signing the operation. Prompted for when omitted",
	)
}

// ReadPrivateKey parses raw, or prompts for the key without echoing it
func ReadPrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	if raw == "" {
		input, err := gopass.GetPasswdPrompt("Enter private key:", true, os.Stdin, os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("unable to read private key: %w", err)
		}

		raw = string(input)
	}

	return crypto.BytesToPrivateKey([]byte(raw))
}
