package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// OutputFormatter is what every command writes its result or error to
type OutputFormatter interface {
	// SetError sets the encountered error
	SetError(err error)
	// SetCommandResult sets the result of the command execution
	SetCommandResult(result CommandResult)
	// WriteOutput writes the result / error output
	WriteOutput()
}

type CommandResult interface {
	GetOutput() string
}

// InitializeOutputter picks the json or the plain text form based on --json
func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if shouldOutputJSON(cmd) {
		return newJSONOutput()
	}

	return newCLIOutput()
}

func shouldOutputJSON(cmd *cobra.Command) bool {
	flag := cmd.Flag(JSONOutputFlag)

	return flag != nil && flag.Changed
}

type commonOutputFormatter struct {
	errorOutput   error
	commandOutput CommandResult
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputFormatter) SetCommandResult(result CommandResult) {
	c.commandOutput = result
}

type cliOutput struct {
	commonOutputFormatter
}

func newCLIOutput() *cliOutput {
	return &cliOutput{}
}

func (cli *cliOutput) WriteOutput() {
	if cli.errorOutput != nil {
		_, _ = fmt.Fprintln(os.Stderr, cli.errorOutput.Error())

		// return proper error exit code for cli error output
		os.Exit(1)
	}

	if cli.commandOutput != nil {
		_, _ = fmt.Fprintln(os.Stdout, cli.commandOutput.GetOutput())
	}
}

type jsonOutput struct {
	commonOutputFormatter
}

func newJSONOutput() *jsonOutput {
	return &jsonOutput{}
}

func (jo *jsonOutput) WriteOutput() {
	if jo.errorOutput != nil {
		_, _ = fmt.Fprintln(os.Stderr, jo.marshal(struct {
			Err string `json:"error"`
		}{Err: jo.errorOutput.Error()}))

		os.Exit(1)
	}

	if jo.commandOutput != nil {
		_, _ = fmt.Fprintln(os.Stdout, jo.marshal(jo.commandOutput))
	}
}

func (jo *jsonOutput) marshal(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}

	return string(data)
}
