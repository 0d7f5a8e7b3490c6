package chain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/notuslabs/notus-aa/types"
)

// Chain is the network description a node is started from
type Chain struct {
	Name    string   `json:"name"`
	Genesis *Genesis `json:"genesis"`
	Params  *Params  `json:"params"`
}

// Params are the parameters of the ledger that never change once it runs
type Params struct {
	ChainID uint64 `json:"chainID"`

	// Operator collects the fees charged to every operation
	Operator types.Address `json:"operator"`
}

func (c *Chain) validate() error {
	if c.Params == nil {
		return fmt.Errorf("chain %q has no params", c.Name)
	}

	if c.Params.ChainID == 0 {
		return fmt.Errorf("chain %q has a zero chain id", c.Name)
	}

	if c.Genesis == nil {
		return fmt.Errorf("chain %q has no genesis", c.Name)
	}

	return c.Genesis.validate()
}

// Import decodes a chain from json
func Import(data []byte) (*Chain, error) {
	chain := new(Chain)
	if err := json.Unmarshal(data, chain); err != nil {
		return nil, err
	}

	if err := chain.validate(); err != nil {
		return nil, err
	}

	return chain, nil
}

// ImportFromFile imports a chain from a filepath
func ImportFromFile(filename string) (*Chain, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Import(data)
}

// ImportFromName returns a preset chain by name, or the chain at that path
func ImportFromName(name string) (*Chain, error) {
	if preset, ok := presets[name]; ok {
		return preset(), nil
	}

	return ImportFromFile(name)
}

// Export writes the chain as indented json
func (c *Chain) Export(filename string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0600)
}
