package server

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/jsonrpc"
)

var (
	errDataDirectoryUndefined = errors.New("data directory not defined")
	errInvalidLogLevel        = errors.New("invalid log level")
	errInvalidNamespace       = errors.New("invalid json-rpc namespace")
	errRestoreInMemory        = errors.New("an archive can only be restored into a data directory")
)

func (p *serverParams) initConfigFromFile() error {
	var parseErr error

	if p.rawConfig, parseErr = readConfigFile(p.configPath); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initRawParams() error {
	if p.rawConfig.Telemetry == nil {
		p.rawConfig.Telemetry = &Telemetry{}
	}

	if p.rawConfig.Leveldb == nil {
		p.rawConfig.Leveldb = DefaultConfig().Leveldb
	}

	if err := p.initGenesisConfig(); err != nil {
		return err
	}

	if err := p.initDataDirLocation(); err != nil {
		return err
	}

	if err := p.initLogLevel(); err != nil {
		return err
	}

	if err := p.initNamespaces(); err != nil {
		return err
	}

	p.initCorsOrigins()
	p.initLogFileLocation()

	return p.initAddresses()
}

func (p *serverParams) initGenesisConfig() error {
	var parseErr error

	if p.genesisConfig, parseErr = chain.ImportFromName(
		p.rawConfig.GenesisPath,
	); parseErr != nil {
		return fmt.Errorf("failed to load chain %s: %w", p.rawConfig.GenesisPath, parseErr)
	}

	return nil
}

func (p *serverParams) initDataDirLocation() error {
	if p.inMemory {
		if p.rawConfig.RestoreFile != "" {
			return errRestoreInMemory
		}

		return nil
	}

	if p.rawConfig.DataDir == "" {
		return errDataDirectoryUndefined
	}

	return nil
}

func (p *serverParams) initLogLevel() error {
	if hclog.LevelFromString(p.rawConfig.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, p.rawConfig.LogLevel)
	}

	return nil
}

func (p *serverParams) initNamespaces() error {
	for _, raw := range p.rawConfig.JSONNamespaces {
		if !jsonrpc.IsValidNamespace(raw) {
			return fmt.Errorf("%w: %q", errInvalidNamespace, raw)
		}
	}

	return nil
}

func (p *serverParams) initCorsOrigins() {
	if len(p.corsAllowedOrigins) > 0 {
		return
	}

	if p.rawConfig.Headers != nil {
		p.corsAllowedOrigins = p.rawConfig.Headers.AccessControlAllowOrigins
	}
}

func (p *serverParams) initLogFileLocation() {
	if p.isLogFileLocationSet() {
		p.logFileLocation = p.rawConfig.LogFilePath
	}
}

func (p *serverParams) initAddresses() error {
	if err := p.initPrometheusAddress(); err != nil {
		return err
	}

	return p.initJSONRPCAddress()
}

func (p *serverParams) initPrometheusAddress() error {
	if !p.isPrometheusAddressSet() {
		return nil
	}

	var parseErr error

	if p.prometheusAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.Telemetry.PrometheusAddr,
		helper.AllInterfacesBinding,
	); parseErr != nil {
		return parseErr
	}

	return nil
}

func (p *serverParams) initJSONRPCAddress() error {
	if p.rawConfig.DisableJSONRPC {
		return nil
	}

	var parseErr error

	if p.jsonRPCAddress, parseErr = helper.ResolveAddr(
		p.rawConfig.JSONRPCAddr,
		helper.AllInterfacesBinding,
	); parseErr != nil {
		return parseErr
	}

	return nil
}
