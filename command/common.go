package command

const (
	LogLevelFlag   = "log-level"
	DataDirFlag    = "data-dir"
	ChainFlag      = "chain"
	PrivateKeyFlag = "private-key"
)
