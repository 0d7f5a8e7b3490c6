package genesis

type GenesisResult struct {
	Message string `json:"message"`
}

func (r *GenesisResult) GetOutput() string {
	return r.Message
}
