package ports

// ConfigSourcePort is the pipeline runner's key-value configuration
// source (e.g. workflow inputs exposed through the environment).
type ConfigSourcePort interface {
	Input(name string) (string, bool)
}

// ResultSinkPort is the pipeline runner's key-value result sink.
// Implementations must tolerate running outside a pipeline by logging
// instead of failing.
type ResultSinkPort interface {
	SetOutput(name string, value string) error
}
