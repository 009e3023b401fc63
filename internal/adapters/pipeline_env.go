package adapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"extractor-installer/internal/ports"
)

// PipelineEnvAdapter bridges the pipeline runner's key-value surfaces:
// workflow inputs exposed as INPUT_<NAME> environment variables, and
// the result sink behind the GITHUB_OUTPUT file. Outside a pipeline the
// adapter degrades to logging results instead of writing them.
type PipelineEnvAdapter struct {
	lookupEnv func(string) (string, bool)
	outputVar string
}

func NewPipelineEnvAdapter() PipelineEnvAdapter {
	return PipelineEnvAdapter{
		lookupEnv: os.LookupEnv,
		outputVar: "GITHUB_OUTPUT",
	}
}

// Input reads a workflow input. Dashes and spaces in input names map to
// underscores in the environment variable, as the runner does.
func (p PipelineEnvAdapter) Input(name string) (string, bool) {
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(name)))
	value, ok := p.lookupEnv("INPUT_" + normalized)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	return trimmed, trimmed != ""
}

// SetOutput appends a key=value line to the runner's output file when
// one is configured, and logs it otherwise.
func (p PipelineEnvAdapter) SetOutput(name string, value string) error {
	sanitized := strings.ReplaceAll(value, "\n", " ")
	path, ok := p.lookupEnv(p.outputVar)
	if !ok || strings.TrimSpace(path) == "" {
		log.Info().Str("name", name).Str("value", sanitized).Msg("pipeline output")
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open pipeline output file: %w", err)
	}
	defer file.Close()
	if _, err := fmt.Fprintf(file, "%s=%s\n", name, sanitized); err != nil {
		return fmt.Errorf("failed to write pipeline output: %w", err)
	}
	return nil
}

var _ ports.ConfigSourcePort = PipelineEnvAdapter{}
var _ ports.ResultSinkPort = PipelineEnvAdapter{}
