package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"extractor-installer/internal/adapters"
	"extractor-installer/internal/ports"
)

// pipelineInputs is the fallback configuration source when running
// inside a pipeline runner: explicit flags win, then viper (env and
// config file), then the runner's own input surface.
var pipelineInputs ports.ConfigSourcePort = adapters.NewPipelineEnvAdapter()

// flagChanged reports whether the user set the flag explicitly. A nil
// command (as in tests) never counts as changed.
func flagChanged(cmd *cobra.Command, flagName string) bool {
	if cmd == nil {
		return false
	}
	return cmd.Flags().Changed(flagName)
}

func resolveString(cmd *cobra.Command, flagValue string, viperKey string, flagName string) string {
	if flagChanged(cmd, flagName) {
		return flagValue
	}
	if viper.IsSet(viperKey) && viper.GetString(viperKey) != "" {
		return viper.GetString(viperKey)
	}
	if value, ok := pipelineInputs.Input(viperKey); ok {
		return value
	}
	return flagValue
}

func resolveBool(cmd *cobra.Command, flagValue bool, viperKey string, flagName string) bool {
	if flagChanged(cmd, flagName) {
		return flagValue
	}
	if viper.IsSet(viperKey) {
		return viper.GetBool(viperKey)
	}
	if value, ok := pipelineInputs.Input(viperKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return flagValue
}

func resolveInt(cmd *cobra.Command, flagValue int, viperKey string, flagName string) int {
	if flagChanged(cmd, flagName) {
		return flagValue
	}
	if viper.IsSet(viperKey) && viper.GetInt(viperKey) != 0 {
		return viper.GetInt(viperKey)
	}
	if value, ok := pipelineInputs.Input(viperKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return flagValue
}
