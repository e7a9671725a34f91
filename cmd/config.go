package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rawsim/rawsim/sim"
)

var configDefaults bool // print built-in defaults instead of the loaded file

// configCmd prints the effective configuration as YAML
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective warehouse configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := sim.DefaultConfig()
		if !configDefaults {
			cfg = loadConfig()
		}
		out, err := renderConfig(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	},
}

// renderConfig encodes cfg in the same layout LoadConfig accepts.
func renderConfig(cfg sim.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

func init() {
	configCmd.Flags().BoolVar(&configDefaults, "defaults", false, "Print built-in defaults and ignore --config")
}
