package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dinhlab/supreme-fiesta/pkg/cli/internal/output"
	"github.com/dinhlab/supreme-fiesta/pkg/config"
)

// ConfigEntry is one effective setting and where it came from.
type ConfigEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var configYAML bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show every setting after merging defaults, the config file, the .env
file, environment variables and flags, along with the source of each value.

With --yaml the settings are printed as a config file that can be saved as
bookshelf.yaml.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	addServerFlags(configCmd.Flags())
	addStoreFlags(configCmd.Flags())
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Print as YAML")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if configYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	entries := make([]ConfigEntry, 0, len(config.Keys()))
	for _, key := range config.Keys() {
		v, _ := cfg.Get(key)
		entries = append(entries, ConfigEntry{Key: key, Value: v, Source: cfg.Sources[key]})
	}

	if jsonOutput {
		return output.JSON(w, entries)
	}
	if cfg.File != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", cfg.File)
	}
	tw := output.Table(w)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
	}
	return tw.Flush()
}
