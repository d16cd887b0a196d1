package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dinhlab/supreme-fiesta/pkg/cli/internal/output"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
	"github.com/dinhlab/supreme-fiesta/pkg/store/file"
)

// ValidateOutput is the JSON result of the validate command.
type ValidateOutput struct {
	Config   string `json:"config,omitempty"`
	DataFile string `json:"dataFile,omitempty"`
	Books    int    `json:"books"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the data file",
	Long: `Check the merged configuration and, for the file backend, that the data
file exists, matches the dataset schema and has unique book IDs.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	addStoreFlags(validateCmd.Flags())
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		if jsonOutput {
			_ = output.JSON(w, ValidateOutput{Config: configFile, Error: err.Error()})
		}
		return err
	}

	res := ValidateOutput{Config: cfg.File, Valid: true}
	if cfg.Backend == store.BackendFile {
		res.DataFile = cfg.DataFile
		ds, err := file.New(cfg.DataFile).Load(cmd.Context())
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
			if jsonOutput {
				_ = output.JSON(w, res)
			}
			return err
		}
		res.Books = ds.Len()
	}

	if jsonOutput {
		return output.JSON(w, res)
	}
	fmt.Fprintln(w, "Configuration OK")
	if res.DataFile != "" {
		fmt.Fprintf(w, "Data file %s OK: %d books\n", res.DataFile, res.Books)
	}
	return nil
}
