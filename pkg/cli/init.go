package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dinhlab/supreme-fiesta/pkg/cli/templates"
	"github.com/dinhlab/supreme-fiesta/pkg/store/file"
)

var (
	initForce    bool
	initTemplate string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty data file",
	Long: `Create a data file holding an empty collection ({"books": []}) or one of
the starter datasets (--template classics).

An existing file is left alone unless --force is given.`,
	Example: `  bookshelf init
  bookshelf init --template classics
  bookshelf init --data ./data/books.json --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("data", "d", "", "Data file path (default: db.json)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing data file")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", templates.DefaultID, "Starter dataset: "+strings.Join(templates.List(), ", "))
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	seed, err := templates.Get(initTemplate)
	if err != nil {
		return err
	}

	st := file.New(cfg.DataFile)
	if err := st.Init(cmd.Context(), initForce); err != nil {
		if errors.Is(err, file.ErrExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.DataFile)
		}
		return err
	}
	if seed.Len() > 0 {
		if err := st.Save(cmd.Context(), seed); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d books\n", st.Path(), seed.Len())
	return nil
}
