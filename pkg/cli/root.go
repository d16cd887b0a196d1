package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configFile string
	envFile    string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "bookshelf serves a book collection over a small REST API",
	Long: `bookshelf keeps a collection of books in a JSON file and exposes it
over HTTP for listing, filtering, creating, updating and deleting.

Configuration can be provided via flags, environment variables (PORT,
BOOKSHELF_*), a .env file, or a bookshelf.yaml file in the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: bookshelf.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file (default: .env, ignored when missing)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
