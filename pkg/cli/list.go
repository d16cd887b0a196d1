package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dinhlab/supreme-fiesta/pkg/catalog"
	"github.com/dinhlab/supreme-fiesta/pkg/cli/internal/flags"
	"github.com/dinhlab/supreme-fiesta/pkg/cli/internal/output"
	"github.com/dinhlab/supreme-fiesta/pkg/cli/internal/parse"
	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/query"
)

var (
	listWhere flags.StringSlice
	listPage  int
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books from the data file",
	Long: `List books straight from the data file, with the same filters and
pagination as GET /books.`,
	Example: `  bookshelf list
  bookshelf list --where language=English --limit 5
  bookshelf list --where author="Jane Austen" --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().Var(&listWhere, "where", "Filter as field=value; repeatable (author, country, language, title)")
	listCmd.Flags().IntVar(&listPage, "page", query.DefaultPage, "Page number")
	listCmd.Flags().IntVar(&listLimit, "limit", query.DefaultLimit, "Books per page")
	addStoreFlags(listCmd.Flags())
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pairs, err := parse.Pairs(listWhere)
	if err != nil {
		return err
	}
	values := url.Values{}
	for k, v := range pairs {
		values.Set(k, v)
	}
	values.Set(query.ParamPage, strconv.Itoa(listPage))
	values.Set(query.ParamLimit, strconv.Itoa(listLimit))
	q, err := query.Parse(values)
	if err != nil {
		return err
	}

	st, err := openStore(cmd.Context(), cfg, logging.Nop())
	if err != nil {
		return err
	}
	books, err := catalog.New(st).List(cmd.Context(), q)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(w, books)
	}
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found")
		return nil
	}

	tw := output.Table(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tLANGUAGE\tYEAR\tPAGES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			b.ID, output.Truncate(b.Title, 40), output.Truncate(b.Author, 30), b.Language, b.Year, b.Pages)
	}
	return tw.Flush()
}
