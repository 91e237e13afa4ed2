package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fung04/ucsconv/pkg/browse"
	"github.com/fung04/ucsconv/pkg/convert"
	"github.com/fung04/ucsconv/pkg/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse <archive.ucs|file.conf>",
	Short: "Explore a converted configuration in an interactive shell",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	conv := convert.New(opts, slog.Default())

	res, err := conv.ConvertPath(args[0])
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %v\n", f)
	}

	doc := &store.Document{Name: res.Name, Tree: res.Tree, Failures: res.Failures}
	return browse.NewShell(doc).Run()
}
