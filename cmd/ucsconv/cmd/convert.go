package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fung04/ucsconv/pkg/convert"
)

var (
	convertOutputDir string
	convertFormat    string
	convertIndent    int
	convertCoerce    bool
	convertSkip      []string
	convertStdout    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <archive.ucs|file.conf> ...",
	Short: "Convert UCS archives or conf files to JSON/YAML documents",
	Long: `Convert parses each given UCS archive or tmsh configuration file and
writes one output document per input, named after the input file.

Files inside an archive that fail to parse are reported and skipped;
the rest of the archive is still converted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", "", "output directory")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "output format (json or yaml)")
	convertCmd.Flags().IntVar(&convertIndent, "indent", -1, "spaces per JSON indentation level")
	convertCmd.Flags().BoolVar(&convertCoerce, "coerce-numbers", false, "render numeric literals as numbers")
	convertCmd.Flags().StringSliceVar(&convertSkip, "skip", nil, "extra file name substrings to skip")
	convertCmd.Flags().BoolVar(&convertStdout, "stdout", false, "write the document to stdout instead of a file")
}

// convertOptions merges the options file with explicit flags. Flags win.
func convertOptions(cmd *cobra.Command) (convert.Options, error) {
	opts, err := loadOptions()
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("output") {
		opts.OutputDir = convertOutputDir
	}
	if cmd.Flags().Changed("format") {
		opts.Format = convertFormat
	}
	if cmd.Flags().Changed("indent") {
		opts.Indent = convertIndent
	}
	if cmd.Flags().Changed("coerce-numbers") {
		opts.CoerceNumbers = convertCoerce
	}
	opts.Skip = append(opts.Skip, convertSkip...)
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := convertOptions(cmd)
	if err != nil {
		return err
	}
	conv := convert.New(opts, slog.Default())

	var failed int
	for _, path := range args {
		res, err := conv.ConvertPath(path)
		if err != nil {
			slog.Error("conversion failed", "path", path, "err", err)
			failed++
			continue
		}
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "warning: %v\n", f)
		}

		data, err := conv.Encode(res.Tree)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}

		if convertStdout {
			os.Stdout.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Println()
			}
			continue
		}

		out := conv.OutputName(res)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return err
		}
		slog.Info("wrote document", "path", out,
			"objects", len(res.Tree.Objects), "failures", len(res.Failures))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}
