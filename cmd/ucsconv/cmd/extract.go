package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fung04/ucsconv/pkg/archive"
)

var extractOutputDir string

var extractCmd = &cobra.Command{
	Use:   "extract <archive.ucs> ...",
	Short: "Extract configuration files from UCS archives without converting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutputDir, "output", "o", ".", "output directory")
}

func runExtract(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		files, err := archive.Extract(path)
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
		for _, f := range files {
			out := filepath.Join(extractOutputDir, f.Name)
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(out, f.Data, 0644); err != nil {
				return err
			}
			slog.Info("extracted", "file", out, "bytes", len(f.Data))
		}
	}
	return nil
}
