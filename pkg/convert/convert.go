// Package convert orchestrates the UCS-to-document pipeline: extract,
// parse, normalize, encode. Parse failures are collected per file so a
// bad file never aborts the rest of an archive.
package convert

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fung04/ucsconv/pkg/archive"
	"github.com/fung04/ucsconv/pkg/config"
)

// FileError records a per-file parse failure.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Result is the outcome of converting one archive or file.
type Result struct {
	// Name is the base name of the input, without extension.
	Name string

	// Tree is the merged, normalized configuration document.
	Tree *config.Tree

	// Failures lists files that did not parse. The tree still contains
	// every file that did.
	Failures []FileError
}

// Converter runs the conversion pipeline with fixed options.
type Converter struct {
	opts Options
	log  *slog.Logger
}

// New creates a Converter. A nil logger falls back to slog.Default.
func New(opts Options, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	return &Converter{opts: opts, log: log}
}

// ConvertPath converts a .ucs archive or a single .conf file.
func (c *Converter) ConvertPath(path string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(path), archive.Extension) {
		return c.ConvertArchive(path)
	}
	return c.ConvertConfFile(path)
}

// ConvertArchive extracts a UCS archive and converts its configuration
// files into one merged document.
func (c *Converter) ConvertArchive(path string) (*Result, error) {
	files, err := archive.Extract(path)
	if err != nil {
		return nil, err
	}
	c.log.Info("extracted archive", "path", path, "files", len(files))

	res := c.ConvertFiles(files)
	res.Name = baseName(path)
	return res, nil
}

// ConvertConfFile converts one configuration file read from disk.
func (c *Converter) ConvertConfFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res := c.ConvertFiles([]archive.File{{Name: filepath.Base(path), Data: data}})
	res.Name = baseName(path)
	return res, nil
}

// ConvertFiles parses each file, skipping the certificate/license
// classes, and merges the results into one normalized tree. Each file
// is an independent pipeline instance, so they parse concurrently.
func (c *Converter) ConvertFiles(files []archive.File) *Result {
	type outcome struct {
		tree *config.Tree
		err  error
	}

	kept := files[:0:0]
	for _, f := range files {
		if c.skip(f.Name) {
			c.log.Debug("skipping file", "name", f.Name)
			continue
		}
		kept = append(kept, f)
	}

	outcomes := make([]outcome, len(kept))
	var wg sync.WaitGroup
	for i, f := range kept {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := config.NewParser(string(f.Data)).Parse()
			outcomes[i] = outcome{tree: tree, err: err}
		}()
	}
	wg.Wait()

	res := &Result{}
	merged := &config.Tree{}
	for i, f := range kept {
		if outcomes[i].err != nil {
			c.log.Warn("parse failed", "file", f.Name, "err", outcomes[i].err)
			res.Failures = append(res.Failures, FileError{File: f.Name, Err: outcomes[i].err})
			continue
		}
		merged.Objects = append(merged.Objects, outcomes[i].tree.Objects...)
	}

	res.Tree = config.NormalizeWith(merged, config.NormalizeOptions{
		CoerceNumbers: c.opts.CoerceNumbers,
	})
	return res
}

// Encode renders a normalized tree in the configured output format.
func (c *Converter) Encode(tree *config.Tree) ([]byte, error) {
	switch c.opts.Format {
	case "yaml":
		return encodeYAML(tree)
	default:
		indent := strings.Repeat(" ", c.opts.Indent)
		if indent == "" {
			return json.Marshal(tree)
		}
		return json.MarshalIndent(tree, "", indent)
	}
}

// OutputName returns the output file name for a result.
func (c *Converter) OutputName(res *Result) string {
	ext := ".json"
	if c.opts.Format == "yaml" {
		ext = ".yaml"
	}
	return filepath.Join(c.opts.OutputDir, res.Name+ext)
}

func (c *Converter) skip(name string) bool {
	if archive.Skippable(name) {
		return true
	}
	for _, s := range c.opts.Skip {
		if s != "" && strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
