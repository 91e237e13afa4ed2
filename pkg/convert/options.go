package convert

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Options controls conversion output and dialect handling.
type Options struct {
	// OutputDir receives one output document per converted archive.
	OutputDir string `toml:"output_dir"`

	// Format is "json" or "yaml".
	Format string `toml:"format"`

	// Indent is the number of spaces per JSON indentation level.
	Indent int `toml:"indent"`

	// CoerceNumbers renders numeric literals as numbers instead of strings.
	CoerceNumbers bool `toml:"coerce_numbers"`

	// Skip lists extra substrings of file names to exclude from parsing,
	// on top of the built-in certificate/license exclusions.
	Skip []string `toml:"skip"`
}

// DefaultOptions returns the options used when no config file is given.
func DefaultOptions() Options {
	return Options{
		OutputDir: "output",
		Format:    "json",
		Indent:    4,
	}
}

// LoadOptions reads a TOML options file, filling unset fields with
// defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, fmt.Errorf("load options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validate checks option values.
func (o Options) Validate() error {
	switch o.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	if o.Indent < 0 || o.Indent > 16 {
		return fmt.Errorf("indent %d out of range", o.Indent)
	}
	return nil
}
