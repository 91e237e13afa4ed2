// Package archive extracts configuration files from BIG-IP UCS archives.
//
// A UCS archive is a gzip-compressed tar containing the full state of a
// device. Only the configuration text files under config/ are relevant
// for conversion; certificates, keys, and licenses are never extracted.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Extension is the file extension of UCS archives.
const Extension = ".ucs"

// File is one configuration file pulled out of an archive.
type File struct {
	// Name is the file name with the config/ prefix stripped.
	Name string
	Data []byte
}

// skipSubstrings marks configuration files that hold certificates, device
// trust material, or licenses rather than parseable configuration.
var skipSubstrings = []string{
	"Common_d",
	"bigip_script.conf",
	".license",
}

// Skippable reports whether a configuration file should be excluded from
// parsing.
func Skippable(name string) bool {
	for _, s := range skipSubstrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// ExtractReader reads a UCS archive stream and returns its top-level
// config/*.conf files in archive order.
func ExtractReader(r io.Reader) ([]File, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	var files []File
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name, ok := configMember(hdr.Name)
		if !ok {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}
		files = append(files, File{Name: name, Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config/*.conf files in archive")
	}
	return files, nil
}

// Extract opens a UCS archive on disk and returns its configuration files.
func Extract(filePath string) ([]File, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	files, err := ExtractReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return files, nil
}

// configMember strips the config/ prefix from a tar member name and
// reports whether the member is a top-level .conf file under config/.
func configMember(name string) (string, bool) {
	name = path.Clean(name)
	rest, ok := strings.CutPrefix(name, "config/")
	if !ok {
		return "", false
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	if !strings.HasSuffix(rest, ".conf") {
		return "", false
	}
	return rest, true
}
