// Package idreg maintains the append-only registry of function IDs. The
// position of an ID in the file is its numeric value in recorded streams,
// so existing lines are never rewritten or reordered.
package idreg

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/naming"
	"github.com/chazu/vkgen/output"
	"github.com/chazu/vkgen/versions"
)

const marker = "ID"

// Registry is an ID file on disk.
type Registry struct {
	Path string
	log  commonlog.Logger
}

// New returns the registry stored at path. A nil log selects the package
// logger.
func New(path string, log commonlog.Logger) *Registry {
	if log == nil {
		log = commonlog.GetLogger("vkgen.idreg")
	}
	return &Registry{Path: path, log: log}
}

// Read returns the IDs in file order. A missing file holds no IDs.
func (r *Registry) Read() ([]string, error) {
	data, err := os.ReadFile(r.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, marker) {
			ids = append(ids, strings.Trim(line, ",\r\n"))
		}
	}
	return ids, sc.Err()
}

// Update appends the IDs of the enabled functions that the file does not
// list yet, in input order, and returns them. The file is left untouched
// when nothing is missing and created when it does not exist.
func (r *Registry) Update(funcs []metadata.Function) ([]string, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading ID registry: %w", err)
	}
	existing, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("reading ID registry %s: %w", r.Path, err)
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	var added []string
	for _, f := range versions.Enabled(funcs) {
		id := naming.ID(f.Name, f.Version)
		if known[id] {
			continue
		}
		known[id] = true
		added = append(added, id)
	}

	if len(added) == 0 {
		r.log.Infof("File %s is up to date", r.Path)
		return nil, nil
	}
	r.log.Infof("Adding %d new IDs to %s", len(added), r.Path)

	var buf bytes.Buffer
	buf.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, id := range added {
		buf.WriteString(id + ",\n")
	}
	if err := output.WriteFile(r.Path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("updating ID registry: %w", err)
	}
	return added, nil
}

// CopyTo copies the registry into dir, keeping its file name.
func (r *Registry) CopyTo(dir string) error {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return fmt.Errorf("copying ID registry: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(r.Path))
	r.log.Infof("Copying %s to %s", r.Path, dest)
	return output.WriteFile(dest, data)
}
